package v1

import (
	"crudapi/config"
	"crudapi/crud"
	"crudapi/database"
	"crudapi/middleware"
	"crudapi/models"
	"crudapi/stores/gormstore"
	"crudapi/stores/redisstore"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Register the endpoints for the v1 API
func Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	v1.Use(middleware.Metrics())

	rateLimiter := middleware.NewRateLimiter(config.DefaultRateLimitConfig.Rate, config.DefaultRateLimitConfig.Burst)
	v1.Use(middleware.RateLimit(rateLimiter))

	v1.Use(middleware.Trace())
	v1.Use(middleware.Auth())

	RegisterPingRoutes(v1)
	RegisterHealthRoutes(v1)
	RegisterAuthRoutes(v1)
	registerEntityRoutes(v1)

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
}

// registerEntityRoutes mounts the generated CRUD routers. Departments,
// employees and teams live in Postgres; potatoes demonstrate the same
// operation set over Redis documents.
func registerEntityRoutes(v1 *gin.RouterGroup) {
	departments, err := gormstore.New[models.Department](database.DB)
	if err != nil {
		logrus.Fatal("department store: ", err)
	}
	employees, err := gormstore.New[models.Employee](database.DB)
	if err != nil {
		logrus.Fatal("employee store: ", err)
	}
	teams, err := gormstore.New[models.Team](database.DB)
	if err != nil {
		logrus.Fatal("team store: ", err)
	}

	docs := redisstore.NewStore(database.REDIS, config.RedisPrefix)
	potatoes, err := redisstore.NewCollection[models.Potato](docs)
	if err != nil {
		logrus.Fatal("potato collection: ", err)
	}

	limit := config.MaxPageLimit
	mustRegister(v1, departments, crud.Config{Prefix: "departments", ScopeMode: crud.ScopeAllDefault, MaxLimit: limit})
	mustRegister(v1, employees, crud.Config{Prefix: "employees", ScopeMode: crud.ScopeAllOnly, MaxLimit: limit})
	mustRegister(v1, teams, crud.Config{Prefix: "teams", ScopeMode: crud.ScopeSelfDefault, MaxLimit: limit})
	mustRegister(v1, potatoes, crud.Config{Prefix: "potatoes", ScopeMode: crud.ScopeAllOnly, MaxLimit: limit})
}

func mustRegister[E any](v1 *gin.RouterGroup, adapter crud.Adapter[E], cfg crud.Config) {
	router, err := crud.NewRouter(adapter, cfg)
	if err != nil {
		logrus.Fatal("router for ", cfg.Prefix, ": ", err)
	}
	router.Register(v1)
}

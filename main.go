package main

import (
	"time"

	"crudapi/config"
	"crudapi/database"
	"crudapi/metrics"
	v1 "crudapi/routes/v1"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title CRUD API
// @version 1.0
// @description Generated CRUD and query endpoints over Postgres and Redis backends
// @BasePath /api/v1
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	config.Load()
	gin.SetMode(config.GinMode)

	database.InitDB()
	database.InitRedis()

	metrics.StartRuntimeCollector(15 * time.Second)
	metrics.StartSystemCollector(15 * time.Second)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"},
		ExposeHeaders:    []string{"X-Trace-ID"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	v1.Register(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	logrus.Info("listening on :", config.APIPort)
	if err := r.Run(":" + config.APIPort); err != nil {
		logrus.Fatal("server stopped: ", err)
	}
}

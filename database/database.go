package database

import (
	"context"
	"fmt"

	"crudapi/config"
	"crudapi/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

var REDIS *redis.Client

// InitDB initializes the database connection and migrates the models
func InitDB() {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable TimeZone=UTC",
		config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresDB, config.PostgresPassword)

	var err error
	// TranslateError maps driver errors onto gorm's portable sentinels,
	// which the storage layer relies on to classify failures
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatal("failed to connect database: ", err)
	}

	err = DB.AutoMigrate(
		&models.Department{},
		&models.Employee{},
		&models.Team{},
	)
	if err != nil {
		logrus.Fatal("failed to migrate database: ", err)
	}
}

// InitRedis initializes the Redis connection used by the document-backed
// collections
func InitRedis() {
	REDIS = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress,
		Password: config.RedisPassword,
	})

	if err := REDIS.Ping(context.Background()).Err(); err != nil {
		logrus.Fatal("failed to connect redis: ", err)
	}
}

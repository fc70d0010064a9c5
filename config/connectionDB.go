package config

import (
	"log"
	"os"

	"habitbeat/internal/entity"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("error load env %s", err)
	}
}

func ConnectionDb() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
	})
	if err != nil {
		log.Printf("error connect to database %s", err)
	}
	return db
}

func MigrateDb(db *gorm.DB) error {
	if os.Getenv("DB_AUTO_MIGRATE") == "false" {
		return nil
	}
	return db.AutoMigrate(
		&entity.Account{},
		&entity.Credential{},
		&entity.VerificationToken{},
		&entity.Session{},
		&entity.SecurityLog{},
		&entity.OAuthIdentity{},
		&entity.OAuthState{},
	)
}

func ConnectionRedis() redis.UniversalClient {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}

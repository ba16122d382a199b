package main

import (
	"context"
	"log"

	"github.com/hirestack/hirestack-backend/internal/config"
	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/internal/server"
	"github.com/hirestack/hirestack-backend/pkg/database"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdmin(db); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(db, redisClient)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Admin{},
		&model.Job{},
		&model.Application{},
		&model.Notification{},
	)
}

func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, live notification push disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, live notification push disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unreachable, live notification push disabled: %v", err)
		return nil
	}

	return client
}

func seedAdmin(db *gorm.DB) error {
	adminRepo := repository.NewAdminRepository(db)

	count, err := adminRepo.CountByEmail(context.Background(), "admin@hirestack.io")
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin already exists, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.Admin{
		FullName:     "Administrator",
		Email:        "admin@hirestack.io",
		PasswordHash: string(hash),
	}
	if err := adminRepo.Create(context.Background(), admin); err != nil {
		return err
	}

	log.Println("Admin seeded successfully")
	log.Println("   Email: admin@hirestack.io")
	log.Println("   Password: admin123")

	return nil
}

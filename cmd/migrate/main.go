package main

import (
	"context"
	"time"

	accountsrepository "rentals/internal/accounts/repository"
	mongoMigration "rentals/internal/migrations/mongo"
	"rentals/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	users := accountsrepository.NewMongoUserRepository(cfg)
	if err := mongoMigration.EnsureAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword, cfg.Log); err != nil {
		cfg.Log.Fatal("Admin bootstrap failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

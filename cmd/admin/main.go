package main

import (
	"context"
	"fmt"
	"os"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/logging"
	"grievancedesk/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// connect opens the database and, when reachable, redis so status changes
// and deletes reach connected users as realtime events.
func connect(ctx context.Context, cfg *config.Config) (adminStore, func(), error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: redis unavailable, changes will not be pushed live: %v\n", err)
		rdb.Close()
		rdb = nil
	}

	cleanup := func() {
		if rdb != nil {
			rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return storage.NewStorageService(db, rdb), cleanup, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup("grievancedesk-admin", cfg.LogLevel, cfg.LogFormat)

	a := &app{cfg: cfg, out: os.Stdout, connect: connect}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

package utils

import (
	"context"
	"fmt"
	"time"

	"slotbook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// LockClient backs the distributed slot lock.
	LockClient *redis.Client
)

// NewRedisClient connects to the configured Redis server on the given DB and pings it.
func NewRedisClient(cfg config.Config, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (db %d): %w", db, err)
	}
	return client, nil
}

// InitLockClient initializes LockClient from AppConfig.
func InitLockClient() error {
	client, err := NewRedisClient(config.AppConfig, config.AppConfig.RedisLockDB)
	if err != nil {
		return err
	}
	LockClient = client
	return nil
}

// GetLockClient returns the lock client, or nil when Redis is not configured.
func GetLockClient() *redis.Client {
	return LockClient
}

package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"property-catalog/pkg/config"
	"property-catalog/pkg/logger"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

// InitRedis connects to the Redis instance described by cfg.Redis and pings it.
func InitRedis(cfg *config.Config) error {
	rc := cfg.Redis

	var tlsConfig *tls.Config
	if rc.TLSEnabled {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if rc.TLSCertFile != "" {
			cert, err := tls.LoadX509KeyPair(rc.TLSCertFile, rc.TLSCertFile)
			if err != nil {
				return fmt.Errorf("failed to load Redis TLS certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", rc.Host, rc.Port),
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		TLSConfig:    tlsConfig,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx).Err()
	observe("ping", start, err)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis at %s:%d: %w", rc.Host, rc.Port, err)
	}

	RedisClient = client
	logger.GlobalLogger.Printf("Redis connected at %s:%d", rc.Host, rc.Port)
	return nil
}

func CloseRedis() {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Close(); err != nil {
		logger.GlobalLogger.Errorf("error closing Redis: %v", err)
		return
	}
	RedisClient = nil
	logger.GlobalLogger.Println("Redis connection closed")
}

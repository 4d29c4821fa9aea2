package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedis creates a go-redis client. An unreachable server is logged, not fatal;
// commands retry the connection on use.
func NewRedis(ctx context.Context, addr, password string, database int, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", addr))
	}

	return client
}

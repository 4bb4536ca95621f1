package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect dials Redis and verifies connectivity. addr is either host:port or a
// redis:// URL carrying credentials and database.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	opts := &goredis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	client := goredis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ConnectOrWarn dials Redis and returns the client plus a cleanup function.
// On failure it logs and returns nil with a no-op cleanup.
func ConnectOrWarn(ctx context.Context, addr string, logger *slog.Logger) (*goredis.Client, func()) {
	client, err := Connect(ctx, addr)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to redis, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("redis connection established", slog.String("addr", client.Options().Addr))
	}
	return client, func() { _ = client.Close() }
}

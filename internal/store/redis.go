package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshTokenPrefix = "daycare:refresh:"

// Redis wraps the redis client shared by the queue backend and the
// refresh-token store.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// SaveRefreshToken stores a device's refresh token until it expires.
func (r *Redis) SaveRefreshToken(ctx context.Context, deviceID, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return errors.New("refresh token already expired")
	}
	return r.Client.Set(ctx, refreshTokenPrefix+token, deviceID, ttl).Err()
}

// RefreshTokenDevice returns the device id a refresh token was issued
// to, or empty when the token is unknown or revoked.
func (r *Redis) RefreshTokenDevice(ctx context.Context, token string) (string, error) {
	deviceID, err := r.Client.Get(ctx, refreshTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return deviceID, err
}

// RevokeRefreshToken invalidates a refresh token.
func (r *Redis) RevokeRefreshToken(ctx context.Context, token string) error {
	return r.Client.Del(ctx, refreshTokenPrefix+token).Err()
}

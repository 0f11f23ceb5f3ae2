package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// TimeoutKeyPattern keys the active-timeout marker for a (stream, user)
	// pair. The redis TTL mirrors the timeout's expires_at, so expiry needs no
	// sweeper on this path either.
	TimeoutKeyPattern = "timeout:%s:%s"
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	RedisClient() *redis.Client

	SaveTimeoutMarker(ctx context.Context, streamID, userID uuid.UUID, ttl time.Duration) error
	TimeoutMarkerExists(ctx context.Context, streamID, userID uuid.UUID) (bool, error)
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type client struct {
	redisClient *redis.Client
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewClientWithRedis(redisClient), nil
}

// NewClientWithRedis wraps an existing redis client; used by tests with
// redismock.
func NewClientWithRedis(redisClient *redis.Client) Client {
	return &client{redisClient: redisClient}
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.redisClient.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.redisClient.Set(ctx, key, value, expiration).Err()
}

func (c *client) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *client) SaveTimeoutMarker(ctx context.Context, streamID, userID uuid.UUID, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("timeout ttl must be positive")
	}
	key := fmt.Sprintf(TimeoutKeyPattern, streamID.String(), userID.String())
	return c.Set(ctx, key, "1", ttl)
}

func (c *client) TimeoutMarkerExists(ctx context.Context, streamID, userID uuid.UUID) (bool, error) {
	key := fmt.Sprintf(TimeoutKeyPattern, streamID.String(), userID.String())
	n, err := c.redisClient.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

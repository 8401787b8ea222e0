package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"renovation/internal/app/config"
	"renovation/internal/app/wizard"

	"github.com/go-redis/redis/v8"
)

const (
	servicePrefix   = "renovation."
	jwtPrefix       = "jwt."
	wizardPrefix    = "wizard."
	sendLockPrefix  = "sendlock."
	blacklistMarker = "true"
)

// Client wraps go-redis with the keys this service uses.
type Client struct {
	cfg    config.RedisConfig
	client *redis.Client
}

var _ wizard.Store = (*Client)(nil)

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	client := &Client{cfg: cfg}

	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Username:    cfg.User,
		Password:    cfg.Password,
		DB:          0,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})
	client.client = redisClient

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("cant ping redis: %w", err)
	}

	return client, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func getJWTKey(token string) string {
	return servicePrefix + jwtPrefix + token
}

// WriteJWTToBlacklist stores a revoked token until it would have expired anyway.
func (c *Client) WriteJWTToBlacklist(ctx context.Context, jwtStr string, jwtTTL time.Duration) error {
	return c.client.Set(ctx, getJWTKey(jwtStr), blacklistMarker, jwtTTL).Err()
}

// CheckJWTInBlacklist returns nil when the token is blacklisted and redis.Nil when it is not.
func (c *Client) CheckJWTInBlacklist(ctx context.Context, jwtStr string) error {
	return c.client.Get(ctx, getJWTKey(jwtStr)).Err()
}

func getWizardKey(id string) string {
	return servicePrefix + wizardPrefix + id
}

func (c *Client) Save(ctx context.Context, s *wizard.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal wizard session: %w", err)
	}
	return c.client.Set(ctx, getWizardKey(s.ID), data, ttl).Err()
}

func (c *Client) Load(ctx context.Context, id string) (*wizard.Session, error) {
	data, err := c.client.Get(ctx, getWizardKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, wizard.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s wizard.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal wizard session: %w", err)
	}
	return &s, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, getWizardKey(id)).Err()
}

// AcquireSendLock guards against the same document being emailed twice in a row.
// It returns false if another send holds the lock.
func (c *Client) AcquireSendLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, servicePrefix+sendLockPrefix+key, blacklistMarker, ttl).Result()
}

func (c *Client) ReleaseSendLock(ctx context.Context, key string) error {
	return c.client.Del(ctx, servicePrefix+sendLockPrefix+key).Err()
}

package profile

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each profile as a hash at users:<id>.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to url (redis://...) and pings it.
func DialRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, id string) (Profile, error) {
	fields, err := r.client.HGetAll(ctx, Key(id)).Result()
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	// HGETALL on a missing key is an empty map, not redis.Nil.
	if len(fields) == 0 {
		return Profile{}, ErrNotFound
	}
	return fromFields(id, fields), nil
}

func (r *Redis) Put(ctx context.Context, p Profile) error {
	if err := r.client.HSet(ctx, Key(p.ID), toFields(p)).Err(); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

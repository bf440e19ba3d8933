package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Store is the thin key/value surface the bot keeps in Redis.
type Store struct {
	client *redis.Client
}

func Connect(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.WithField("addr", client.Options().Addr).Info("connected to redis")
	return &Store{client: client}, nil
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (r *Store) Close() error {
	return r.client.Close()
}

package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

const DefaultPrefix = "edge:session:"

// Store is a Redis implementation of sessionstore.Store. Each session is a JSON value
// whose key expires with the session's token.
type Store struct {
	client *redis.Client
	prefix string
	// idleTTL applies to sessions without a token expiry; zero keeps them forever.
	idleTTL time.Duration
	now     func() time.Time
}

type Options struct {
	Prefix  string
	IdleTTL time.Duration
}

// Open connects to redisURL (redis://[:password@]host:port/db) and verifies connectivity.
func Open(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func NewStore(client *redis.Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &Store{
		client:  client,
		prefix:  opts.Prefix,
		idleTTL: opts.IdleTTL,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type record struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Store) key(id domain.SessionID) string {
	return s.prefix + string(id)
}

func (s *Store) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, sessionstore.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return domain.Session{
		ID:        id,
		Token:     rec.Token,
		User:      domain.User{ID: domain.UserID(rec.UserID), Name: rec.UserName, Email: rec.UserEmail},
		CreatedAt: rec.CreatedAt.UTC(),
		ExpiresAt: rec.ExpiresAt.UTC(),
	}, nil
}

func (s *Store) Put(ctx context.Context, sess domain.Session) error {
	ttl := s.idleTTL
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, sess.ID)
		}
	}
	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	data, err := json.Marshal(record{
		Token:     sess.Token,
		UserID:    int64(sess.User.ID),
		UserName:  sess.User.Name,
		UserEmail: sess.User.Email,
		CreatedAt: createdAt.UTC(),
		ExpiresAt: sess.ExpiresAt.UTC(),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sess.ID), data, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, id domain.SessionID) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

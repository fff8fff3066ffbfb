package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists each session as one JSON value under prefix+id.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore dials redis and verifies connectivity before returning.
func NewRedisStore(addr, password string, db int, prefix string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: ping %s: %v", ErrUnavailable, addr, err)
	}

	if prefix == "" {
		prefix = "interview:session:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: encode session %s: %v", ErrUnavailable, id, err)
	}
	if err := s.rdb.Set(ctx, s.prefix+id, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, id, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: get %s: %v", ErrUnavailable, id, err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("%w: decode session %s: %v", ErrUnavailable, id, err)
	}
	return sess, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Session, error) {
	var out []Session
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			// Deleted between scan and get.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, iter.Val(), err)
		}
		var sess Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, iter.Val(), err)
		}
		out = append(out, sess)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", ErrUnavailable, id, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)

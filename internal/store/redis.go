package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/jackzampolin/folio/internal/segmentation"
)

// RedisStore keeps annotations in one Redis hash per book, with the page
// id as field and the JSON annotation as value.
type RedisStore struct {
	client *redis.Client
	keyNS  string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	c := redis.NewClient(opt)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: c, keyNS: "folio"}, nil
}

func (s *RedisStore) key(bookID int) string {
	return fmt.Sprintf("%s:book:%d:annotations", s.keyNS, bookID)
}

func (s *RedisStore) Save(ctx context.Context, bookID, pageID int, a *segmentation.PageAnnotations) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode annotation: %w", err)
	}
	return s.client.HSet(ctx, s.key(bookID), strconv.Itoa(pageID), data).Err()
}

func (s *RedisStore) Load(ctx context.Context, bookID, pageID int) (*segmentation.PageAnnotations, error) {
	data, err := s.client.HGet(ctx, s.key(bookID), strconv.Itoa(pageID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: book %d page %d", ErrNotFound, bookID, pageID)
	}
	if err != nil {
		return nil, err
	}
	var a segmentation.PageAnnotations
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode annotation: %w", err)
	}
	return &a, nil
}

func (s *RedisStore) SegmentedPages(ctx context.Context, bookID int) ([]int, error) {
	fields, err := s.client.HKeys(ctx, s.key(bookID)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RedisStore) Delete(ctx context.Context, bookID, pageID int) error {
	return s.client.HDel(ctx, s.key(bookID), strconv.Itoa(pageID)).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }

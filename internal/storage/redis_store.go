package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crm-mailmerge/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by store lookups when the key is absent or expired.
var ErrMiss = errors.New("storage: cache miss")

// RedisStore keeps CRM metadata as JSON values in Redis.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "mailmerge"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) fieldsKey(module string) string {
	return fmt.Sprintf("%s:meta:fields:%s", s.prefix, module)
}

func (s *RedisStore) optionsKey(listID string) string {
	return fmt.Sprintf("%s:meta:options:%s", s.prefix, listID)
}

func (s *RedisStore) currencyKey(id string) string {
	return fmt.Sprintf("%s:meta:currency:%s", s.prefix, id)
}

func (s *RedisStore) getJSON(ctx context.Context, key string, out any) error {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Fields returns cached field definitions of a module.
func (s *RedisStore) Fields(ctx context.Context, module string) (model.FieldMap, error) {
	var fm model.FieldMap
	if err := s.getJSON(ctx, s.fieldsKey(module), &fm); err != nil {
		return nil, err
	}
	return fm, nil
}

// SetFields caches field definitions of a module for ttl.
func (s *RedisStore) SetFields(ctx context.Context, module string, fm model.FieldMap, ttl time.Duration) error {
	return s.setJSON(ctx, s.fieldsKey(module), fm, ttl)
}

// Options returns a cached option list.
func (s *RedisStore) Options(ctx context.Context, listID string) (map[string]string, error) {
	var labels map[string]string
	if err := s.getJSON(ctx, s.optionsKey(listID), &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// SetOptions caches an option list for ttl.
func (s *RedisStore) SetOptions(ctx context.Context, listID string, labels map[string]string, ttl time.Duration) error {
	return s.setJSON(ctx, s.optionsKey(listID), labels, ttl)
}

// CurrencySymbol returns a cached currency symbol.
func (s *RedisStore) CurrencySymbol(ctx context.Context, id string) (string, error) {
	res, err := s.rdb.Get(ctx, s.currencyKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return res, nil
}

// SetCurrencySymbol caches a currency symbol for ttl.
func (s *RedisStore) SetCurrencySymbol(ctx context.Context, id, symbol string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.currencyKey(id), symbol, ttl).Err()
}

// Invalidate drops the cached field metadata of a module.
func (s *RedisStore) Invalidate(ctx context.Context, module string) error {
	return s.rdb.Del(ctx, s.fieldsKey(module)).Err()
}

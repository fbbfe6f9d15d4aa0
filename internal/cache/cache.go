// Package cache stores finished try-on renders in Redis.
//
// The try-on pipeline is deterministic, so a render is fully identified by
// the two uploads and the garment type. Keys hash the upload bytes; values
// hold the PNG and the outcome that produced it.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fashun/virtual-tryon/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "tryon:"

// Entry is a cached render.
type Entry struct {
	PNG     []byte `json:"png"`
	Outcome string `json:"outcome"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// Store is a Redis-backed render cache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects a Store from configuration.
func New(cfg config.RedisConfig, logger *zap.Logger) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(client, cfg.TTL, logger)
}

// NewWithClient wraps an existing client. A zero ttl stores entries without
// expiry.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

// Key derives the cache key for one try-on request. fingerprint names the
// pipeline settings the render depends on, so a config change never serves
// renders made under the old settings.
func Key(person, garment []byte, garmentType, fingerprint string) string {
	return KeyPrefix + fingerprint + ":" + BytesMD5(person) + ":" + BytesMD5(garment) + ":" + garmentType
}

// BytesMD5 returns the hex MD5 digest of data.
func BytesMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get returns the entry stored under key. A miss returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Error("failed to unmarshal cached render",
			zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &entry, nil
}

// Set stores entry under key with the configured TTL.
func (s *Store) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

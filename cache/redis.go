package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is used when no key prefix is configured.
const DefaultKeyPrefix = "ut:cache:"

const scanCount = 200

// Hash fields of a cache entry.
const (
	fieldText  = "text"
	fieldLang  = "lang"
	fieldValue = "value"
)

// RedisCache is a Redis-backed translation cache. Each entry is a hash
// holding the source text, language and translation under
// prefix + Key(text, lang). Keys carry no TTL.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCacheFromClient uses an existing client. The caller keeps
// ownership of it.
func NewRedisCacheFromClient(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisCache) key(text, lang string) string {
	return c.keyPrefix + Key(text, lang)
}

// Get implements TranslationCache. redis.Nil is a miss.
func (c *RedisCache) Get(ctx context.Context, text, lang string) (string, bool, error) {
	val, err := c.client.HGet(ctx, c.key(text, lang), fieldValue).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return val, true, nil
}

// Set implements TranslationCache.
func (c *RedisCache) Set(ctx context.Context, text, lang, value string) error {
	return c.client.HSet(ctx, c.key(text, lang),
		fieldText, text,
		fieldLang, lang,
		fieldValue, value,
	).Err()
}

// Entries implements Enumerable by scanning the key prefix. Keys that
// vanish or lack fields mid-scan are skipped, as are keys not named after
// their own text and language. Entries are sorted by
// language, then text.
func (c *RedisCache) Entries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %s*: %w", c.keyPrefix, err)
		}
		for _, k := range keys {
			fields, err := c.client.HGetAll(ctx, k).Result()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", k, err)
			}
			text, ok := fields[fieldText]
			if !ok || fields[fieldLang] == "" {
				continue
			}
			// Caches nested under this prefix hold keys of their own.
			if k != c.key(text, fields[fieldLang]) {
				continue
			}
			entries = append(entries, Entry{Text: text, Lang: fields[fieldLang], Value: fields[fieldValue]})
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Lang != entries[j].Lang {
			return entries[i].Lang < entries[j].Lang
		}
		return entries[i].Text < entries[j].Text
	})
	return entries, nil
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var (
	_ TranslationCache = (*RedisCache)(nil)
	_ Enumerable       = (*RedisCache)(nil)
)

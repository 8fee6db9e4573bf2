package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Store holds API responses between dashboard requests. Mutations invalidate the keys
// they affect; logout clears everything.
//
// Invalidate(prefix) drops the key equal to prefix and every key nested under it with a
// colon, so "shifts:1" removes "shifts:1" and "shifts:1:x" but keeps "shifts:10".
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

// Fetch returns the cached value for key or loads and caches it. Cache errors are logged
// and fall through to the loader.
func Fetch[T any](ctx context.Context, store Store, log zerolog.Logger, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	ok, err := store.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if ok {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := store.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return value, nil
}

func Key(parts ...any) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += fmt.Sprint(p)
	}
	return key
}

// groupPrefix strips a trailing separator so "inventory:" and "inventory" name one group.
func groupPrefix(prefix string) string {
	return strings.TrimSuffix(prefix, ":")
}

func inGroup(key, prefix string) bool {
	prefix = groupPrefix(prefix)
	return key == prefix || strings.HasPrefix(key, prefix+":")
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode cache value: %w", err)
	}
	return data, nil
}

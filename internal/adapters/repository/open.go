package repository

import (
	"context"
	"fmt"
)

// Params carries the backend-specific connection settings for Open.
type Params struct {
	DataFile    string
	RedisURL    string
	RedisKey    string
	PostgresDSN string
}

// Open builds the Store named by backend.
func Open(ctx context.Context, backend string, p Params, opts ...Option) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(p.DataFile, opts...)
	case BackendMemory:
		return NewMemoryStore(opts...), nil
	case BackendRedis:
		return NewRedisStore(ctx, p.RedisURL, append([]Option{WithKey(p.RedisKey)}, opts...)...)
	case BackendPostgres:
		return NewPostgresStore(ctx, p.PostgresDSN, opts...)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

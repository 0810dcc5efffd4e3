package blob

import (
	"context"
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

type Options struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Redis       RedisOptions
	S3          S3Options
}

// Open returns the Store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	case DriverPostgres, "postgresql", "pgx":
		return OpenPostgres(ctx, opts.PostgresDSN)
	case DriverRedis:
		return OpenRedis(ctx, opts.Redis)
	case DriverS3, "minio":
		return OpenS3(ctx, opts.S3)
	case DriverMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}

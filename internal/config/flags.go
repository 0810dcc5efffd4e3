package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/waterkeeper/internal/flagx"
)

var (
	valuedFlags = []string{"driver", "store-key", "sqlite", "dsn", "redis", "log-level", "log-format", "top", "session-ttl"}
	boolFlags   = []string{"remember", "legacy-dual-write"}
)

// parseFlags overlays command-line flags:
//
//	-driver string      store backend: sqlite, postgres, redis, s3, memory
//	-store-key string   name of the blob holding the user collection
//	-sqlite string      SQLite database path
//	-dsn string         PostgreSQL DSN
//	-redis string       Redis address
//	-log-level string   debug, info, warn, error
//	-log-format string  text, json, console
//	-top int            leaderboard length
//	-session-ttl dur    lifetime of a remembered login, e.g. 12h
//	-remember           remember the login between runs
//	-legacy-dual-write  also add logged amounts to the flat total
func parseFlags(c *Config, args []string) error {
	args = flagx.FilterArgs(args, flagx.Set{Valued: valuedFlags, Bool: boolFlags})

	fs := flag.NewFlagSet("waterkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.StoreDriver, "driver", c.StoreDriver, "store backend")
	fs.StringVar(&c.StoreKey, "store-key", c.StoreKey, "blob key of the user collection")
	fs.StringVar(&c.SQLitePath, "sqlite", c.SQLitePath, "SQLite database path")
	fs.StringVar(&c.PostgresDSN, "dsn", c.PostgresDSN, "PostgreSQL DSN")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "Redis address")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format")
	fs.IntVar(&c.LeaderboardSize, "top", c.LeaderboardSize, "leaderboard length")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "remembered login lifetime")
	fs.BoolVar(&c.RememberSession, "remember", c.RememberSession, "remember the login between runs")
	fs.BoolVar(&c.LegacyDualWrite, "legacy-dual-write", c.LegacyDualWrite, "also add logged amounts to the flat total")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}

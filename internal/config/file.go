package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/waterkeeper/internal/flagx"
	"github.com/dmitrijs2005/waterkeeper/internal/timex"
)

// FileConfig is the on-disk shape of a config file. Pointer fields tell
// "absent" apart from zero, so a file only overrides what it mentions.
// session_ttl accepts "12h" or integer nanoseconds.
type FileConfig struct {
	StoreDriver *string `json:"store_driver" yaml:"store_driver"`
	StoreKey    *string `json:"store_key" yaml:"store_key"`
	SQLitePath  *string `json:"sqlite_path" yaml:"sqlite_path"`
	PostgresDSN *string `json:"postgres_dsn" yaml:"postgres_dsn"`

	RedisAddr     *string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword *string `json:"redis_password" yaml:"redis_password"`
	RedisDB       *int    `json:"redis_db" yaml:"redis_db"`

	S3Bucket    *string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region    *string `json:"s3_region" yaml:"s3_region"`
	S3Endpoint  *string `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKey *string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey *string `json:"s3_secret_key" yaml:"s3_secret_key"`

	LogFormat *string `json:"log_format" yaml:"log_format"`
	LogLevel  *string `json:"log_level" yaml:"log_level"`

	LeaderboardSize *int `json:"leaderboard_size" yaml:"leaderboard_size"`

	RememberSession *bool           `json:"remember_session" yaml:"remember_session"`
	SessionTTL      *timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	SessionSecret   *string         `json:"session_secret" yaml:"session_secret"`

	LegacyDualWrite *bool `json:"legacy_dual_write" yaml:"legacy_dual_write"`
}

func decodeFile(path string, data []byte) (*FileConfig, error) {
	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, fc); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, fc); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	return fc, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (fc *FileConfig) apply(c *Config) {
	setIf(&c.StoreDriver, fc.StoreDriver)
	setIf(&c.StoreKey, fc.StoreKey)
	setIf(&c.SQLitePath, fc.SQLitePath)
	setIf(&c.PostgresDSN, fc.PostgresDSN)
	setIf(&c.RedisAddr, fc.RedisAddr)
	setIf(&c.RedisPassword, fc.RedisPassword)
	setIf(&c.RedisDB, fc.RedisDB)
	setIf(&c.S3Bucket, fc.S3Bucket)
	setIf(&c.S3Region, fc.S3Region)
	setIf(&c.S3Endpoint, fc.S3Endpoint)
	setIf(&c.S3AccessKey, fc.S3AccessKey)
	setIf(&c.S3SecretKey, fc.S3SecretKey)
	setIf(&c.LogFormat, fc.LogFormat)
	setIf(&c.LogLevel, fc.LogLevel)
	setIf(&c.LeaderboardSize, fc.LeaderboardSize)
	setIf(&c.RememberSession, fc.RememberSession)
	setIf(&c.SessionSecret, fc.SessionSecret)
	setIf(&c.LegacyDualWrite, fc.LegacyDualWrite)
	if fc.SessionTTL != nil {
		c.SessionTTL = fc.SessionTTL.Duration
	}
}

// parseFile overlays the file named by -c/-config, if any.
func parseFile(c *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		return err
	}
	fc.apply(c)
	return nil
}

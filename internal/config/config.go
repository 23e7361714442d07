package config

import (
	"errors"
	"fmt"
	"time"
)

// Storage and row-store driver names accepted in DriverStorage / DriverRows.
const (
	DriverSupabase = "supabase"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
)

// Config holds runtime settings for the noted CLI.
//
// Fields:
//   - SupabaseURL / SupabaseAnonKey: project endpoint and public API key.
//     Both are required; see Validate.
//   - Bucket: storage bucket for note attachments.
//   - PostsTable: table holding the notes.
//   - DriverStorage: object storage driver, "supabase" or "s3".
//   - DriverRows: row store driver, "supabase" or "postgres".
//   - DatabaseDSN: PostgreSQL DSN, used when DriverRows is "postgres".
//   - S3*: settings for the S3-compatible driver.
//   - DataDir: directory for the local session database. Empty means the
//     per-user config directory.
//   - RequestTimeout: per-request deadline applied by the CLI.
type Config struct {
	SupabaseURL     string
	SupabaseAnonKey string
	Bucket          string
	PostsTable      string
	DriverStorage   string
	DriverRows      string
	DatabaseDSN     string
	S3Region        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3BaseEndpoint  string
	S3PublicBaseURL string
	DataDir         string
	RequestTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults. The endpoint and key
// have no default and must come from JSON, environment or flags.
func (c *Config) LoadDefaults() {
	c.Bucket = "post-media"
	c.PostsTable = "posts"
	c.DriverStorage = DriverSupabase
	c.DriverRows = DriverSupabase
	c.S3Region = "us-east-1"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration the client cannot start with.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return errors.New("backend URL is not set (flag -a, env SUPABASE_URL or config file)")
	}
	if c.SupabaseAnonKey == "" {
		return errors.New("backend API key is not set (flag -k, env SUPABASE_ANON_KEY or config file)")
	}
	switch c.DriverStorage {
	case DriverSupabase, DriverS3:
	default:
		return fmt.Errorf("unknown storage driver %q", c.DriverStorage)
	}
	switch c.DriverRows {
	case DriverSupabase, DriverPostgres:
	default:
		return fmt.Errorf("unknown row store driver %q", c.DriverRows)
	}
	if c.DriverRows == DriverPostgres && c.DatabaseDSN == "" {
		return errors.New("row store driver is postgres but database DSN is not set")
	}
	return nil
}

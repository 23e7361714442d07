package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pogibrader/noted/internal/flagx"
	"github.com/pogibrader/noted/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "10s" or as integer nanoseconds.
type JsonConfig struct {
	SupabaseURL     string         `json:"supabase_url"`
	SupabaseAnonKey string         `json:"supabase_anon_key"`
	Bucket          string         `json:"bucket"`
	PostsTable      string         `json:"posts_table"`
	DriverStorage   string         `json:"storage_driver"`
	DriverRows      string         `json:"rows_driver"`
	DatabaseDSN     string         `json:"database_dsn"`
	S3Region        string         `json:"s3_region"`
	S3AccessKeyID   string         `json:"s3_access_key_id"`
	S3SecretKey     string         `json:"s3_secret_key"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	S3PublicBaseURL string         `json:"s3_public_base_url"`
	DataDir         string         `json:"data_dir"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file selected by
// the -c or -config flag. Only fields present in the file override the
// current values. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setIfNotEmpty(&cfg.SupabaseURL, jc.SupabaseURL)
	setIfNotEmpty(&cfg.SupabaseAnonKey, jc.SupabaseAnonKey)
	setIfNotEmpty(&cfg.Bucket, jc.Bucket)
	setIfNotEmpty(&cfg.PostsTable, jc.PostsTable)
	setIfNotEmpty(&cfg.DriverStorage, jc.DriverStorage)
	setIfNotEmpty(&cfg.DriverRows, jc.DriverRows)
	setIfNotEmpty(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setIfNotEmpty(&cfg.S3Region, jc.S3Region)
	setIfNotEmpty(&cfg.S3AccessKeyID, jc.S3AccessKeyID)
	setIfNotEmpty(&cfg.S3SecretKey, jc.S3SecretKey)
	setIfNotEmpty(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setIfNotEmpty(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
	setIfNotEmpty(&cfg.DataDir, jc.DataDir)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

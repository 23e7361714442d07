package config

import "os"

// parseEnv overlays Config with credentials from the environment. Only the
// backend endpoint and keys are read here; everything else comes from the
// JSON file or flags.
func parseEnv(cfg *Config) {
	setIfNotEmpty(&cfg.SupabaseURL, os.Getenv("SUPABASE_URL"))
	setIfNotEmpty(&cfg.SupabaseAnonKey, os.Getenv("SUPABASE_ANON_KEY"))
	setIfNotEmpty(&cfg.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setIfNotEmpty(&cfg.S3AccessKeyID, os.Getenv("NOTED_S3_ACCESS_KEY_ID"))
	setIfNotEmpty(&cfg.S3SecretKey, os.Getenv("NOTED_S3_SECRET_KEY"))
}

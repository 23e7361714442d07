// Package config loads runtime configuration for the noted CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment variables: SUPABASE_URL, SUPABASE_ANON_KEY, DATABASE_DSN,
//     NOTED_S3_ACCESS_KEY_ID, NOTED_S3_SECRET_KEY.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// The backend URL and API key have no defaults; LoadConfig fails when both
// overlays leave them empty.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so the value can be
// either a string like "10s" or integer nanoseconds:
//
//	{
//	  "supabase_url": "https://abc.supabase.co",
//	  "supabase_anon_key": "public-anon-key",
//	  "bucket": "post-media",
//	  "posts_table": "posts",
//	  "storage_driver": "supabase",
//	  "rows_driver": "supabase",
//	  "request_timeout": "10s"
//	}
package config

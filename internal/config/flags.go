package config

import (
	"flag"
	"os"
	"time"

	"github.com/pogibrader/noted/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend project URL
//	-k string   backend public API key
//	-b string   storage bucket for attachments
//	-n string   notes table name
//	-s string   storage driver: supabase or s3
//	-r string   row store driver: supabase or postgres
//	-d string   PostgreSQL DSN (postgres row store)
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-o string   data directory for the local session database
//	-i int      request timeout in seconds
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-b", "-n", "-s", "-r", "-d", "-g", "-e", "-o", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SupabaseURL, "a", cfg.SupabaseURL, "backend project URL")
	fs.StringVar(&cfg.SupabaseAnonKey, "k", cfg.SupabaseAnonKey, "backend public API key")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "storage bucket for attachments")
	fs.StringVar(&cfg.PostsTable, "n", cfg.PostsTable, "notes table name")
	fs.StringVar(&cfg.DriverStorage, "s", cfg.DriverStorage, "storage driver (supabase|s3)")
	fs.StringVar(&cfg.DriverRows, "r", cfg.DriverRows, "row store driver (supabase|postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.DataDir, "o", cfg.DataDir, "data directory")
	requestTimeout := fs.Int("i", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}

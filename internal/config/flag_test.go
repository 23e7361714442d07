package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "https://abc.supabase.co", "-k", "anon", "-i", "5"}, expectPanic: false,
			expected: &Config{SupabaseURL: "https://abc.supabase.co", SupabaseAnonKey: "anon", RequestTimeout: 5 * time.Second}},
		{name: "Test2 drivers and bucket", args: []string{"cmd", "-s", "s3", "-r", "postgres", "-b", "media", "-d", "postgres://localhost/noted"}, expectPanic: false,
			expected: &Config{DriverStorage: "s3", DriverRows: "postgres", Bucket: "media", DatabaseDSN: "postgres://localhost/noted"}},
		{name: "Test3 incorrect timeout", args: []string{"cmd", "-a", "https://abc.supabase.co", "-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"supabase_url":      "https://abc.supabase.co",
		"supabase_anon_key": "anon-from-json",
		"bucket":            "media-json",
		"request_timeout":   "7s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
		assert.Equal(t, "anon-from-json", cfg.SupabaseAnonKey)
		assert.Equal(t, "media-json", cfg.Bucket)
		assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
		// fields absent from the file keep their defaults
		assert.Equal(t, "posts", cfg.PostsTable)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{SupabaseURL: "kept", RequestTimeout: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "kept", cfg.SupabaseURL)
		assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://env.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-from-env")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://env.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "anon-from-env", cfg.SupabaseAnonKey)
}

func Test_parseEnv_EmptyValuesIgnored(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")

	cfg := &Config{SupabaseURL: "kept"}
	parseEnv(cfg)

	assert.Equal(t, "kept", cfg.SupabaseURL)
}

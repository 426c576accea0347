package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixin-ap/internal/targets"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, StoreFile, c.Store)
	assert.Equal(t, DefaultDebounce, c.Debounce)
	assert.Empty(t, c.Options)
	assert.NoError(t, c.Validate())
}

func TestFromEnv_Values(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		EnvLogLevel:    "DEBUG",
		EnvStore:       "Badger",
		EnvStoreDir:    "/tmp/db",
		EnvMetricsFile: "/tmp/m.prom",
		EnvDebounce:    "1s",
		EnvOptions:     "tokens=A=1 disableTargetExport=true  reobfSrgFile=a=b",
		EnvSession:     "build-42",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, StoreBadger, c.Store)
	assert.Equal(t, "/tmp/db", c.StoreDir)
	assert.Equal(t, "/tmp/m.prom", c.MetricsFile)
	assert.Equal(t, time.Second, c.Debounce)
	assert.Equal(t, "build-42", c.Session)
	assert.Equal(t, map[string]string{
		"tokens":              "A=1",
		"disableTargetExport": "true",
		"reobfSrgFile":        "a=b",
	}, c.Options)
	assert.NoError(t, c.Validate())
}

func TestFromEnv_Errors(t *testing.T) {
	_, err := FromEnv(env(map[string]string{EnvDebounce: "soon"}))
	assert.Error(t, err)

	_, err = FromEnv(env(map[string]string{EnvOptions: "novalue"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"file store", Config{Store: StoreFile}, true},
		{"memory store", Config{Store: StoreMemory}, true},
		{"badger needs dir", Config{Store: StoreBadger}, false},
		{"badger with dir", Config{Store: StoreBadger, StoreDir: "db"}, true},
		{"unknown store", Config{Store: "s3"}, false},
		{"bad level", Config{Store: StoreFile, LogLevel: "loud"}, false},
		{"negative debounce", Config{Store: StoreFile, Debounce: -time.Second}, false},
		{"bad option key", Config{Store: StoreFile, Options: map[string]string{"1x": "y"}}, false},
		{"good option key", Config{Store: StoreFile, Options: map[string]string{"outRefMapFile": "y"}}, true},
		{"session id", Config{Store: StoreFile, Session: "0b6e1c9a-41d1-4f5e-9a63-1a2b3c4d5e6f"}, true},
		{"bad session", Config{Store: StoreFile, Session: "../etc"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MIXIN_AP_STORE=memory\n"), 0o644))

	t.Setenv(EnvStore, "")
	require.NoError(t, os.Unsetenv(EnvStore))

	c, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, c.Store)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	c := &Config{Store: StoreFile, StoreDir: dir}
	store, closer, err := c.OpenStore(nil)
	require.NoError(t, err)
	assert.Equal(t, targets.FileStore{Dir: dir}, store)
	assert.NoError(t, closer.Close())

	c = &Config{Store: StoreMemory}
	store, closer, err = c.OpenStore(nil)
	require.NoError(t, err)
	defer closer.Close()

	require.NoError(t, store.Save("s", targets.Associations{"pkg/T": {"pkg/M"}}))
	got, err := store.Load("s")
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/M"}, got["pkg/T"])
}

package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_MergesMultipleConfigs verifies that fields from multiple configs
// are merged into a single result, earlier sources winning.
func TestBuild_MergesMultipleConfigs(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{
			App: App{TokenSignKey: "from-first"},
		},
		&StructuredConfig{
			App:     App{TokenSignKey: "from-second", HashKey: "hk"},
			Storage: Storage{DB: DB{DSN: "postgres://localhost/db"}},
		},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "from-first", cfg.App.TokenSignKey)
	assert.Equal(t, "hk", cfg.App.HashKey)
	assert.Equal(t, "postgres://localhost/db", cfg.Storage.DB.DSN)
}

// TestBuild_DefaultsFillOnlyZeroFields verifies that withDefaults never
// overrides an explicitly configured value.
func TestBuild_DefaultsFillOnlyZeroFields(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		App: App{
			TokenSignKey:  "secret",
			HashKey:       "hk",
			TokenDuration: 2 * time.Hour,
		},
		Storage: Storage{DB: DB{DSN: "postgres://localhost/db"}},
	})

	cfg, err := b.withDefaults().build()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "credvault", cfg.App.TokenIssuer)
	assert.Equal(t, 5*time.Minute, cfg.Storage.PendingLoginTTL)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, time.Minute, cfg.Workers.JanitorInterval)
}

// TestBuild_MissingTokenSignKey verifies that validation refuses a config
// without a signing secret.
func TestBuild_MissingTokenSignKey(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		App:     App{HashKey: "hk"},
		Storage: Storage{DB: DB{DSN: "postgres://localhost/db"}},
	})

	_, err := b.build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTokenSignKey)
}

func TestBuild_MissingHashKey(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		App:     App{TokenSignKey: "secret"},
		Storage: Storage{DB: DB{DSN: "postgres://localhost/db"}},
	})

	_, err := b.build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingHashKey)
}

func TestBuild_MissingDSN(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		App: App{TokenSignKey: "secret", HashKey: "hk"},
	})

	_, err := b.build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

// TestWithJSON_MergesFileValues verifies that a JSON file referenced by an
// earlier source is parsed and merged.
func TestWithJSON_MergesFileValues(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"app": map[string]any{
			"token_sign_key": "json-secret",
			"hash_key":       "json-hk",
			"token_duration": "45m",
		},
		"storage": map[string]any{
			"db": map[string]any{"dsn": "postgres://json/db"},
		},
	})

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})

	cfg, err := b.withJSON().build()
	require.NoError(t, err)
	assert.Equal(t, "json-secret", cfg.App.TokenSignKey)
	assert.Equal(t, "json-hk", cfg.App.HashKey)
	assert.Equal(t, 45*time.Minute, cfg.App.TokenDuration)
	assert.Equal(t, "postgres://json/db", cfg.Storage.DB.DSN)
}

// TestWithJSON_MissingFile verifies that a dangling config path surfaces as
// a build error.
func TestWithJSON_MissingFile(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/does/not/exist.json"})

	_, err := b.withJSON().build()
	require.Error(t, err)
}

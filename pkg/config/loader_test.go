package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 100, cfg.MaxConnections)
	assert.Equal(t, 2, cfg.Generation.RootArrayCount)
	assert.Equal(t, 2, cfg.Generation.ChildArrayCount)
	assert.False(t, cfg.Generation.Randomized)
	assert.Equal(t, int64(123456789), cfg.Generation.Defaults.Int64)
	assert.Equal(t, "Lorem ipsum dolor sit amet", cfg.Generation.Defaults.Others)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFromFile_YAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "specmock.yaml", `
port: 9090
host: 127.0.0.1
generation:
  rootArrayCount: 5
  lazy: true
  defaults:
    int64DefaultValue: 42
    othersDefaultValue: hello
logging:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, 5, cfg.Generation.RootArrayCount)
	assert.Equal(t, 2, cfg.Generation.ChildArrayCount, "unset keys keep their default")
	assert.True(t, cfg.Generation.Lazy)
	assert.Equal(t, int64(42), cfg.Generation.Defaults.Int64)
	assert.Equal(t, int64(1234), cfg.Generation.Defaults.Int32)
	assert.Equal(t, "hello", cfg.Generation.Defaults.Others)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeFile(t, "specmock.json", `{"port": 7000, "generation": {"randomized": true, "seed": 9}}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.True(t, cfg.Generation.Randomized)
	assert.Equal(t, uint64(9), cfg.Generation.Seed)
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"invalid json", "bad.json", `{ invalid }`, ErrInvalidJSON},
		{"invalid yaml", "bad.yaml", "port: [1", ErrInvalidYAML},
		{"empty", "empty.yaml", "  \n", ErrEmptyFile},
		{"validation", "neg.yaml", "port: -1", ErrInvalid},
		{"bad date", "date.yaml", "generation:\n  dateRangeStart: yesterday", ErrInvalid},
		{"bad uuid", "uuid.yaml", "generation:\n  defaults:\n    uuidDefaultValue: nope", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeFile(t, tt.file, tt.content))
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	cfg, err := LoadFromFile("/nonexistent/path/specmock.yaml")
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadFromFile_Directory(t *testing.T) {
	_, err := LoadFromFile(t.TempDir())
	assert.Error(t, err)
}

func TestValidate_ClampsCounts(t *testing.T) {
	cfg := Default()
	cfg.Generation.RootArrayCount = -3
	cfg.Generation.ChildArrayCount = -1

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.Generation.RootArrayCount)
	assert.Equal(t, 0, cfg.Generation.ChildArrayCount)
}

func TestValidate_Ranges(t *testing.T) {
	cfg := Default()
	cfg.Generation.NumberMin, cfg.Generation.NumberMax = 10, 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default()
	cfg.Generation.DateRangeStart, cfg.Generation.DateRangeEnd = "2024-01-02", "2024-01-01"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestRandomOptions(t *testing.T) {
	cfg := Default()
	cfg.Generation.DateRangeStart = "2021-03-04"
	cfg.Generation.NumberMax = 50

	opts := cfg.Generation.RandomOptions()
	assert.Equal(t, 2021, opts.DateStart.Year())
	assert.Equal(t, 50.0, opts.NumberMax)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPort, "3000")
	t.Setenv(EnvHost, "localhost")
	t.Setenv(EnvRandomized, "true")
	t.Setenv(EnvLazy, "1")
	t.Setenv(EnvChildArrayCount, "4")
	t.Setenv(EnvSeed, "77")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvMaxConnections, "not-a-number")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.True(t, cfg.Generation.Randomized)
	assert.True(t, cfg.Generation.Lazy)
	assert.Equal(t, 4, cfg.Generation.ChildArrayCount)
	assert.Equal(t, uint64(77), cfg.Generation.Seed)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.MaxConnections, "unparseable values are ignored")
}

func TestApplyEnv_Bool(t *testing.T) {
	tests := []struct {
		value   string
		initial bool
		want    bool
	}{
		{"TRUE", false, true},
		{"True", false, true},
		{"t", false, true},
		{"FALSE", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(EnvDistinctElements, tt.value)

			cfg := Default()
			cfg.Generation.DistinctElements = tt.initial
			ApplyEnv(cfg)
			assert.Equal(t, tt.want, cfg.Generation.DistinctElements)
		})
	}
}

package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"server_url": "http://json-config.com",
	"log_level": "info",
	"cookie_file": "json_cookies.json"
}`

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	file, err := os.CreateTemp("", "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	t.Cleanup(func() {
		err := os.Remove(file.Name())
		require.NoError(t, err)
	})
	return file.Name()
}

func TestApplyDefaults(t *testing.T) {
	values := Config{}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, "http://localhost:8080", values.ServerURL)
	assert.Equal(t, "warn", values.LogLevel)
	assert.Equal(t, "", values.CookieFile)
}

func TestConfigDefaultsOnly(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Args)
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "http://json-config.com", cfg.ServerURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json_cookies.json", cfg.CookieFile)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_URL", "http://env.com")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "http://env.com", cfg.ServerURL) // env overrides json
	assert.Equal(t, "json_cookies.json", cfg.CookieFile)
}

func TestConfigPriorityAllSources(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_URL", "http://env.com")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := New(WithArgs([]string{
		"-s", "http://cli.com",
		"save", "https://example.com", "SomeToken",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://cli.com", cfg.ServerURL) // CLI > ENV > JSON
	assert.Equal(t, "error", cfg.LogLevel)           // from ENV
	assert.Equal(t, "json_cookies.json", cfg.CookieFile)
	assert.Equal(t, []string{"save", "https://example.com", "SomeToken"}, cfg.Args)
}

func TestConfigFileFromFlag(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)

	cfg, err := New(WithArgs([]string{"-c", jsonPath, "list"}))
	require.NoError(t, err)

	assert.Equal(t, "http://json-config.com", cfg.ServerURL)
	assert.Equal(t, jsonPath, cfg.ConfigFile)
	assert.Equal(t, []string{"list"}, cfg.Args)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_URL", "http://envonly.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("COOKIE_FILE", "env_cookies.json")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "http://envonly.com", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "env_cookies.json", cfg.CookieFile)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "unknown log level",
			args: []string{"-l", "verbose"},
		},
		{
			name: "server URL is not a URL",
			args: []string{"-s", "not a url"},
		},
		{
			name: "unknown flag",
			args: []string{"-x", "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithArgs(tt.args))
			assert.Error(t, err)
		})
	}
}

func TestConfigMissingJSONFile(t *testing.T) {
	t.Setenv("CONFIG", "/nonexistent/smrs/config.json")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
	return dir
}

func TestConfigWithoutDotEnvIsSilent(t *testing.T) {
	chdirTemp(t)

	var logged bytes.Buffer
	log.SetOutput(&logged)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
	})

	_, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Empty(t, logged.String())
}

func TestConfigFromDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_URL=http://dotenv.example.com\n"), 0600))
	_, alreadySet := os.LookupEnv("SERVER_URL")
	require.False(t, alreadySet)
	t.Cleanup(func() {
		require.NoError(t, os.Unsetenv("SERVER_URL"))
	})

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "http://dotenv.example.com", cfg.ServerURL)
}

func TestConfigBrokenDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(`SERVER_URL="unterminated`), 0600))

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

// Package config loads the client configuration. Values are applied in
// order of increasing priority: defaults, JSON file, environment, flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the client settings.
type Config struct {
	// ServerURL is the base URL of the smrs backend.
	ServerURL string `env:"SERVER_URL" json:"server_url" validate:"required,url"`

	// LogLevel is the zap log level.
	LogLevel string `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`

	// CookieFile is where the session cookie is persisted. Empty keeps it in memory.
	CookieFile string `env:"COOKIE_FILE" json:"cookie_file" validate:"omitempty,filepath"`

	// ConfigFile is the optional JSON file with the values above.
	ConfigFile string `env:"CONFIG" json:"-"`

	// Args are the positional arguments left after flag parsing.
	Args []string `json:"-"`
}

var defaultConfig = Config{
	ServerURL:  "http://localhost:8080",
	LogLevel:   "warn",
	CookieFile: "",
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command line parsing entirely.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses the given arguments instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

func applyDefaults(values *Config, defaults Config) {
	if values.ServerURL == "" {
		values.ServerURL = defaults.ServerURL
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.CookieFile == "" {
		values.CookieFile = defaults.CookieFile
	}
}

// override copies the non-empty fields of src into dst.
func override(dst *Config, src Config) {
	if src.ServerURL != "" {
		dst.ServerURL = src.ServerURL
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.CookieFile != "" {
		dst.CookieFile = src.CookieFile
	}
}

func (c *Config) loadJSON(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromJSON Config
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `json.Unmarshal()` calling: %w", err)
	}
	override(c, fromJSON)

	return nil
}

// New builds the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `godotenv.Load()` calling: %w", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		flags := flag.NewFlagSet("smrs", flag.ContinueOnError)
		flags.StringVar(&valuesFromFlags.ServerURL, "s", "", "base URL of the smrs backend")
		flags.StringVar(&valuesFromFlags.LogLevel, "l", "", "logger level")
		flags.StringVar(&valuesFromFlags.CookieFile, "f", "", "JSON file to persist the session cookie in")
		flags.StringVar(&valuesFromFlags.ConfigFile, "c", "", "JSON configuration file")
		if err := flags.Parse(options.args); err != nil {
			return nil, err
		}
		values.Args = flags.Args()
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	values.ConfigFile = valuesFromEnv.ConfigFile
	if valuesFromFlags.ConfigFile != "" {
		values.ConfigFile = valuesFromFlags.ConfigFile
	}
	if values.ConfigFile != "" {
		if err := values.loadJSON(values.ConfigFile); err != nil {
			return nil, err
		}
	}

	override(values, valuesFromEnv)
	override(values, valuesFromFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

// Package config loads the application configuration from defaults, an
// optional JSON config file, environment variables and command-line flags.
// Later sources override earlier ones (CLI > ENV > JSON > defaults).
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the admin client.
type Config struct {
	// APIBaseURL is the fixed origin of the remote shop API.
	APIBaseURL string `env:"SHOPADMIN_API_BASE" validate:"url"`

	// SessionFile is the path of the persisted session snapshot.
	SessionFile string `env:"SHOPADMIN_SESSION_FILE" validate:"filepath"`

	// LogLevel controls the zap logger level.
	LogLevel string `env:"SHOPADMIN_LOG_LEVEL" validate:"loglevel"`

	// RequestTimeout bounds a single API call. Zero means no timeout,
	// matching the remote API's own defaults.
	RequestTimeout time.Duration `env:"SHOPADMIN_REQUEST_TIMEOUT"`

	// ConfigFile is the path of an optional JSON config file.
	ConfigFile string `env:"CONFIG"`
}

var defaultConfig = Config{
	APIBaseURL:     "https://dummyjson.com",
	SessionFile:    "shopadmin_session.json",
	LogLevel:       "info",
	RequestTimeout: 0,
}

type jsonConfig struct {
	APIBaseURL     *string `json:"api_base_url"`
	SessionFile    *string `json:"session_file"`
	LogLevel       *string `json:"log_level"`
	RequestTimeout *string `json:"request_timeout"`
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
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

func (c *Config) applyJSONFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("unable to read config file %q: %w", fileName, err)
	}

	var fromJSON jsonConfig
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return fmt.Errorf("unable to parse config file %q: %w", fileName, err)
	}

	if fromJSON.APIBaseURL != nil {
		c.APIBaseURL = *fromJSON.APIBaseURL
	}
	if fromJSON.SessionFile != nil {
		c.SessionFile = *fromJSON.SessionFile
	}
	if fromJSON.LogLevel != nil {
		c.LogLevel = *fromJSON.LogLevel
	}
	if fromJSON.RequestTimeout != nil {
		timeout, err := time.ParseDuration(*fromJSON.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout in config file %q: %w", fileName, err)
		}
		c.RequestTimeout = timeout
	}

	return nil
}

// InitOption customizes the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing; it is used by
// tests which control configuration through the environment.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds a Config from all configuration sources and validates it.
// Flag parsing stops at the first non-flag argument so the remaining
// arguments stay available for command dispatch.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var flagValues Config
	flagsSet := map[string]bool{}
	if !options.disableFlagsParsing {
		flag.StringVar(&flagValues.APIBaseURL, "api", "", "base URL of the remote shop API")
		flag.StringVar(&flagValues.SessionFile, "s", "", "JSON file name with the persisted session")
		flag.StringVar(&flagValues.LogLevel, "l", "", "logger level")
		flag.DurationVar(&flagValues.RequestTimeout, "t", 0, "timeout for a single API request (0 disables)")
		flag.StringVar(&flagValues.ConfigFile, "c", "", "path to a JSON config file")
		flag.Parse()
		flag.Visit(func(f *flag.Flag) { flagsSet[f.Name] = true })
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	configFile := valuesFromEnv.ConfigFile
	if flagsSet["c"] {
		configFile = flagValues.ConfigFile
	}
	if configFile != "" {
		if err := values.applyJSONFile(configFile); err != nil {
			return nil, err
		}
	}

	if valuesFromEnv.APIBaseURL != "" {
		values.APIBaseURL = valuesFromEnv.APIBaseURL
	}
	if valuesFromEnv.SessionFile != "" {
		values.SessionFile = valuesFromEnv.SessionFile
	}
	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}
	if valuesFromEnv.RequestTimeout != 0 {
		values.RequestTimeout = valuesFromEnv.RequestTimeout
	}

	if flagsSet["api"] {
		values.APIBaseURL = flagValues.APIBaseURL
	}
	if flagsSet["s"] {
		values.SessionFile = flagValues.SessionFile
	}
	if flagsSet["l"] {
		values.LogLevel = flagValues.LogLevel
	}
	if flagsSet["t"] {
		values.RequestTimeout = flagValues.RequestTimeout
	}

	return values, values.validate()
}

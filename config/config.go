package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port int

	PostgresURL        string
	PostgresSecretPath string

	Resolver ResolverConfig

	LogLevel  log.Level
	LogFormat LogFormat
}

type ResolverConfig struct {
	ProvidersFile       string
	ProviderSecretPath  string
	ProviderTimeout     time.Duration
	CanonicalizeTimeout time.Duration
	Deadline            time.Duration
	// Raw policy names, parsed by the packages that own them
	UnknownPlatformPolicy string
	ExhaustionPolicy      string
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	defaultPort                = 5000
	defaultProviderTimeout     = 15 * time.Second
	defaultCanonicalizeTimeout = 5 * time.Second
	defaultDeadline            = 2 * time.Minute
)

type EnvfileKey string

const (
	// Port the HTTP API listens on
	EnvfileKeyPort = "PORT"

	// Postgres connection string for the resolution audit log; leave empty to disable it
	EnvfileKeyPostgresURL = "POSTGRES_URL"
	// AWS Secrets Manager path where Postgres connection string can be found
	EnvfileKeyPostgresSecretsPath = "POSTGRES_SECRETS_PATH"

	// YAML file replacing the built-in provider table
	EnvfileKeyProvidersFile = "PROVIDERS_FILE"
	// AWS Secrets Manager path holding extra request headers per provider
	EnvfileKeyProviderSecretsPath = "PROVIDER_SECRETS_PATH"
	// Time allowed for each provider call, in seconds
	EnvfileKeyProviderTimeout = "PROVIDER_TIMEOUT"
	// Time allowed for expanding a short link, in seconds
	EnvfileKeyCanonicalizeTimeout = "CANONICALIZE_TIMEOUT"
	// Time allowed for a whole resolution, in seconds
	EnvfileKeyResolveDeadline = "RESOLVE_DEADLINE"
	// What to do with links from unrecognized sites ("allow_universal", "reject")
	EnvfileKeyUnknownPlatformPolicy = "UNKNOWN_PLATFORM_POLICY"
	// What to do when the last provider returns unexpected data ("soft_success", "hard_failure")
	EnvfileKeyExhaustionPolicy = "EXHAUSTION_POLICY"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
)

var errExhaustionPolicyMissing = errors.New("must supply " + EnvfileKeyExhaustionPolicy)

// FromEnvfile reads configuration from an optional .env file in the working
// directory, with environment variables taking precedence.
func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("error reading config: %v", err)
		}
		log.Debug("no .env file found, using environment only")
	}

	cfg, err := load(getConfigString)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

func load(get func(key string) string) (Config, error) {
	exhaustionPolicy := get(EnvfileKeyExhaustionPolicy)
	if exhaustionPolicy == "" {
		return Config{}, errExhaustionPolicyMissing
	}

	port, err := parseInt(get(EnvfileKeyPort), defaultPort)
	if err != nil {
		return Config{}, fmt.Errorf("error parsing %s: %w", EnvfileKeyPort, err)
	}

	providerTimeout, err := parseSeconds(get, EnvfileKeyProviderTimeout, defaultProviderTimeout)
	if err != nil {
		return Config{}, err
	}
	canonicalizeTimeout, err := parseSeconds(get, EnvfileKeyCanonicalizeTimeout, defaultCanonicalizeTimeout)
	if err != nil {
		return Config{}, err
	}
	deadline, err := parseSeconds(get, EnvfileKeyResolveDeadline, defaultDeadline)
	if err != nil {
		return Config{}, err
	}

	logLevel, err := log.ParseLevel(get(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(get(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	return Config{
		Port:               port,
		PostgresURL:        get(EnvfileKeyPostgresURL),
		PostgresSecretPath: get(EnvfileKeyPostgresSecretsPath),
		Resolver: ResolverConfig{
			ProvidersFile:         get(EnvfileKeyProvidersFile),
			ProviderSecretPath:    get(EnvfileKeyProviderSecretsPath),
			ProviderTimeout:       providerTimeout,
			CanonicalizeTimeout:   canonicalizeTimeout,
			Deadline:              deadline,
			UnknownPlatformPolicy: get(EnvfileKeyUnknownPlatformPolicy),
			ExhaustionPolicy:      exhaustionPolicy,
		},
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}, nil
}

// DatabaseEnabled reports whether the resolution audit log is configured.
func (c Config) DatabaseEnabled() bool {
	return c.PostgresURL != "" || c.PostgresSecretPath != ""
}

// ConfigureLogging applies the level and formatter to the standard logger.
func (c Config) ConfigureLogging() {
	log.SetLevel(c.LogLevel)
	switch c.LogFormat {
	case LogFormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

func parseInt(raw string, fallback int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

func parseSeconds(get func(key string) string, key string, fallback time.Duration) (time.Duration, error) {
	seconds, err := parseInt(get(key), int(fallback.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", key, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of seconds", key)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

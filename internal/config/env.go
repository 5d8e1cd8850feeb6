// Package config reads process configuration from the environment, optionally
// seeded from local .env files.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variables read by the relaygraph command.
const (
	EnvAddr           = "RELAYGRAPH_ADDR"
	EnvPretty         = "RELAYGRAPH_PRETTY"
	EnvTimeout        = "RELAYGRAPH_TIMEOUT"
	EnvIntrospection  = "RELAYGRAPH_INTROSPECTION"
	EnvOTelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTelService    = "OTEL_SERVICE_NAME"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	defaultEnvFileDev = ".env.dev"
)

// LoadEnv loads .env and .env.dev from the working directory when present.
// Later files override earlier ones. It returns the files that were loaded.
func LoadEnv(logger logrus.FieldLogger) []string {
	return LoadEnvFiles(logger, ".env", defaultEnvFileDev)
}

// LoadEnvFiles loads the given env files in order, skipping missing ones.
func LoadEnvFiles(logger logrus.FieldLogger, files ...string) []string {
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil {
		if len(loaded) == 0 {
			logger.Debug("No local env files loaded; relying on process environment")
		} else {
			logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
		}
	}
	return loaded
}

// GetEnv gets an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvDuration gets a duration environment variable (e.g. "10s") with a
// default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

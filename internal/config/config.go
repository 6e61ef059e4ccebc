package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env string

	APIBaseURL string
	APIToken   string
	APITimeout time.Duration
	StateDir   string

	StubHTTPPort     string
	StubDatabasePath string
	StubJWTSecret    string
	StubJWTIssuer    string
	StubJWTAudience  string
	StubTokenTTL     time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("KIOSKCTL_ENV", "development")

	cfg := &Config{
		Env:        env,
		APIBaseURL: getEnv("KIOSKCTL_API_URL", "http://localhost:8080"),
		APIToken:   os.Getenv("KIOSKCTL_TOKEN"),
		StateDir:   getEnv("KIOSKCTL_STATE_DIR", defaultStateDir()),

		StubHTTPPort:     getEnv("KIOSKCTL_STUB_PORT", "8080"),
		StubDatabasePath: getEnv("KIOSKCTL_STUB_DB", "kioskctl-stub.db"),
		StubJWTSecret:    os.Getenv("KIOSKCTL_STUB_JWT_SECRET"),
		StubJWTIssuer:    getEnv("KIOSKCTL_STUB_JWT_ISSUER", "kioskctl-stub"),
		StubJWTAudience:  getEnv("KIOSKCTL_STUB_JWT_AUDIENCE", "kioskctl"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "kioskctl"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	apiTimeout, err := time.ParseDuration(getEnv("KIOSKCTL_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse KIOSKCTL_API_TIMEOUT: %w", err)
	}
	cfg.APITimeout = apiTimeout

	tokenTTL, err := time.ParseDuration(getEnv("KIOSKCTL_STUB_TOKEN_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("parse KIOSKCTL_STUB_TOKEN_TTL: %w", err)
	}
	cfg.StubTokenTTL = tokenTTL

	metricsInterval, err := time.ParseDuration(getEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse OTEL_METRICS_EXPORT_INTERVAL: %w", err)
	}
	cfg.OTELMetricsExportInterval = metricsInterval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.APIBaseURL == "" {
		errs = append(errs, "KIOSKCTL_API_URL is required")
	} else if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "KIOSKCTL_API_URL must be an absolute URL")
	}
	if c.APITimeout <= 0 {
		errs = append(errs, "KIOSKCTL_API_TIMEOUT must be positive")
	}
	if c.StateDir == "" {
		errs = append(errs, "KIOSKCTL_STATE_DIR is required")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if len(errs) > 0 {
		return errors.New("invalid configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

// ValidateStub checks the settings the dev stub server needs on top of
// the base configuration. The console commands never require these.
func (c *Config) ValidateStub() error {
	var errs []string
	if len(c.StubJWTSecret) < 32 {
		errs = append(errs, "KIOSKCTL_STUB_JWT_SECRET must be at least 32 chars")
	}
	if c.StubDatabasePath == "" {
		errs = append(errs, "KIOSKCTL_STUB_DB is required")
	}
	if c.StubTokenTTL <= 0 {
		errs = append(errs, "KIOSKCTL_STUB_TOKEN_TTL must be positive")
	}
	if len(errs) > 0 {
		return errors.New("invalid stub configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kioskctl"
	}
	return filepath.Join(home, ".kioskctl")
}

func isValidLogLevel(v string) bool {
	switch v {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return parsed
}

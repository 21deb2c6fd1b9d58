package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/canvasstrack/voterroll/internal/utils"
)

// JSONConfig is the on-disk configuration file. Despite the name it may also
// be written in YAML; the file extension decides.
type JSONConfig struct {
	Port            int            `json:"port" yaml:"port"`
	Env             string         `json:"env" yaml:"env"`
	RateLimit       int            `json:"rate-limit" yaml:"rate-limit"`
	JWTSecret       string         `json:"jwt-secret" yaml:"jwt-secret"`
	TokenTTLMinutes int            `json:"token-ttl-minutes" yaml:"token-ttl-minutes"`
	IndexPath       string         `json:"index-path" yaml:"index-path"`
	AllowedOrigins  []string       `json:"allowed-origins" yaml:"allowed-origins"`
	TrustedProxies  []string       `json:"trusted-proxies" yaml:"trusted-proxies"`
	Database        DatabaseConfig `json:"database" yaml:"database"`
	Search          SearchConfig   `json:"search" yaml:"search"`
	Report          ReportConfig   `json:"report" yaml:"report"`
}

type DatabaseConfig struct {
	Driver                string `json:"driver" yaml:"driver"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	MaxOpenConns          int    `json:"max-open-conns" yaml:"max-open-conns"`
	AcquireTimeoutSeconds int    `json:"acquire-timeout-seconds" yaml:"acquire-timeout-seconds"`
}

// SearchConfig overrides the ranking constants. Zero values keep the
// built-in defaults.
type SearchConfig struct {
	MinQueryLength  int           `json:"min-query-length" yaml:"min-query-length"`
	MaxQueryLength  int           `json:"max-query-length" yaml:"max-query-length"`
	CandidateCap    int           `json:"candidate-cap" yaml:"candidate-cap"`
	DefaultPageSize int           `json:"default-page-size" yaml:"default-page-size"`
	MaxPageSize     int           `json:"max-page-size" yaml:"max-page-size"`
	Weights         WeightsConfig `json:"weights" yaml:"weights"`
}

type WeightsConfig struct {
	ExactName  int `json:"exact-name" yaml:"exact-name"`
	WordSet    int `json:"word-set" yaml:"word-set"`
	ExactID    int `json:"exact-id" yaml:"exact-id"`
	Prefix     int `json:"prefix" yaml:"prefix"`
	Contains   int `json:"contains" yaml:"contains"`
	IDContains int `json:"id-contains" yaml:"id-contains"`
}

type ReportConfig struct {
	FontPath string `json:"font-path" yaml:"font-path"`
}

var validDrivers = []string{"sqlite", "sqlite3", "mysql", "pgx"}

// LoadFromFile reads, defaults and validates a configuration file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config JSONConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *JSONConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 4000
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 100
	}
	if c.TokenTTLMinutes == 0 {
		c.TokenTTLMinutes = int(DefaultTokenTTL / time.Minute)
	}
	if c.IndexPath == "" {
		c.IndexPath = "./index.html"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./voters.db"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 50
	}
	if c.Database.AcquireTimeoutSeconds == 0 {
		c.Database.AcquireTimeoutSeconds = 10
	}
}

func (c *JSONConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	switch c.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("env must be one of: development, test, production (got %q)", c.Env)
	}

	if c.RateLimit < 1 {
		return fmt.Errorf("rate-limit must be at least 1, got %d", c.RateLimit)
	}

	if c.Env == "production" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("jwt-secret must be at least 32 characters in production")
	}

	for _, origin := range c.AllowedOrigins {
		if !strings.HasPrefix(origin, "https://") && !strings.HasPrefix(origin, "http://") {
			return fmt.Errorf("allowed-origins entries must be http(s) origins, got %q", origin)
		}
	}

	if _, err := utils.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("trusted-proxies: %w", err)
	}

	if c.TokenTTLMinutes < 1 {
		return fmt.Errorf("token-ttl-minutes must be at least 1, got %d", c.TokenTTLMinutes)
	}

	if !containsString(validDrivers, c.Database.Driver) {
		return fmt.Errorf("database.driver must be one of: %s (got %q)", strings.Join(validDrivers, ", "), c.Database.Driver)
	}

	if isSQLiteDriver(c.Database.Driver) && c.Database.DSN != ":memory:" && hasPathTraversal(c.Database.DSN) {
		return fmt.Errorf("database.dsn contains path traversal: %s", c.Database.DSN)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max-open-conns must be at least 1, got %d", c.Database.MaxOpenConns)
	}

	if c.Search.MinQueryLength < 0 || c.Search.MaxQueryLength < 0 || c.Search.CandidateCap < 0 || c.Search.DefaultPageSize < 0 || c.Search.MaxPageSize < 0 {
		return fmt.Errorf("search settings cannot be negative")
	}

	if c.Search.DefaultPageSize > 0 && c.Search.MaxPageSize > 0 && c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default-page-size (%d) exceeds search.max-page-size (%d)", c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}

	return nil
}

// ToAppConfig converts the file representation into the runtime Config.
func (c *JSONConfig) ToAppConfig() Config {
	// entries were checked by validate when the file was loaded
	proxies, _ := utils.ParseTrustedProxies(c.TrustedProxies)
	return Config{
		Port:      c.Port,
		Env:       EnvFlagToEnvironment(c.Env),
		Verbose:   true,
		RateLimit: c.RateLimit,
		JWTSecret: c.JWTSecret,
		TokenTTL:  time.Duration(c.TokenTTLMinutes) * time.Minute,
		IndexPath: c.IndexPath,
		FontPath:  c.Report.FontPath,

		AllowedOrigins: c.AllowedOrigins,
		TrustedProxies: proxies,
	}
}

func isSQLiteDriver(driver string) bool {
	return driver == "sqlite" || driver == "sqlite3"
}

func hasPathTraversal(p string) bool {
	if filepath.IsAbs(p) {
		return false
	}
	cleaned := filepath.Clean(p)
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

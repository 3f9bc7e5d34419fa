// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings such as
// server timeouts, logging, the identity bridge, the cellar store driver,
// the assistant provider, rate limiting, and observability.
//
// Every value read from the environment is trimmed of surrounding
// whitespace and control characters before use, since deployment tooling
// frequently leaves stray newlines in secrets.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Store drivers.
const (
	DriverFirestore = "firestore"
	DriverSQLite    = "sqlite"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-cellar-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// IdentityConfig configures the LINE login bridge and session tokens.
type IdentityConfig struct {
	LIFFID        string        // LINE_LIFF_ID
	APIBaseURL    string        // LINE_API_BASE_URL
	SessionSecret string        // SESSION_SECRET (HS256 key)
	SessionTTL    time.Duration // SESSION_TTL
}

// FirebaseConfig holds the document-store connection parameters. The six
// web parameters are also published to browser clients by /bootstrap.
type FirebaseConfig struct {
	APIKey            string // FIREBASE_API_KEY
	AuthDomain        string // FIREBASE_AUTH_DOMAIN
	ProjectID         string // FIREBASE_PROJECT_ID
	StorageBucket     string // FIREBASE_STORAGE_BUCKET
	MessagingSenderID string // FIREBASE_MESSAGING_SENDER_ID
	AppID             string // FIREBASE_APP_ID
	CredentialsFile   string // FIREBASE_CREDENTIALS_FILE (optional, ADC otherwise)
}

// Complete reports whether every web connection parameter is present.
func (f FirebaseConfig) Complete() bool {
	return len(f.Missing()) == 0
}

// Missing lists the environment variables that are unset.
func (f FirebaseConfig) Missing() []string {
	var out []string
	for _, p := range []struct{ name, val string }{
		{"FIREBASE_API_KEY", f.APIKey},
		{"FIREBASE_AUTH_DOMAIN", f.AuthDomain},
		{"FIREBASE_PROJECT_ID", f.ProjectID},
		{"FIREBASE_STORAGE_BUCKET", f.StorageBucket},
		{"FIREBASE_MESSAGING_SENDER_ID", f.MessagingSenderID},
		{"FIREBASE_APP_ID", f.AppID},
	} {
		if p.val == "" {
			out = append(out, p.name)
		}
	}
	return out
}

// RedisConfig configures the optional change-feed fan-out for the SQL driver.
type RedisConfig struct {
	Addr     string // REDIS_ADDR; empty keeps change notifications in-process
	Password string // REDIS_PASSWORD
	DB       int    // REDIS_DB
}

// StoreConfig selects and configures the cellar store.
type StoreConfig struct {
	Driver   string // STORE_DRIVER: firestore|sqlite
	DBPath   string // DB_PATH (sqlite)
	Firebase FirebaseConfig
	Redis    RedisConfig
}

// AssistantConfig configures the generative-AI provider.
type AssistantConfig struct {
	APIKey        string  // GEMINI_API_KEY (falls back to API_KEY)
	Model         string  // GEMINI_MODEL
	Temperature   float64 // ASSISTANT_TEMPERATURE
	LabelMaxBytes int64   // LABEL_MAX_BYTES
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // 0 disables (needed for long-lived streams)
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	Identity  IdentityConfig
	Store     StoreConfig
	Assistant AssistantConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
//
// Missing provider credentials are not validation errors: the identity
// bridge, the store and the assistant each degrade on their own and report
// the problem at runtime.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 0),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		Identity: IdentityConfig{
			LIFFID:        getenv("LINE_LIFF_ID", ""),
			APIBaseURL:    strings.TrimRight(getenv("LINE_API_BASE_URL", "https://api.line.me"), "/"),
			SessionSecret: getenv("SESSION_SECRET", ""),
			SessionTTL:    getdur("SESSION_TTL", 12*time.Hour),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenv("STORE_DRIVER", DriverFirestore)),
			DBPath: getenv("DB_PATH", "cellar.db"),
			Firebase: FirebaseConfig{
				APIKey:            getenv("FIREBASE_API_KEY", ""),
				AuthDomain:        getenv("FIREBASE_AUTH_DOMAIN", ""),
				ProjectID:         getenv("FIREBASE_PROJECT_ID", ""),
				StorageBucket:     getenv("FIREBASE_STORAGE_BUCKET", ""),
				MessagingSenderID: getenv("FIREBASE_MESSAGING_SENDER_ID", ""),
				AppID:             getenv("FIREBASE_APP_ID", ""),
				CredentialsFile:   getenv("FIREBASE_CREDENTIALS_FILE", ""),
			},
			Redis: RedisConfig{
				Addr:     getenv("REDIS_ADDR", ""),
				Password: getenv("REDIS_PASSWORD", ""),
				DB:       getint("REDIS_DB", 0),
			},
		},
		Assistant: AssistantConfig{
			APIKey:        firstEnv("GEMINI_API_KEY", "API_KEY"),
			Model:         getenv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:   getfloat("ASSISTANT_TEMPERATURE", 0.7),
			LabelMaxBytes: int64(getint("LABEL_MAX_BYTES", 8<<20)),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-cellar-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.Port == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.WriteTimeout < 0 {
		return cfg, errors.New("WRITE_TIMEOUT must be >= 0")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.Store.Driver {
	case DriverFirestore, DriverSQLite:
	default:
		return cfg, errors.New("STORE_DRIVER must be one of: firestore, sqlite")
	}
	if cfg.Store.Driver == DriverSQLite && cfg.Store.DBPath == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Identity.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.Assistant.Temperature < 0 || cfg.Assistant.Temperature > 2 {
		return cfg, errors.New("ASSISTANT_TEMPERATURE must be in [0,2]")
	}
	if cfg.Assistant.LabelMaxBytes <= 0 {
		return cfg, errors.New("LABEL_MAX_BYTES must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

// Clean strips surrounding whitespace and control characters.
func Clean(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		if v = Clean(v); v != "" {
			return v
		}
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := getenv(k, ""); v != "" {
			return v
		}
	}
	return ""
}

func getfloat(k string, def float64) float64 {
	if v := getenv(k, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v := getenv(k, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := getenv(k, ""); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := getenv(k, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}

package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// Identity
	t.Setenv("LINE_LIFF_ID", " 1650000000-AbCdEfGh\r\n")
	t.Setenv("LINE_API_BASE_URL", "http://line.local/")
	t.Setenv("SESSION_SECRET", "s3cret\n")
	t.Setenv("SESSION_TTL", "1h")

	// Store
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("FIREBASE_PROJECT_ID", "\tcellar-prod ")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")

	// Assistant
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", " fallback-key\n")
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("ASSISTANT_TEMPERATURE", "0.8")
	t.Setenv("LABEL_MAX_BYTES", "1024")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// Identity (trimmed of whitespace and control characters)
	if cfg.Identity.LIFFID != "1650000000-AbCdEfGh" ||
		cfg.Identity.APIBaseURL != "http://line.local" ||
		cfg.Identity.SessionSecret != "s3cret" ||
		cfg.Identity.SessionTTL != time.Hour {
		t.Fatalf("identity unexpected: %+v", cfg.Identity)
	}

	// Store
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DBPath != "db.sqlite" ||
		cfg.Store.Firebase.ProjectID != "cellar-prod" ||
		cfg.Store.Redis.Addr != "redis:6379" || cfg.Store.Redis.DB != 2 {
		t.Fatalf("store unexpected: %+v", cfg.Store)
	}

	// Assistant
	if cfg.Assistant.APIKey != "fallback-key" || cfg.Assistant.Model != "gemini-test" ||
		cfg.Assistant.Temperature != 0.8 || cfg.Assistant.LabelMaxBytes != 1024 {
		t.Fatalf("assistant unexpected: %+v", cfg.Assistant)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default expected '/api/v1', got %q", cfg.APIBasePath)
	}
	if cfg.Store.Driver != DriverFirestore {
		t.Fatalf("default driver should be firestore, got %q", cfg.Store.Driver)
	}
	if cfg.WriteTimeout != 0 {
		t.Fatalf("default WRITE_TIMEOUT should be 0 (streams), got %v", cfg.WriteTimeout)
	}
	if cfg.Assistant.Temperature != 0.7 {
		t.Fatalf("default temperature should be 0.7, got %v", cfg.Assistant.Temperature)
	}
	if cfg.Store.Firebase.Complete() {
		t.Fatalf("firebase config should be incomplete without env")
	}
}

func TestFirebaseConfig_Missing(t *testing.T) {
	f := FirebaseConfig{APIKey: "k", AuthDomain: "d", ProjectID: "p", StorageBucket: "b", MessagingSenderID: "m"}
	if f.Complete() {
		t.Fatalf("expected incomplete config")
	}
	if got := f.Missing(); !reflect.DeepEqual(got, []string{"FIREBASE_APP_ID"}) {
		t.Fatalf("Missing() = %v", got)
	}
	f.AppID = "a"
	if !f.Complete() || len(f.Missing()) != 0 {
		t.Fatalf("expected complete config")
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("invalid LOG_LEVEL", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		if _, err := Load(); err == nil {
			t.Fatalf("expected LOG_LEVEL validation error")
		}
	})
	t.Run("non-positive timeouts", func(t *testing.T) {
		t.Setenv("READ_TIMEOUT", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "timeouts must be positive") {
			t.Fatalf("expected timeouts validation error, got: %v", err)
		}
	})
	t.Run("negative write timeout", func(t *testing.T) {
		t.Setenv("WRITE_TIMEOUT", "-1s")
		if _, err := Load(); err == nil || !containsErr(err, "WRITE_TIMEOUT") {
			t.Fatalf("expected WRITE_TIMEOUT validation error, got: %v", err)
		}
	})
	t.Run("max header bytes <= 0", func(t *testing.T) {
		t.Setenv("MAX_HEADER_BYTES", "0")
		if _, err := Load(); err == nil || !containsErr(err, "MAX_HEADER_BYTES") {
			t.Fatalf("expected MAX_HEADER_BYTES validation error, got: %v", err)
		}
	})
	t.Run("unknown store driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		if _, err := Load(); err == nil || !containsErr(err, "STORE_DRIVER") {
			t.Fatalf("expected STORE_DRIVER validation error, got: %v", err)
		}
	})
	t.Run("session ttl non-positive", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "SESSION_TTL") {
			t.Fatalf("expected SESSION_TTL validation error, got: %v", err)
		}
	})
	t.Run("temperature out of range", func(t *testing.T) {
		t.Setenv("ASSISTANT_TEMPERATURE", "3")
		if _, err := Load(); err == nil || !containsErr(err, "ASSISTANT_TEMPERATURE") {
			t.Fatalf("expected ASSISTANT_TEMPERATURE validation error, got: %v", err)
		}
	})
	t.Run("label max bytes", func(t *testing.T) {
		t.Setenv("LABEL_MAX_BYTES", "0")
		if _, err := Load(); err == nil || !containsErr(err, "LABEL_MAX_BYTES") {
			t.Fatalf("expected LABEL_MAX_BYTES validation error, got: %v", err)
		}
	})
	t.Run("rate rps negative", func(t *testing.T) {
		t.Setenv("RATE_RPS", "-1")
		if _, err := Load(); err == nil || !containsErr(err, "RATE_RPS") {
			t.Fatalf("expected RATE_RPS validation error, got: %v", err)
		}
	})
	t.Run("rate burst < 1", func(t *testing.T) {
		t.Setenv("RATE_BURST", "0")
		if _, err := Load(); err == nil || !containsErr(err, "RATE_BURST") {
			t.Fatalf("expected RATE_BURST validation error, got: %v", err)
		}
	})
	t.Run("hsts max age negative", func(t *testing.T) {
		t.Setenv("HSTS_MAX_AGE", "-1s")
		if _, err := Load(); err == nil || !containsErr(err, "HSTS_MAX_AGE") {
			t.Fatalf("expected HSTS_MAX_AGE validation error, got: %v", err)
		}
	})
	t.Run("otel sample ratio out of range", func(t *testing.T) {
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")
		if _, err := Load(); err == nil || !containsErr(err, "OTEL_TRACES_SAMPLER_ARG") {
			t.Fatalf("expected OTEL_TRACES_SAMPLER_ARG validation error, got: %v", err)
		}
	})
}

// --- helpers ---

func TestClean(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"  abc  ":           "abc",
		"\tkey\r\n":         "key",
		"\x00\x1bvalue\x7f": "value",
		"in ner":            "in ner",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_BLANK", " \n ")
	if getenv("X_BLANK", "d") != "d" {
		t.Fatalf("getenv should fall back to default on blank var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	trueVals := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	for i, v := range trueVals {
		k := "B_T_" + config_strconv(i)
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	falseVals := []string{"0", "false", "FALSE", " no ", "N", "off", "Off"}
	for i, v := range falseVals {
		k := "B_F_" + config_strconv(i)
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	in := " a, ,b ,  c  ,"
	want := []string{"a", "b", "c"}
	if got := splitCSV(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV mismatch: got %#v want %#v", got, want)
	}

	if normalizeBasePath("") != "/" {
		t.Fatalf("normalizeBasePath empty -> '/' failed")
	}
	if normalizeBasePath("v1") != "/v1" {
		t.Fatalf("normalizeBasePath missing leading slash failed")
	}
	if normalizeBasePath("/v1/") != "/v1" {
		t.Fatalf("normalizeBasePath trailing slash trim failed")
	}
	if normalizeBasePath(" / ") != "/" {
		t.Fatalf("normalizeBasePath whitespace failed")
	}
}

// small helper (avoid fmt just for ints)
func config_strconv(i int) string { return string('a' + rune(i)) }

// Ensure tests don't leak env to others.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "GEMINI_API_KEY", "API_KEY", "LINE_LIFF_ID"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}

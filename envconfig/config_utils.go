// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String/StringWithDefault: String-Getter
// - Uint/Uint64: Integer-Getter mit Default-Wert
// - Duration: Dauer-Getter (Go-Dauer oder Sekunden)
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
package envconfig

import (
	"log/slog"
	"strconv"
	"time"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// StringWithDefault liest einen String und faellt bei leerem Wert auf den Default zurueck
func StringWithDefault(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// =============================================================================
// Integer- und Dauer-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 gibt eine Funktion zurueck, die einen uint64 mit Default-Wert liest
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Duration liest eine Dauer ("30s", "15m") oder eine Zahl in Sekunden
// Nicht-positive oder ungueltige Werte ergeben den Default
func Duration(key string, defaultValue time.Duration) func() time.Duration {
	return func() time.Duration {
		s := Var(key)
		if s == "" {
			return defaultValue
		}
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"VISMATCH_HOST":                  {"VISMATCH_HOST", Host(), "IP Address for the vismatch server (default 127.0.0.1:5000)"},
		"VISMATCH_DEBUG":                 {"VISMATCH_DEBUG", LogLevel(), "Show additional debug information (e.g. VISMATCH_DEBUG=1)"},
		"VISMATCH_ORIGINS":               {"VISMATCH_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"VISMATCH_ENV":                   {"VISMATCH_ENV", Environment(), "Environment name reported by /health (default \"development\")"},
		"VISMATCH_USE_LOCAL_CLIP":        {"VISMATCH_USE_LOCAL_CLIP", UseLocalCLIP(), "Use the CLIP service instead of the Hugging Face fallback"},
		"VISMATCH_CLIP_URL":              {"VISMATCH_CLIP_URL", CLIPURL(), "Base URL of the CLIP service (default http://localhost:3000)"},
		"VISMATCH_CLIP_TIMEOUT":          {"VISMATCH_CLIP_TIMEOUT", CLIPTimeout(), "Timeout for CLIP requests (default \"30s\")"},
		"VISMATCH_CLIP_JPEG":             {"VISMATCH_CLIP_JPEG", CLIPJPEG(), "Re-encode PNG, WebP and GIF as JPEG before sending to CLIP"},
		"HUGGINGFACE_API_KEY":            {"HUGGINGFACE_API_KEY", HuggingFaceToken() != "", "Hugging Face token for the fallback provider (HF_TOKEN also accepted)"},
		"HUGGINGFACE_MODEL":              {"HUGGINGFACE_MODEL", HuggingFaceModel(), "Classification model for the fallback provider"},
		"VISMATCH_HF_ENDPOINT":           {"VISMATCH_HF_ENDPOINT", HuggingFaceEndpoint(), "Base URL of the Hugging Face Inference API"},
		"VISMATCH_HF_REQUEST":            {"VISMATCH_HF_REQUEST", HuggingFaceRequest(), "Request body for the fallback: binary or json"},
		"VISMATCH_HF_TIMEOUT":            {"VISMATCH_HF_TIMEOUT", HuggingFaceTimeout(), "Timeout for Hugging Face requests (default \"60s\")"},
		"VISMATCH_FETCH_TIMEOUT":         {"VISMATCH_FETCH_TIMEOUT", FetchTimeout(), "Timeout for fetching remote images (default \"10s\")"},
		"VISMATCH_MAX_FETCH_BYTES":       {"VISMATCH_MAX_FETCH_BYTES", MaxFetchBytes(), "Maximum size of a fetched image in bytes"},
		"VISMATCH_TOP_K":                 {"VISMATCH_TOP_K", TopK(), "Number of matches returned (default 10)"},
		"VISMATCH_CATALOG":               {"VISMATCH_CATALOG", Catalog(), "Catalog store: memory, sqlite, redis, qdrant, supabase"},
		"VISMATCH_SQLITE_PATH":           {"VISMATCH_SQLITE_PATH", SQLitePath(), "Path of the SQLite catalog"},
		"VISMATCH_REDIS_URL":             {"VISMATCH_REDIS_URL", RedisURL(), "Redis URL for the redis catalog"},
		"VISMATCH_QDRANT_URL":            {"VISMATCH_QDRANT_URL", QdrantURL(), "gRPC address of Qdrant"},
		"VISMATCH_QDRANT_COLLECTION":     {"VISMATCH_QDRANT_COLLECTION", QdrantCollection(), "Qdrant collection for products"},
		"SUPABASE_URL":                   {"SUPABASE_URL", SupabaseURL(), "Supabase project URL"},
		"VISMATCH_SUPABASE_TABLE":        {"VISMATCH_SUPABASE_TABLE", SupabaseTable(), "Supabase table for products"},
		"VISMATCH_UPLOAD_DIR":            {"VISMATCH_UPLOAD_DIR", UploadDir(), "Directory for uploaded images"},
		"VISMATCH_MAX_UPLOAD_SIZE":       {"VISMATCH_MAX_UPLOAD_SIZE", MaxUploadSize(), "Maximum upload size in bytes (default 5MB)"},
		"VISMATCH_RATE_LIMIT_MAX":        {"VISMATCH_RATE_LIMIT_MAX", RateLimitMax(), "Requests per IP and window (default 100)"},
		"VISMATCH_RATE_LIMIT_WINDOW":     {"VISMATCH_RATE_LIMIT_WINDOW", RateLimitWindow(), "Rate limit window (default \"15m\")"},
		"VISMATCH_STRICT_RATE_LIMIT_MAX": {"VISMATCH_STRICT_RATE_LIMIT_MAX", StrictRateLimitMax(), "Upload and match requests per IP and window (default 20)"},
	}
}


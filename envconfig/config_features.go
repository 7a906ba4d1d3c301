// config_features.go - Provider-, Catalog- und Limit-Konfiguration
//
// Dieses Modul enthaelt:
// - Provider-Schalter und Endpunkte (CLIP, Hugging Face)
// - Catalog-Store Auswahl und Verbindungsdaten
// - Upload- und Rate-Limit-Einstellungen
package envconfig

import "time"

// =============================================================================
// Embedding-Provider
// =============================================================================

var (
	// UseLocalCLIP waehlt den CLIP-Service als aktiven Provider
	// false = Hugging Face Klassifikations-Fallback
	UseLocalCLIP = Bool("VISMATCH_USE_LOCAL_CLIP")

	// CLIPURL ist der Basis-Endpunkt des CLIP-Service
	CLIPURL = StringWithDefault("VISMATCH_CLIP_URL", "http://localhost:3000")

	// CLIPTimeout begrenzt einen Aufruf des CLIP-Service
	CLIPTimeout = Duration("VISMATCH_CLIP_TIMEOUT", 30*time.Second)

	// CLIPJPEG konvertiert PNG, WebP und GIF vor dem Senden nach JPEG
	CLIPJPEG = Bool("VISMATCH_CLIP_JPEG")

	// HuggingFaceModel ist das Klassifikationsmodell des Fallbacks
	HuggingFaceModel = StringWithDefault("HUGGINGFACE_MODEL", "google/vit-base-patch16-384")

	// HuggingFaceEndpoint ist die Basis-URL der Inference API
	HuggingFaceEndpoint = StringWithDefault("VISMATCH_HF_ENDPOINT", "https://api-inference.huggingface.co")

	// HuggingFaceRequest waehlt den Request-Body: "binary" oder "json"
	HuggingFaceRequest = StringWithDefault("VISMATCH_HF_REQUEST", "binary")

	// HuggingFaceTimeout begrenzt einen Aufruf der Inference API
	HuggingFaceTimeout = Duration("VISMATCH_HF_TIMEOUT", 60*time.Second)
)

// =============================================================================
// Bildbeschaffung und Matching
// =============================================================================

var (
	// FetchTimeout begrenzt das Laden von Bildern per HTTP(S)
	FetchTimeout = Duration("VISMATCH_FETCH_TIMEOUT", 10*time.Second)

	// MaxFetchBytes begrenzt die Groesse geladener Bilder
	MaxFetchBytes = Uint64("VISMATCH_MAX_FETCH_BYTES", 20<<20)

	// TopK ist die Anzahl der zurueckgegebenen Treffer
	TopK = Uint("VISMATCH_TOP_K", 10)
)

// =============================================================================
// Catalog-Store
// =============================================================================

var (
	// Catalog waehlt den Store-Treiber: memory, sqlite, redis, qdrant, supabase
	Catalog = StringWithDefault("VISMATCH_CATALOG", "sqlite")

	// RedisURL ist die Verbindungs-URL fuer den Redis-Treiber
	RedisURL = StringWithDefault("VISMATCH_REDIS_URL", "redis://localhost:6379/0")

	// QdrantURL ist die gRPC-Adresse fuer den Qdrant-Treiber
	QdrantURL = StringWithDefault("VISMATCH_QDRANT_URL", "http://localhost:6334")

	// QdrantAPIKey ist der optionale API-Key fuer Qdrant
	QdrantAPIKey = String("VISMATCH_QDRANT_API_KEY")

	// QdrantCollection ist die Collection fuer Produkte
	QdrantCollection = StringWithDefault("VISMATCH_QDRANT_COLLECTION", "products")

	// SupabaseURL ist die Projekt-URL fuer den Supabase-Treiber
	SupabaseURL = String("SUPABASE_URL")

	// SupabaseKey ist der Service-Key fuer den Supabase-Treiber
	SupabaseKey = String("SUPABASE_KEY")

	// SupabaseTable ist die Tabelle fuer Produkte
	SupabaseTable = StringWithDefault("VISMATCH_SUPABASE_TABLE", "products")
)

// =============================================================================
// HTTP-Grenze: Uploads und Rate-Limits
// =============================================================================

var (
	// Environment wird von /health gemeldet
	Environment = StringWithDefault("VISMATCH_ENV", "development")

	// MaxUploadSize begrenzt hochgeladene Dateien (Bytes)
	MaxUploadSize = Uint64("VISMATCH_MAX_UPLOAD_SIZE", 5<<20)

	// RateLimitMax ist das allgemeine Limit pro IP und Fenster
	RateLimitMax = Uint("VISMATCH_RATE_LIMIT_MAX", 100)

	// RateLimitWindow ist die Fensterlaenge der Rate-Limits
	RateLimitWindow = Duration("VISMATCH_RATE_LIMIT_WINDOW", 15*time.Minute)

	// StrictRateLimitMax ist das Limit fuer Upload und Match pro IP und Fenster
	StrictRateLimitMax = Uint("VISMATCH_STRICT_RATE_LIMIT_MAX", 20)
)

// MODUL: provider
// ZWECK: Interface fuer Embedding-Provider und deren Konfiguration
// INPUT: Bild-Bytes
// OUTPUT: Embedding-Vektor ([]float32)
// NEBENEFFEKTE: Implementierungen rufen externe Dienste auf
// ABHAENGIGKEITEN: context
// HINWEISE: Implementierungen registrieren sich via init() in der DefaultRegistry

package vision

import (
	"context"
	"time"
)

// ============================================================================
// Provider Interface
// ============================================================================

// Provider wandelt Bild-Bytes in einen Embedding-Vektor.
// Implementierungen muessen fuer parallele Aufrufe sicher sein.
type Provider interface {
	// Embed berechnet das Embedding eines Bildes.
	// Fehler tragen die Kind Provider oder Configuration (types/errtypes).
	Embed(ctx context.Context, image []byte) ([]float32, error)

	// Info gibt Metadaten ueber den Provider zurueck
	Info() ProviderInfo
}

// ProviderInfo beschreibt einen Provider
type ProviderInfo struct {
	Name       string `json:"name"`
	Endpoint   string `json:"endpoint,omitempty"`
	Model      string `json:"model,omitempty"`
	Dimensions int    `json:"dimensions"`

	// LowFidelity markiert Provider ohne echte Embeddings
	LowFidelity bool `json:"low_fidelity,omitempty"`
}

// ProviderFactory erzeugt einen Provider aus der Konfiguration.
// Fehlende Credentials duerfen hier nicht scheitern, erst beim ersten Embed.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// ============================================================================
// ProviderConfig
// ============================================================================

// Namen der registrierten Provider
const (
	ProviderCLIP        = "clip"
	ProviderHuggingFace = "huggingface"
)

// ProviderConfig ist die prozessweite Provider-Konfiguration.
// Wird beim Start einmal gelesen und per Wert injiziert.
type ProviderConfig struct {
	// UseLocalCLIP waehlt den CLIP-Service statt des Klassifikations-Fallbacks
	UseLocalCLIP bool

	CLIPURL     string
	CLIPTimeout time.Duration
	CLIPJPEG    bool // PNG, WebP und GIF vor dem Senden nach JPEG konvertieren

	HFToken    string
	HFModel    string
	HFEndpoint string
	HFRequest  string // "binary" oder "json"
	HFTimeout  time.Duration
}

// ProviderName gibt den Namen des gewaehlten Providers zurueck
func (c ProviderConfig) ProviderName() string {
	if c.UseLocalCLIP {
		return ProviderCLIP
	}
	return ProviderHuggingFace
}

// Usable prueft ob der gewaehlte Provider voraussichtlich nutzbar ist.
// Dient nur der Warnung beim Start.
func (c ProviderConfig) Usable() bool {
	if c.UseLocalCLIP {
		return c.CLIPURL != ""
	}
	return c.HFToken != ""
}

// MODUL: materialize
// ZWECK: Wandelt Bild-Referenzen (URL, Data-URI, Pfad, Bytes) in Bytes um
// INPUT: ImageRef
// OUTPUT: Bild-Bytes
// NEBENEFFEKTE: HTTP-Requests, Dateisystem-Lesezugriff
// ABHAENGIGKEITEN: types/errtypes
// HINWEISE: Keine Retries, Fehler tragen die Kind Fetch, Format oder NotFound

package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/7blacky7/vismatch/types/errtypes"
)

const (
	// DefaultFetchTimeout begrenzt das Laden entfernter Bilder
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxFetchBytes begrenzt die Groesse entfernter Bilder
	DefaultMaxFetchBytes int64 = 20 << 20
)

var (
	ErrMissingComma  = errors.New("data uri has no comma separator")
	ErrEmptyPayload  = errors.New("data uri payload is empty")
	ErrEmptyRef      = errors.New("empty image reference")
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// ImageRef ist eine Bild-Referenz: entweder ein String (URL, Data-URI, Pfad)
// oder bereits geladene Bytes.
type ImageRef struct {
	Ref  string
	Data []byte
}

// RefString erzeugt eine Referenz aus URL, Data-URI oder Pfad
func RefString(s string) ImageRef { return ImageRef{Ref: s} }

// RefBytes erzeugt eine Referenz aus geladenen Bytes
func RefBytes(b []byte) ImageRef { return ImageRef{Data: b} }

// String gibt eine log-taugliche Darstellung zurueck (Data-URIs gekuerzt)
func (r ImageRef) String() string {
	switch {
	case r.Data != nil:
		return fmt.Sprintf("<%d bytes>", len(r.Data))
	case isDataURI(r.Ref):
		head, _, _ := strings.Cut(r.Ref, ",")
		return head + ",..."
	default:
		return r.Ref
	}
}

// Materializer laedt Bild-Referenzen. Sicher fuer parallele Nutzung.
type Materializer struct {
	client   *http.Client
	maxBytes int64
}

// MaterializerOption konfiguriert einen Materializer
type MaterializerOption func(*Materializer)

// WithFetchTimeout setzt das Timeout fuer HTTP(S)-Referenzen
func WithFetchTimeout(d time.Duration) MaterializerOption {
	return func(m *Materializer) {
		if d > 0 {
			m.client.Timeout = d
		}
	}
}

// WithMaxBytes begrenzt die Groesse geladener Bilder
func WithMaxBytes(n int64) MaterializerOption {
	return func(m *Materializer) {
		if n > 0 {
			m.maxBytes = n
		}
	}
}

// WithFetchClient ersetzt den HTTP-Client (Timeout des Clients bleibt erhalten)
func WithFetchClient(c *http.Client) MaterializerOption {
	return func(m *Materializer) {
		if c != nil {
			m.client = c
		}
	}
}

// NewMaterializer erstellt einen Materializer mit 10s Fetch-Timeout
func NewMaterializer(opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		client:   &http.Client{Timeout: DefaultFetchTimeout},
		maxBytes: DefaultMaxFetchBytes,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize gibt die Bytes zur Referenz zurueck.
//
//	Bytes          -> unveraendert
//	http(s)://...  -> GET mit Timeout, Fetch-Fehler bei Timeout/Status/Netzwerk
//	data:...       -> Base64 nach dem ersten Komma, Format-Fehler ohne Komma
//	sonst          -> lokaler Pfad, NotFound-Fehler wenn nicht vorhanden
func (m *Materializer) Materialize(ctx context.Context, ref ImageRef) ([]byte, error) {
	if ref.Data != nil {
		return ref.Data, nil
	}

	s := strings.TrimSpace(ref.Ref)
	switch {
	case s == "":
		return nil, errtypes.NotFound("materialize", ErrEmptyRef)
	case IsRemoteRef(s):
		return m.fetch(ctx, s)
	case isDataURI(s):
		return decodeDataURI(s)
	default:
		return readLocal(s)
	}
}

// IsRemoteRef prueft auf ein http- oder https-Schema
func IsRemoteRef(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

func (m *Materializer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errtypes.Fetch("fetch "+url, err)
	}
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errtypes.Fetch("fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errtypes.Errorf(errtypes.KindFetch, "fetch "+url, "unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, m.maxBytes+1))
	if err != nil {
		return nil, errtypes.Fetch("fetch "+url, err)
	}
	if int64(len(data)) > m.maxBytes {
		return nil, errtypes.Fetch("fetch "+url, ErrImageTooLarge)
	}

	slog.Debug("image fetched", "url", url, "bytes", len(data), "elapsed", time.Since(start))
	return data, nil
}

func decodeDataURI(s string) ([]byte, error) {
	_, payload, ok := strings.Cut(s, ",")
	if !ok {
		return nil, errtypes.Format("data uri", ErrMissingComma)
	}
	if payload == "" {
		return nil, errtypes.Format("data uri", ErrEmptyPayload)
	}

	data, err := base64.RawStdEncoding.DecodeString(normalizeBase64(payload))
	if err != nil {
		return nil, errtypes.Format("data uri", err)
	}
	if len(data) == 0 {
		return nil, errtypes.Format("data uri", ErrEmptyPayload)
	}
	return data, nil
}

// normalizeBase64 bildet URL-sicheres Base64 auf das Standard-Alphabet ab und
// entfernt Padding sowie Whitespace.
func normalizeBase64(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '-':
			return '+'
		case '_':
			return '/'
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(s, "=")
}

func readLocal(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errtypes.NotFound("read "+path, fmt.Errorf("image file not found: %w", err))
	} else if err != nil {
		return nil, errtypes.NotFound("read "+path, err)
	}
	if info.IsDir() {
		return nil, errtypes.Errorf(errtypes.KindNotFound, "read "+path, "image file not found: is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errtypes.NotFound("read "+path, err)
	}
	return data, nil
}

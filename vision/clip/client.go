// MODUL: clip/client
// ZWECK: HTTP-Client fuer den CLIP Embedding-Service (Provider "clip")
// INPUT: Bild-Bytes, Basis-URL des Service
// OUTPUT: Float32 Embeddings (nominal 512 Dimensionen)
// NEBENEFFEKTE: HTTP-Requests an <endpoint>/encode_image
// ABHAENGIGKEITEN: vision (Provider, optional NormalizeJPEG), types/errtypes
// HINWEISE: Abweichende Dimension wird nur geloggt, Connection refused wird gesondert gemeldet

package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"syscall"
	"time"

	"github.com/7blacky7/vismatch/types/errtypes"
	"github.com/7blacky7/vismatch/vision"
)

const (
	// ExpectedDimensions ist die dokumentierte Embedding-Groesse des Service
	ExpectedDimensions = 512

	// DefaultTimeout begrenzt einen encode_image-Aufruf
	DefaultTimeout = 30 * time.Second

	// DefaultURL ist die Standard-Adresse des Service
	DefaultURL = "http://localhost:3000"
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrEmptyResponse   = errors.New("clip: empty response from service")
	ErrUnexpectedShape = errors.New("clip: unexpected response format")
	ErrEmptyEmbedding  = errors.New("clip: empty embedding")
)

// ============================================================================
// Client
// ============================================================================

// Client spricht mit einem CLIP-Service und implementiert vision.Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	normalize  bool
}

// Option konfiguriert einen Client
type Option func(*Client)

// WithHTTPClient setzt einen eigenen HTTP-Client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout setzt das Timeout pro Aufruf
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithJPEGNormalization konvertiert PNG, WebP und GIF vor dem Senden nach JPEG.
// Unbekannte Formate gehen weiterhin unveraendert an den Service.
func WithJPEGNormalization() Option {
	return func(cl *Client) {
		cl.normalize = true
	}
}

// New erstellt einen Client fuer den Service unter baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Info implementiert vision.Provider
func (c *Client) Info() vision.ProviderInfo {
	return vision.ProviderInfo{
		Name:       vision.ProviderCLIP,
		Endpoint:   c.baseURL,
		Dimensions: ExpectedDimensions,
	}
}

// Embed sendet das Bild als multipart-Feld "file" an /encode_image.
func (c *Client) Embed(ctx context.Context, image []byte) ([]float32, error) {
	const op = "clip: encode_image"

	body, contentType, err := multipartBody(c.payload(image))
	if err != nil {
		return nil, errtypes.Provider(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/encode_image", body)
	if err != nil {
		return nil, errtypes.Provider(op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(op, c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errtypes.Provider(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errtypes.Provider(op, fmt.Errorf("clip service error: %s", upstreamMessage(resp, raw)))
	}

	embedding, err := ParseEmbedding(raw)
	if err != nil {
		return nil, errtypes.Provider(op, err)
	}

	if len(embedding) != ExpectedDimensions {
		slog.Warn("unexpected embedding dimensions", "expected", ExpectedDimensions, "got", len(embedding))
	}

	slog.Debug("clip embedding", "dimensions", len(embedding), "elapsed", time.Since(start))
	return embedding, nil
}

// Ping prueft den /health-Endpunkt des Service
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError("clip: health", c.baseURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errtypes.Errorf(errtypes.KindProvider, "clip: health", "unexpected status %s", resp.Status)
	}
	return nil
}

// ============================================================================
// Hilfsfunktionen
// ============================================================================

// payload liefert die zu sendenden Bytes. Ohne Normalisierung, bei unbekanntem
// Format oder bei nicht dekodierbaren Daten sind das die Eingabe-Bytes.
func (c *Client) payload(image []byte) []byte {
	if !c.normalize || vision.DetectFormat(image) == vision.FormatUnknown {
		return image
	}
	data, err := vision.NormalizeJPEG(image)
	if err != nil {
		slog.Debug("jpeg normalization failed, sending original bytes", "error", err)
		return image
	}
	return data
}

func multipartBody(data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", "image/jpeg")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// transportError unterscheidet "Service laeuft nicht" von anderen Netzwerkfehlern
func transportError(op, baseURL string, err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return errtypes.Provider(op, fmt.Errorf("%w: clip service at %s is not running: %v", errtypes.ErrServiceUnreachable, baseURL, err))
	}
	return errtypes.Provider(op, err)
}

// upstreamMessage liest "error" (Express) oder "detail" (FastAPI) aus dem Body
func upstreamMessage(resp *http.Response, raw []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
	}
	return resp.Status
}

// ParseEmbedding akzeptiert ein Zahlen-Array, {"embedding": [...]} oder [[...]].
// null-Elemente gelten als ungueltige Antwort.
func ParseEmbedding(raw []byte) ([]float32, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrEmptyResponse
	}

	var values []*float32
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &values); err != nil {
			var nested [][]*float32
			if json.Unmarshal(raw, &nested) != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
			}
			if len(nested) > 0 {
				values = nested[0]
			}
		}
	case '{':
		var obj struct {
			Embedding []*float32 `json:"embedding"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if obj.Embedding == nil {
			return nil, fmt.Errorf("%w: missing embedding field", ErrUnexpectedShape)
		}
		values = obj.Embedding
	default:
		return nil, ErrUnexpectedShape
	}

	if len(values) == 0 {
		return nil, ErrEmptyEmbedding
	}

	embedding := make([]float32, len(values))
	for i, v := range values {
		if v == nil {
			return nil, fmt.Errorf("%w: null at index %d", ErrUnexpectedShape, i)
		}
		embedding[i] = *v
	}
	return embedding, nil
}

var _ vision.Provider = (*Client)(nil)

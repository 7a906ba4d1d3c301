// client.go - HuggingFace Inference API Client
// Stellt einen HTTP-Client fuer Bild-Klassifikationsmodelle bereit.
package huggingface

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Konstanten fuer die Inference API
const (
	DefaultInferenceURL  = "https://api-inference.huggingface.co"
	DefaultModel         = "google/vit-base-patch16-384"
	DefaultClientTimeout = 60 * time.Second
	ClientUserAgent      = "vismatch/1.0"
)

// Fehler-Definitionen
var (
	ErrModelNotFound   = errors.New("modell nicht gefunden")
	ErrUnauthorized    = errors.New("authentifizierung fehlgeschlagen")
	ErrRateLimited     = errors.New("rate limit ueberschritten")
	ErrModelLoading    = errors.New("modell wird geladen")
	ErrNetworkError    = errors.New("netzwerkfehler")
	ErrInvalidModelID  = errors.New("ungueltige modell-id")
	ErrInvalidResponse = errors.New("ungueltige server-antwort")
)

// RequestMode bestimmt den Body eines Inference-Requests
type RequestMode string

const (
	// RequestBinary sendet die Bild-Bytes als application/octet-stream
	RequestBinary RequestMode = "binary"

	// RequestJSON sendet {"inputs": "<data-uri>"}
	RequestJSON RequestMode = "json"
)

// ParseRequestMode liest "binary" oder "json", alles andere ergibt binary
func ParseRequestMode(s string) RequestMode {
	if strings.EqualFold(strings.TrimSpace(s), string(RequestJSON)) {
		return RequestJSON
	}
	return RequestBinary
}

// Client ist der Inference API Client
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	mode       RequestMode
}

// ClientOption ist eine Funktion zur Konfiguration des Clients
type ClientOption func(*Client)

// WithToken setzt den HuggingFace API Token
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithBaseURL setzt eine Custom Base-URL (z.B. Inference Endpoint oder Testserver)
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithClientTimeout setzt den HTTP Timeout
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRequestMode waehlt Binary- oder JSON-Body
func WithRequestMode(mode RequestMode) ClientOption {
	return func(c *Client) { c.mode = mode }
}

// WithHTTPClient setzt einen Custom HTTP Client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient erstellt einen neuen Inference API Client
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
		baseURL:    DefaultInferenceURL,
		userAgent:  ClientUserAgent,
		mode:       RequestBinary,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL gibt die aktuelle Base-URL zurueck
func (c *Client) BaseURL() string { return c.baseURL }

// HasToken prueft ob ein Token konfiguriert ist
func (c *Client) HasToken() bool { return c.token != "" }

// Mode gibt den konfigurierten Request-Modus zurueck
func (c *Client) Mode() RequestMode { return c.mode }

// Infer sendet ein Bild an /models/<modelID> und dekodiert die Antwort.
func (c *Client) Infer(ctx context.Context, modelID string, image []byte) (*InferenceResult, error) {
	if err := validateModelID(modelID); err != nil {
		return nil, err
	}

	body, contentType, err := c.requestBody(image)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := c.handleResponseError(resp); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}

	result, err := ParseInference(raw)
	if err != nil {
		return nil, err
	}
	slog.Debug("huggingface inference", "model", modelID, "labels", len(result.Labels), "vector", len(result.Vector), "elapsed", time.Since(start))
	return result, nil
}

func (c *Client) requestBody(image []byte) (io.Reader, string, error) {
	if c.mode != RequestJSON {
		return bytes.NewReader(image), "application/octet-stream", nil
	}

	uri := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
	payload, err := json.Marshal(map[string]string{"inputs": uri})
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(payload), "application/json", nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) handleResponseError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := errorMessage(body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: check HUGGINGFACE_API_KEY: %s", ErrUnauthorized, msg)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrModelLoading, msg)
	default:
		return fmt.Errorf("%w: status %d - %s", ErrInvalidResponse, resp.StatusCode, msg)
	}
}

// errorMessage liest {"error": "..."} oder gibt den Body gekuerzt zurueck
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func validateModelID(modelID string) error {
	if modelID == "" {
		return fmt.Errorf("%w: modell-id darf nicht leer sein", ErrInvalidModelID)
	}
	parts := strings.Split(modelID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: erwartet format 'owner/model'", ErrInvalidModelID)
	}
	return nil
}

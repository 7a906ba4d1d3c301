// client_test.go - Unit Tests fuer den Inference API Client
package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// TestInferBinary prueft Pfad, Header und Octet-Stream Body
func TestInferBinary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/google/vit-base-patch16-384" {
			t.Errorf("unerwarteter Pfad: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/octet-stream" {
			t.Errorf("Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != string(jpegBytes) {
			t.Error("Body entspricht nicht den Bild-Bytes")
		}
		w.Write([]byte(`[{"label":"sneaker","score":0.8},{"label":"sandal","score":0.1}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"), WithToken("hf_test"))
	res, err := c.Infer(context.Background(), DefaultModel, jpegBytes)
	if err != nil {
		t.Fatal(err)
	}
	want := []Label{{"sneaker", 0.8}, {"sandal", 0.1}}
	if diff := cmp.Diff(want, res.Labels); diff != "" {
		t.Errorf("Labels (-want +got):\n%s", diff)
	}
}

// TestInferJSON prueft den {"inputs": data-uri} Body
func TestInferJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		var req struct {
			Inputs string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if !strings.HasPrefix(req.Inputs, "data:image/jpeg;base64,") {
			t.Errorf("inputs ist keine JPEG Data-URI: %q", req.Inputs)
		}
		w.Write([]byte(`[0.25, 0.5]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRequestMode(ParseRequestMode("JSON")))
	res, err := c.Infer(context.Background(), "org/model", jpegBytes)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{0.25, 0.5}, res.Vector); diff != "" {
		t.Errorf("Vector (-want +got):\n%s", diff)
	}
}

// TestInferStatusErrors prueft die Abbildung von HTTP-Status auf Fehler
func TestInferStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":"Invalid credentials"}`, ErrUnauthorized},
		{http.StatusForbidden, ``, ErrUnauthorized},
		{http.StatusNotFound, `{"error":"Model not found"}`, ErrModelNotFound},
		{http.StatusTooManyRequests, ``, ErrRateLimited},
		{http.StatusServiceUnavailable, `{"error":"Model is currently loading","estimated_time":20}`, ErrModelLoading},
		{http.StatusInternalServerError, `boom`, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).Infer(context.Background(), "org/model", jpegBytes)
			if !errors.Is(err, tt.want) {
				t.Errorf("erwartet %v, erhalten %v", tt.want, err)
			}
		})
	}
}

// TestInferNetworkError prueft geschlossene Verbindungen
func TestInferNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(WithBaseURL(url)).Infer(context.Background(), "org/model", jpegBytes)
	if !errors.Is(err, ErrNetworkError) {
		t.Errorf("erwartet ErrNetworkError, erhalten %v", err)
	}
}

// TestValidateModelID testet die Validierung von Model-IDs
func TestValidateModelID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"google/vit-base-patch16-384", false},
		{"", true},
		{"noslash", true},
		{"/model", true},
		{"owner/", true},
		{"a/b/c", true},
	}
	for _, tt := range tests {
		err := validateModelID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateModelID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidModelID) {
			t.Errorf("erwartet ErrInvalidModelID, erhalten %v", err)
		}
	}
}

// TestParseInference testet alle bekannten Antwortformen
func TestParseInference(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *InferenceResult
		wantErr bool
	}{
		{"labels", `[{"label":"a","score":0.5}]`, &InferenceResult{Labels: []Label{{"a", 0.5}}}, false},
		{"batch labels", `[[{"label":"b","score":0.25}]]`, &InferenceResult{Labels: []Label{{"b", 0.25}}}, false},
		{"vector", `[1, 2, 3]`, &InferenceResult{Vector: []float32{1, 2, 3}}, false},
		{"nested vector", `[[4, 5], [6, 7]]`, &InferenceResult{Vector: []float32{4, 5}}, false},
		{"image_embeds", `{"image_embeds":[0.5]}`, &InferenceResult{Vector: []float32{0.5}}, false},
		{"array image_embeds", `[{"image_embeds":[0.75]}]`, &InferenceResult{Vector: []float32{0.75}}, false},
		{"empty", ``, nil, true},
		{"empty array", `[]`, nil, true},
		{"object", `{"foo":"bar"}`, nil, true},
		{"object without label", `[{"foo":"bar"}]`, nil, true},
		{"strings", `["a"]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInference([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidResponse) {
					t.Errorf("erwartet ErrInvalidResponse, erhalten %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

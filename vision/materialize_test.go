package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/vismatch/types/errtypes"
)

func TestMaterializeBytes(t *testing.T) {
	data := []byte{1, 2, 3}
	got, err := NewMaterializer().Materialize(context.Background(), RefBytes(data))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("Bytes veraendert (-want +got):\n%s", diff)
	}
}

func TestMaterializeHTTP(t *testing.T) {
	img := createPNGBytes(4, 4, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(img)
		case "/slow.png":
			time.Sleep(200 * time.Millisecond)
			w.Write(img)
		case "/big.png":
			w.Write(make([]byte, 2048))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m := NewMaterializer(WithFetchTimeout(50*time.Millisecond), WithMaxBytes(1024))

	t.Run("ok", func(t *testing.T) {
		got, err := m.Materialize(context.Background(), RefString(srv.URL+"/ok.png"))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(img, got); diff != "" {
			t.Errorf("Body stimmt nicht (-want +got):\n%s", diff)
		}
	})

	failures := map[string]string{
		"status 404": "/missing.png",
		"timeout":    "/slow.png",
		"zu gross":   "/big.png",
	}
	for name, path := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := m.Materialize(context.Background(), RefString(srv.URL+path))
			if !errors.Is(err, errtypes.ErrFetch) {
				t.Errorf("erwartet Fetch-Fehler, erhalten %v", err)
			}
		})
	}

	t.Run("verbindung verweigert", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		url := closed.URL
		closed.Close()

		_, err := m.Materialize(context.Background(), RefString(url+"/x.png"))
		if !errors.Is(err, errtypes.ErrFetch) {
			t.Errorf("erwartet Fetch-Fehler, erhalten %v", err)
		}
	})
}

func TestMaterializeDataURI(t *testing.T) {
	payload := []byte("fake-image-bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)

	tests := []struct {
		name    string
		ref     string
		want    []byte
		wantErr error
	}{
		{"gueltig", "data:image/png;base64," + encoded, payload, nil},
		{"grossbuchstaben", "DATA:image/png;base64," + encoded, payload, nil},
		{"ohne komma", "data:image/png;base64" + encoded, nil, ErrMissingComma},
		{"leerer payload", "data:image/png;base64,", nil, ErrEmptyPayload},
		{"ohne padding", "data:image/png;base64,aGk", []byte("hi"), nil},
		{"url-sicher", "data:image/png;base64,-__-", []byte{0xFB, 0xFF, 0xFE}, nil},
		{"standard alphabet", "data:image/png;base64,+//+", []byte{0xFB, 0xFF, 0xFE}, nil},
		{"zeilenumbrueche", "data:image/png;base64," + encoded[:8] + "\n" + encoded[8:], payload, nil},
		{"nur padding", "data:image/png;base64,==", nil, ErrEmptyPayload},
		{"kaputtes base64", "data:image/png;base64,@@@", nil, errtypes.ErrFormat},
	}

	m := NewMaterializer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Materialize(context.Background(), RefString(tt.ref))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, errtypes.ErrFormat) {
					t.Fatalf("erwartet %v als Format-Fehler, erhalten %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Payload stimmt nicht (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMaterializeLocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shoe.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewMaterializer()

	got, err := m.Materialize(context.Background(), RefString(path))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "jpeg" {
		t.Errorf("erwartet Dateiinhalt, erhalten %q", got)
	}

	for name, p := range map[string]string{
		"fehlt":       filepath.Join(dir, "missing.jpg"),
		"verzeichnis": dir,
		"leer":        "  ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Materialize(context.Background(), RefString(p))
			if !errors.Is(err, errtypes.ErrNotFound) {
				t.Errorf("erwartet NotFound-Fehler, erhalten %v", err)
			}
		})
	}
}

func TestImageRefString(t *testing.T) {
	tests := map[string]struct {
		ref  ImageRef
		want string
	}{
		"bytes":    {RefBytes(make([]byte, 12)), "<12 bytes>"},
		"data uri": {RefString("data:image/png;base64,AAAA"), "data:image/png;base64,..."},
		"url":      {RefString("https://example.com/a.jpg"), "https://example.com/a.jpg"},
	}
	for name, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("%s: erwartet %q, erhalten %q", name, tt.want, got)
		}
	}
}

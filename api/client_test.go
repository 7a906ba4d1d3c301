package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(base, srv.Client())
}

func TestClientFromEnvironment(t *testing.T) {
	t.Setenv("VISMATCH_HOST", "http://10.0.0.5:8080")

	c, err := ClientFromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if got := c.base.String(); got != "http://10.0.0.5:8080" {
		t.Errorf("base = %q, erwartet http://10.0.0.5:8080", got)
	}
}

func TestMatchSendsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/match" {
			t.Errorf("unerwarteter Request: %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "vismatch/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		var req MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.ImageURL != "https://img.example/a.png" {
			t.Errorf("image_url = %q", req.ImageURL)
		}
		json.NewEncoder(w).Encode(MatchResponse{
			Success: true,
			Count:   1,
			Data:    []MatchItem{{ID: "1", ProductID: "1", Name: "A", Similarity: 0.9, SimilarityPercentage: "90.00"}},
		})
	})

	resp, err := c.Match(context.Background(), "https://img.example/a.png")
	if err != nil {
		t.Fatal(err)
	}
	want := []MatchItem{{ID: "1", ProductID: "1", Name: "A", Similarity: 0.9, SimilarityPercentage: "90.00"}}
	if diff := cmp.Diff(want, resp.Data); diff != "" {
		t.Errorf("Data (-want +got):\n%s", diff)
	}
}

func TestUploadFileMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if got := r.FormValue("name"); got != "Sneaker" {
			t.Errorf("name = %q", got)
		}
		if _, ok := r.MultipartForm.Value["category"]; ok {
			t.Error("leere Felder duerfen nicht gesendet werden")
		}
		f, fh, err := r.FormFile("image")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if fh.Filename != "shoe.png" || string(data) != "PNGDATA" {
			t.Errorf("Datei = %q %q", fh.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(UploadResponse{Success: true, Data: UploadedProduct{ID: "p1", Name: "Sneaker"}})
	})

	resp, err := c.UploadFile(context.Background(), "Sneaker", "", "/tmp/img/shoe.png", strings.NewReader("PNGDATA"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Data.ID != "p1" {
		t.Errorf("ID = %q, erwartet p1", resp.Data.ID)
	}
}

func TestListCategoryQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Errorf("Pfad = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("category"); got != "Shoes & Bags" {
			t.Errorf("category = %q", got)
		}
		json.NewEncoder(w).Encode(ListResponse{Success: true, Count: 0, Data: []Product{}})
	})

	if _, err := c.List(context.Background(), "Shoes & Bags"); err != nil {
		t.Fatal(err)
	}
}

func TestStatusErrorFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Product not found"}`))
	})

	_, err := c.Show(context.Background(), "missing")
	var se StatusError
	if !errors.As(err, &se) {
		t.Fatalf("erwartet StatusError, erhalten %T %v", err, err)
	}
	if se.StatusCode != http.StatusNotFound || se.ErrorMessage != "Product not found" {
		t.Errorf("unerwarteter Fehler: %+v", se)
	}
}

func TestStatusErrorPlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.Delete(context.Background(), "x")
	var se StatusError
	if !errors.As(err, &se) {
		t.Fatalf("erwartet StatusError, erhalten %v", err)
	}
	if !strings.Contains(se.ErrorMessage, "bad gateway") {
		t.Errorf("ErrorMessage = %q", se.ErrorMessage)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	tests := []struct {
		err  StatusError
		want string
	}{
		{StatusError{Status: "404 Not Found", ErrorMessage: "Product not found"}, "404 Not Found: Product not found"},
		{StatusError{Status: "500 Internal Server Error"}, "500 Internal Server Error"},
		{StatusError{ErrorMessage: "boom"}, "boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, erwartet %q", got, tt.want)
		}
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/vismatch/api"
	"github.com/7blacky7/vismatch/catalog"
	"github.com/7blacky7/vismatch/match"
	"github.com/7blacky7/vismatch/types/errtypes"
	"github.com/7blacky7/vismatch/vision"
)

// fakeProvider bildet das letzte Byte des Bildes auf einen Vektor ab
type fakeProvider struct {
	err error
}

func (f *fakeProvider) Embed(ctx context.Context, image []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	switch image[len(image)-1] {
	case 'a':
		return []float32{1, 0, 0, 0}, nil
	case 'b':
		return []float32{0, 1, 0, 0}, nil
	case 'c':
		return []float32{0.9, 0.1, 0, 0}, nil
	default:
		return []float32{0, 0, 1, 0}, nil
	}
}

func (f *fakeProvider) Info() vision.ProviderInfo {
	return vision.ProviderInfo{Name: "fake", Dimensions: 4}
}

func pngBytes(tag byte) []byte {
	return []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, tag}
}

func dataURI(b []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	store   *catalog.MemoryStore
	cfg     Config
}

func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()
	return newTestEnvWithProvider(t, &fakeProvider{}, mutate...)
}

func newTestEnvWithProvider(t *testing.T, p vision.Provider, mutate ...func(*Config)) *testEnv {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Environment = "test"
	cfg.UploadDir = t.TempDir()
	cfg.RateLimitMax = 0
	cfg.StrictRateLimitMax = 0
	for _, fn := range mutate {
		fn(&cfg)
	}

	store := catalog.NewMemoryStore()
	s := New(cfg, match.New(store, p))
	return &testEnv{srv: s, handler: s.GenerateRoutes(), store: store, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.RemoteAddr = "192.0.2.10:4321"
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

func (e *testEnv) doMultipart(t *testing.T, path string, image []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "query.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req)
}

func (e *testEnv) seed(t *testing.T, name string, emb ...float32) *catalog.Product {
	t.Helper()
	p := &catalog.Product{Name: name, ImageRef: "https://img.example/" + name + ".png", Embedding: emb}
	require.NoError(t, e.store.Save(context.Background(), p))
	return p
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	resp := decode[api.ErrorResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, msg, resp.Error)
}

// ============================================================================
// Allgemeine Routen
// ============================================================================

func TestGeneralRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vismatch is running", w.Body.String())

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	health := decode[api.HealthResponse](t, w)
	assert.True(t, health.Success)
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, "test", health.Environment)
	assert.Equal(t, "fake", health.Provider)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "API is working")

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version"`)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assertError(t, w, http.StatusNotFound, "Route not found")
}

// ============================================================================
// Match / Embed
// ============================================================================

func TestMatchRanksCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "A", 1, 0, 0, 0)
	env.seed(t, "B", 0, 1, 0, 0)
	env.seed(t, "C", 0.9, 0.1, 0, 0)

	w := env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: dataURI(pngBytes('a'))})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.MatchResponse](t, w)
	require.True(t, resp.Success)
	require.Equal(t, 3, resp.Count)

	var names []string
	for _, item := range resp.Data {
		names = append(names, item.Name)
		assert.Equal(t, item.ID, item.ProductID)
		assert.Equal(t, item.Similarity, item.SimilarityScore)
	}
	assert.Equal(t, []string{"A", "C", "B"}, names)
	assert.Equal(t, "100.00", resp.Data[0].SimilarityPercentage)
	assert.Equal(t, "0.00", resp.Data[2].SimilarityPercentage)
}

func TestMatchMultipartKeepsQueryImage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "A", 1, 0, 0, 0)

	w := env.doMultipart(t, "/api/match", pngBytes('a'), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.MatchResponse](t, w)
	require.True(t, strings.HasPrefix(resp.QueryImage, "/uploads/"), resp.QueryImage)
	assert.FileExists(t, filepath.Join(env.cfg.UploadDir, filepath.Base(resp.QueryImage)))
	assert.Equal(t, 1, resp.Count)
}

func TestMatchProviderFailureRemovesQueryImage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"upstream", errtypes.Provider("embed", errors.New("boom")), http.StatusBadGateway},
		{"konfiguration", errtypes.Configuration("embed", errors.New("no token")), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWithProvider(t, &fakeProvider{err: tt.err})

			w := env.doMultipart(t, "/api/match", pngBytes('a'), nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			entries, err := os.ReadDir(env.cfg.UploadDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "fehlgeschlagener Match darf keine Datei hinterlassen")
		})
	}
}

func TestMatchProviderFailureKeepsReferencedUpload(t *testing.T) {
	env := newTestEnvWithProvider(t, &fakeProvider{err: errtypes.Provider("embed", errors.New("boom"))})
	file := filepath.Join(env.cfg.UploadDir, "product.png")
	require.NoError(t, os.WriteFile(file, pngBytes('a'), 0o644))

	w := env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: "/uploads/product.png"})
	assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())
	assert.FileExists(t, file)
}

func TestMatchEmptyCatalog(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: dataURI(pngBytes('a'))})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.MatchResponse](t, w)
	assert.Equal(t, "No products available for matching", resp.Message)
	assert.Equal(t, 0, resp.Count)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestMatchRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		status int
		msg    string
	}{
		{"leer", "", http.StatusBadRequest, "Image URL is required"},
		{"schema", "ftp://example.com/a.png", http.StatusBadRequest, "Please provide a valid image URL"},
		{"lokaler pfad", "/etc/passwd", http.StatusBadRequest, "Please provide a valid image URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: tt.ref})
			assertError(t, w, tt.status, tt.msg)
		})
	}
}

func TestMatchUploadPath(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "B", 0, 1, 0, 0)
	require.NoError(t, os.WriteFile(filepath.Join(env.cfg.UploadDir, "query.png"), pngBytes('b'), 0o644))

	w := env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: "/uploads/query.png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[api.MatchResponse](t, w)
	require.Len(t, resp.Data, 1)
	assert.InDelta(t, 1.0, resp.Data[0].Similarity, 1e-9)

	w = env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: "/uploads/missing.png"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchRemoteImage(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(pngBytes('a'))
	}))
	defer img.Close()

	env := newTestEnv(t)
	env.seed(t, "A", 1, 0, 0, 0)

	w := env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: img.URL + "/a.png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: img.URL + "/missing.png"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestEmbed(t *testing.T) {
	env := newTestEnv(t)

	w := env.doMultipart(t, "/api/embed", pngBytes('b'), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.EmbedResponse](t, w)
	assert.Equal(t, "fake", resp.Provider)
	assert.Equal(t, 4, resp.Dimensions)
	assert.Equal(t, []float32{0, 1, 0, 0}, resp.Embedding)

	entries, err := os.ReadDir(env.cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "embed darf keine Uploads speichern")
}

func TestProviderErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"konfiguration", errtypes.Configuration("embed", errors.New("no token")), http.StatusServiceUnavailable},
		{"unerreichbar", errtypes.Provider("embed", fmt.Errorf("clip: %w", errtypes.ErrServiceUnreachable)), http.StatusServiceUnavailable},
		{"upstream", errtypes.Provider("embed", errors.New("status 500")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWithProvider(t, &fakeProvider{err: tt.err})
			w := env.doJSON(t, http.MethodPost, "/api/embed", api.MatchRequest{ImageURL: dataURI(pngBytes('a'))})
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errtypes.Format("x", errors.New("bad")), http.StatusBadRequest},
		{errtypes.Validation("x", errors.New("bad")), http.StatusBadRequest},
		{catalog.NotFound("x", "id"), http.StatusNotFound},
		{errtypes.Configuration("x", errors.New("bad")), http.StatusServiceUnavailable},
		{errtypes.Provider("x", errtypes.ErrServiceUnreachable), http.StatusServiceUnavailable},
		{errtypes.Provider("x", errors.New("bad")), http.StatusBadGateway},
		{errtypes.Fetch("x", errors.New("bad")), http.StatusBadGateway},
		{errtypes.DimensionMismatch("x", 3, 4), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, erwartet %d", tt.err, got, tt.want)
		}
	}
}

// ============================================================================
// Upload / Produkte
// ============================================================================

func TestUploadFile(t *testing.T) {
	env := newTestEnv(t)

	w := env.doMultipart(t, "/api/upload", pngBytes('a'), map[string]string{"category": "Shoes"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[api.UploadResponse](t, w)
	assert.Equal(t, "Product uploaded successfully", resp.Message)
	assert.Equal(t, "Uploaded Product", resp.Data.Name)
	assert.Equal(t, "Shoes", resp.Data.Category)
	assert.Equal(t, 4, resp.Data.EmbeddingLength)
	require.True(t, strings.HasPrefix(resp.Data.ImageURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(resp.Data.ImageURL, ".png"))
	assert.FileExists(t, filepath.Join(env.cfg.UploadDir, filepath.Base(resp.Data.ImageURL)))

	p, err := env.store.Get(context.Background(), resp.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0}, p.Embedding)

	// Platzhalter-Namen werden beim Matching ignoriert
	w = env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: resp.Data.ImageURL})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, decode[api.MatchResponse](t, w).Count)
}

func TestUploadURL(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes('c'))
	}))
	defer img.Close()

	env := newTestEnv(t)
	w := env.doJSON(t, http.MethodPost, "/api/upload", api.UploadRequest{
		ImageURL: img.URL + "/shoe.png",
		Name:     "  <b>Runner</b> ",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[api.UploadResponse](t, w)
	assert.Equal(t, "bRunner/b", resp.Data.Name)
	assert.Equal(t, catalog.DefaultCategory, resp.Data.Category)
	assert.Equal(t, img.URL+"/shoe.png", resp.Data.ImageURL)
}

func TestUploadRejects(t *testing.T) {
	t.Run("ohne bild", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.doJSON(t, http.MethodPost, "/api/upload", api.UploadRequest{Name: "x"})
		assertError(t, w, http.StatusBadRequest, "Please provide an image file or image URL")
	})

	t.Run("ungueltige url", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.doJSON(t, http.MethodPost, "/api/upload", api.UploadRequest{ImageURL: "javascript:alert(1)"})
		assertError(t, w, http.StatusBadRequest, "Please provide a valid image URL")
	})

	t.Run("dateityp", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.doMultipart(t, "/api/upload", []byte("just some text"), nil)
		assertError(t, w, http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, WebP, and GIF are allowed")
	})

	t.Run("zu gross", func(t *testing.T) {
		env := newTestEnv(t, func(c *Config) { c.MaxUploadSize = 1 << 20 })
		big := append(pngBytes('a'), make([]byte, 1<<20)...)
		w := env.doMultipart(t, "/api/upload", big, nil)
		assertError(t, w, http.StatusBadRequest, "File size exceeds 1MB limit")

		entries, err := os.ReadDir(env.cfg.UploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestUploadProviderFailureRemovesFile(t *testing.T) {
	env := newTestEnvWithProvider(t, &fakeProvider{err: errtypes.Provider("embed", errors.New("boom"))})

	w := env.doMultipart(t, "/api/upload", pngBytes('a'), map[string]string{"name": "Shoe"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	entries, err := os.ReadDir(env.cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProductRoutes(t *testing.T) {
	env := newTestEnv(t)
	bag := env.seed(t, "Bag", 1, 0, 0, 0)
	time.Sleep(time.Millisecond)
	env.seed(t, "Runner", 0, 1, 0, 0)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[api.ListResponse](t, w)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "Runner", list.Data[0].Name)
	assert.Equal(t, 4, list.Data[0].Dimensions)
	assert.NotContains(t, w.Body.String(), "embedding")

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/products?category=Nope", nil))
	assert.Equal(t, 0, decode[api.ListResponse](t, w).Count)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/products/"+bag.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bag", decode[api.ProductResponse](t, w).Data.Name)

	w = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/products/"+bag.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product deleted successfully", decode[api.MessageResponse](t, w).Message)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/products/"+bag.ID, nil))
	assertError(t, w, http.StatusNotFound, "Product not found")

	w = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/products/"+bag.ID, nil))
	assertError(t, w, http.StatusNotFound, "Product not found")
}

func TestDeleteRemovesUpload(t *testing.T) {
	env := newTestEnv(t)

	w := env.doMultipart(t, "/api/upload", pngBytes('a'), map[string]string{"name": "Shoe"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	up := decode[api.UploadResponse](t, w)
	file := filepath.Join(env.cfg.UploadDir, filepath.Base(up.Data.ImageURL))
	require.FileExists(t, file)

	w = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/products/"+up.Data.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NoFileExists(t, file)
}

// ============================================================================
// Middleware
// ============================================================================

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.RateLimitMax = 2 })

	for i := range 2 {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/test", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, "2", w.Header().Get("RateLimit-Limit"))
	}

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	assertError(t, w, http.StatusTooManyRequests, msgRateLimited)
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))

	// /health liegt ausserhalb von /api
	w = env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStrictRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.StrictRateLimitMax = 1 })

	w := env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: dataURI(pngBytes('a'))})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/match", api.MatchRequest{ImageURL: dataURI(pngBytes('a'))})
	assertError(t, w, http.StatusTooManyRequests, msgUploadLimited)

	w = env.doJSON(t, http.MethodPost, "/api/embed", api.MatchRequest{ImageURL: dataURI(pngBytes('a'))})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPLimiterRefill(t *testing.T) {
	l := newIPLimiter(2, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	ok, _ := l.allow("a")
	require.True(t, ok)
	ok, _ = l.allow("a")
	require.True(t, ok)
	ok, _ = l.allow("a")
	require.False(t, ok)

	ok, _ = l.allow("b")
	assert.True(t, ok, "andere IPs haben ein eigenes Budget")

	now = now.Add(30 * time.Second)
	ok, _ = l.allow("a")
	assert.True(t, ok, "nach window/max ist ein Token nachgefuellt")

	now = now.Add(5 * time.Minute)
	l.allow("c")
	l.mu.Lock()
	_, stale := l.visitors["b"]
	l.mu.Unlock()
	assert.False(t, stale, "alte Eintraege werden entfernt")

	assert.Nil(t, newIPLimiter(0, time.Minute))
}

func TestAllowedHosts(t *testing.T) {
	env := newTestEnv(t)
	env.srv.addr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}
	handler := env.srv.GenerateRoutes()

	tests := []struct {
		host   string
		status int
	}{
		{"localhost:5000", http.StatusOK},
		{"127.0.0.1:5000", http.StatusOK},
		{"192.168.1.20", http.StatusOK},
		{"shop.localhost", http.StatusOK},
		{"evil.example.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, name, category string
	}{
		{"  Sneaker  ", "Sneaker", "Sneaker"},
		{"", "Unnamed Product", "Uncategorized"},
		{"<script>", "script", "script"},
		{"JavaScript:alert(1)", "alert(1)", "alert(1)"},
		{`x onClick=y`, "x y", "x y"},
		{strings.Repeat("ä", 120), strings.Repeat("ä", 100), strings.Repeat("ä", 50)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.name, sanitizeProductName(tt.in), "name %q", tt.in)
		assert.Equal(t, tt.category, sanitizeCategory(tt.in), "category %q", tt.in)
	}
}

func TestResolveRef(t *testing.T) {
	s := New(Config{UploadDir: "/srv/uploads"}, nil)

	ref, err := s.resolveRef("/uploads/../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/uploads", "passwd"), ref.Ref)

	ref, err = s.resolveRef("https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", ref.Ref)

	_, err = s.resolveRef("/uploads/")
	var ae *apiError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
}

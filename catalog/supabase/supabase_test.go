package supabase

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/vismatch/catalog"
	"github.com/7blacky7/vismatch/catalog/catalogtest"
)

// fakePostgREST bildet den Teil der REST API nach, den der Store nutzt
type fakePostgREST struct {
	mu   sync.Mutex
	rows map[string]row
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/rest/v1/products") {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("apikey") == "" {
		http.Error(w, `{"message":"no api key"}`, http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	q := r.URL.Query()
	matches := func(x row) bool {
		if v := q.Get("id"); strings.HasPrefix(v, "eq.") && x.ID != strings.TrimPrefix(v, "eq.") {
			return false
		}
		if v := q.Get("category"); strings.HasPrefix(v, "eq.") && x.Category != strings.TrimPrefix(v, "eq.") {
			return false
		}
		return true
	}

	out := []row{}
	switch r.Method {
	case http.MethodGet:
		for _, x := range f.rows {
			if matches(x) {
				out = append(out, x)
			}
		}
	case http.MethodPost:
		var x row
		if err := json.NewDecoder(r.Body).Decode(&x); err != nil {
			http.Error(w, `{"message":"bad json"}`, http.StatusBadRequest)
			return
		}
		f.rows[x.ID] = x
		out = append(out, x)
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		for id, x := range f.rows {
			if matches(x) {
				out = append(out, x)
				delete(f.rows, id)
			}
		}
	}
	json.NewEncoder(w).Encode(out)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	srv := httptest.NewServer(&fakePostgREST{rows: map[string]row{}})
	t.Cleanup(srv.Close)

	s, err := New(Config{URL: srv.URL, APIKey: "anon-key"})
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	catalogtest.Run(t, func(t *testing.T) catalog.Store {
		return newTestStore(t)
	})
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{APIKey: "k"})
	assert.ErrorIs(t, err, catalog.ErrInvalidConfig)

	_, err = New(Config{URL: "https://x.supabase.co"})
	assert.ErrorIs(t, err, catalog.ErrInvalidConfig)
}

func TestRowMapping(t *testing.T) {
	p := catalogtest.Product("pump", 0.5)
	p.ID = "id-1"

	r := fromProduct(p)
	assert.Equal(t, "pump", r.Name)
	assert.Equal(t, p.ImageRef, r.ImageURL)
	assert.Equal(t, p, r.product())
}

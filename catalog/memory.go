package catalog

import (
	"context"
	"sync"
	"time"
)

// MemoryStore haelt Produkte im Speicher. Fuer Tests und kurzlebige Server.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*Product
	now      func() time.Time
}

// NewMemoryStore erstellt einen leeren MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*Product),
		now:      time.Now,
	}
}

// List implementiert Store
func (s *MemoryStore) List(ctx context.Context, f Filter) ([]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p.Clone())
	}
	return f.Apply(all), nil
}

// Get implementiert Store
func (s *MemoryStore) Get(ctx context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, NotFound("catalog: get", id)
	}
	return p.Clone(), nil
}

// Save implementiert Store
func (s *MemoryStore) Save(ctx context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := Prepare(p, s.now()); err != nil {
		return err
	}
	s.products[p.ID] = p.Clone()
	return nil
}

// Delete implementiert Store
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return NotFound("catalog: delete", id)
	}
	delete(s.products, id)
	return nil
}

// Clear implementiert Store
func (s *MemoryStore) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.products)
	s.products = make(map[string]*Product)
	return n, nil
}

// Close implementiert Store
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)

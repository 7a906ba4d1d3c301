// Package supabase speichert den Produkt-Katalog in einer Postgres-Tabelle
// ueber die Supabase REST API (PostgREST).
//
// Erwartetes Schema:
//
//	create table products (
//	  id uuid primary key,
//	  name text not null,
//	  category text not null default 'Uncategorized',
//	  image_url text not null,
//	  embedding jsonb,
//	  metadata jsonb,
//	  created_at timestamptz not null default now(),
//	  updated_at timestamptz not null default now()
//	);
package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/7blacky7/vismatch/catalog"
)

const defaultTable = "products"

func init() {
	catalog.Register(catalog.DriverSupabase, func(ctx context.Context, cfg catalog.Config) (catalog.Store, error) {
		return New(Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseKey, Table: cfg.SupabaseTable})
	})
}

// Config enthaelt die Verbindungsdaten
type Config struct {
	URL    string
	APIKey string
	Table  string
}

// Store ist ein catalog.Store auf Supabase
type Store struct {
	client *supabase.Client
	table  string
}

// row ist die Tabellenzeile
type row struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	ImageURL  string         `json:"image_url"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// New erstellt den Client. Es wird keine Verbindung geprueft.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: supabase URL is required", catalog.ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supabase API key is required", catalog.ErrInvalidConfig)
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	return &Store{client: client, table: table}, nil
}

// List implementiert catalog.Store
func (s *Store) List(ctx context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	q := s.client.From(s.table).Select("*", "", false)
	if f.Category != "" {
		q = q.Eq("category", f.Category)
	}

	var rows []row
	_, err := q.Order("created_at", &postgrest.OrderOpts{Ascending: false}).ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].product()
	}
	return f.Apply(products), nil
}

// Get implementiert catalog.Store
func (s *Store) Get(ctx context.Context, id string) (*catalog.Product, error) {
	var rows []row
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if len(rows) == 0 {
		return nil, catalog.NotFound("catalog: get", id)
	}
	return rows[0].product(), nil
}

// Save implementiert catalog.Store (Upsert auf id)
func (s *Store) Save(ctx context.Context, p *catalog.Product) error {
	if err := catalog.Prepare(p, time.Now().UTC()); err != nil {
		return err
	}

	var saved []row
	_, err := s.client.From(s.table).
		Insert(fromProduct(p), true, "id", "representation", "").
		ExecuteTo(&saved)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	if len(saved) > 0 {
		// Erstellzeit der bestehenden Zeile uebernehmen
		p.CreatedAt = saved[0].CreatedAt
	}
	return nil
}

// Delete implementiert catalog.Store
func (s *Store) Delete(ctx context.Context, id string) error {
	var deleted []row
	_, err := s.client.From(s.table).
		Delete("representation", "").
		Eq("id", id).
		ExecuteTo(&deleted)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if len(deleted) == 0 {
		return catalog.NotFound("catalog: delete", id)
	}
	return nil
}

// Clear implementiert catalog.Store. PostgREST verlangt einen Filter
// fuer DELETE, daher "id is not null".
func (s *Store) Clear(ctx context.Context) (int, error) {
	var deleted []row
	_, err := s.client.From(s.table).
		Delete("representation", "").
		Not("id", "is", "null").
		ExecuteTo(&deleted)
	if err != nil {
		return 0, fmt.Errorf("failed to clear products: %w", err)
	}
	return len(deleted), nil
}

// Close implementiert catalog.Store
func (s *Store) Close() error {
	return nil
}

func fromProduct(p *catalog.Product) row {
	return row{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		ImageURL:  p.ImageRef,
		Embedding: p.Embedding,
		Metadata:  p.Metadata,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *row) product() *catalog.Product {
	return &catalog.Product{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		ImageRef:  r.ImageURL,
		Embedding: r.Embedding,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

var _ catalog.Store = (*Store)(nil)

// sqlite.go - SQLite-Treiber fuer den Produkt-Katalog
// Embeddings werden als Little-Endian float32 BLOB gespeichert,
// Metadata als JSON-Text.

package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren

	"github.com/7blacky7/vismatch/catalog"
)

func init() {
	catalog.Register(catalog.DriverSQLite, func(ctx context.Context, cfg catalog.Config) (catalog.Store, error) {
		return Open(ctx, cfg.SQLitePath)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'Uncategorized',
	image_url TEXT NOT NULL,
	embedding BLOB,
	dimensions INTEGER NOT NULL DEFAULT 0,
	metadata TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);
`

// Store ist ein catalog.Store auf SQLite.
// SQLite serialisiert Schreiber selbst, WAL erlaubt parallele Leser.
type Store struct {
	db   *sql.DB
	path string
}

// Open oeffnet (oder erstellt) die Datenbank unter path
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", catalog.ErrInvalidConfig)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path gibt den Datenbankpfad zurueck
func (s *Store) Path() string { return s.path }

// List implementiert catalog.Store
func (s *Store) List(ctx context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	query := `SELECT id, name, category, image_url, embedding, metadata, created_at, updated_at FROM products`

	var (
		where []string
		args  []any
	)
	if f.EmbeddableOnly {
		where = append(where, "dimensions > 0")
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		// Platzhalter-Namen inkl. case-insensitivem "iphone" in Go pruefen
		if f.ExcludePlaceholders && catalog.IsPlaceholderName(p.Name) {
			continue
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get implementiert catalog.Store
func (s *Store) Get(ctx context.Context, id string) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, image_url, embedding, metadata, created_at, updated_at FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.NotFound("catalog: get", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Save implementiert catalog.Store
func (s *Store) Save(ctx context.Context, p *catalog.Product) error {
	if err := catalog.Prepare(p, time.Now()); err != nil {
		return err
	}

	var meta sql.NullString
	if len(p.Metadata) > 0 {
		b, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, image_url, embedding, dimensions, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			image_url = excluded.image_url,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Category, p.ImageRef, EncodeVector(p.Embedding), len(p.Embedding), meta,
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

// Delete implementiert catalog.Store
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return catalog.NotFound("catalog: delete", id)
	}
	return nil
}

// Clear implementiert catalog.Store
func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}
	return int(n), nil
}

// Close schliesst die Datenbankverbindung
func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*catalog.Product, error) {
	var (
		p                catalog.Product
		blob             []byte
		meta             sql.NullString
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.ImageRef, &blob, &meta, &created, &updated); err != nil {
		return nil, err
	}

	p.Embedding = DecodeVector(blob)
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()

	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

// EncodeVector kodiert einen Vektor als Little-Endian float32
func EncodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// DecodeVector ist die Umkehrung von EncodeVector
func DecodeVector(b []byte) []float32 {
	if len(b) < 4 {
		return nil
	}
	v := make([]float32, len(b)/4)
	binary.Read(bytes.NewReader(b[:len(v)*4]), binary.LittleEndian, &v)
	return v
}

var _ catalog.Store = (*Store)(nil)

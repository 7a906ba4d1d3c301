package catalog

import (
	"context"
	"slices"
)

// Store ist die Schnittstelle aller Katalog-Treiber.
// Implementierungen muessen fuer parallele Nutzung sicher sein.
type Store interface {
	// List liefert alle Produkte, die dem Filter entsprechen, neueste zuerst.
	List(ctx context.Context, f Filter) ([]*Product, error)

	// Get liefert ein Produkt oder einen Fehler mit ErrProductNotFound.
	Get(ctx context.Context, id string) (*Product, error)

	// Save legt ein Produkt an oder ersetzt es vollstaendig (gleiche ID).
	Save(ctx context.Context, p *Product) error

	// Delete entfernt ein Produkt. Unbekannte IDs liefern ErrProductNotFound.
	Delete(ctx context.Context, id string) error

	// Clear entfernt alle Produkte und liefert deren Anzahl.
	Clear(ctx context.Context) (int, error)

	// Close gibt Verbindungen frei.
	Close() error
}

// Filter schraenkt List ein. Der Nullwert liefert alle Produkte.
type Filter struct {
	// EmbeddableOnly laesst Produkte ohne Embedding weg
	EmbeddableOnly bool

	// ExcludePlaceholders laesst Produkte mit Platzhalter-Namen weg
	ExcludePlaceholders bool

	// Category filtert auf eine exakte Kategorie, leer = alle
	Category string
}

// EmbeddableFilter ist der Filter fuer Match-Kandidaten
func EmbeddableFilter() Filter {
	return Filter{EmbeddableOnly: true, ExcludePlaceholders: true}
}

// Match prueft ein einzelnes Produkt gegen den Filter
func (f Filter) Match(p *Product) bool {
	if p == nil {
		return false
	}
	if f.EmbeddableOnly && !p.Embeddable() {
		return false
	}
	if f.ExcludePlaceholders && IsPlaceholderName(p.Name) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	return true
}

// Apply filtert eine Liste und sortiert sie neueste zuerst (stabil)
func (f Filter) Apply(products []*Product) []*Product {
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	SortNewest(out)
	return out
}

// SortNewest sortiert nach CreatedAt absteigend, Gleichstand nach ID
func SortNewest(products []*Product) {
	slices.SortStableFunc(products, func(a, b *Product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

// Package catalog speichert Produkte mit ihren Bild-Embeddings.
//
// Der Store ist nur ein Lieferant von Kandidaten: die Aehnlichkeitssuche
// laeuft vollstaendig im match-Package, Treiber bieten keine Vektorsuche an.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/7blacky7/vismatch/types/errtypes"
)

// DefaultCategory wird gesetzt wenn keine Kategorie angegeben ist
const DefaultCategory = "Uncategorized"

// PlaceholderNames sind Namen, die beim Upload ohne echten Namen entstehen.
// Produkte mit diesen Namen werden nicht als Match-Kandidaten verwendet.
var PlaceholderNames = []string{"Uploaded Product", "Product from URL", "Unnamed Product"}

// placeholderFold wird unabhaengig von Gross-/Kleinschreibung verglichen
const placeholderFold = "iphone"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product ist ein Katalog-Eintrag
type Product struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	ImageRef  string         `json:"image_url"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate prueft die Pflichtfelder vor dem Speichern
func (p *Product) Validate() error {
	const op = "catalog: validate"
	switch {
	case p == nil:
		return errtypes.Validation(op, ErrInvalidProduct)
	case strings.TrimSpace(p.Name) == "":
		return errtypes.Validation(op, fmt.Errorf("%w: name is required", ErrInvalidProduct))
	case strings.TrimSpace(p.ImageRef) == "":
		return errtypes.Validation(op, fmt.Errorf("%w: image url is required", ErrInvalidProduct))
	case len(p.Embedding) == 0:
		return errtypes.Validation(op, fmt.Errorf("%w: embedding is required", ErrInvalidProduct))
	}
	return nil
}

// Embeddable meldet ob das Produkt ein nutzbares Embedding hat
func (p *Product) Embeddable() bool {
	return p != nil && len(p.Embedding) > 0
}

// Clone liefert eine tiefe Kopie von Embedding und Metadata
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Embedding = slices.Clone(p.Embedding)
	if p.Metadata != nil {
		c.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// IsPlaceholderName prueft einen Namen gegen die Platzhalter-Liste.
// "iphone" wird nur als exakter Name erkannt, nicht als Teilstring.
func IsPlaceholderName(name string) bool {
	if strings.EqualFold(name, placeholderFold) {
		return true
	}
	return slices.Contains(PlaceholderNames, name)
}

// Prepare vergibt eine ID falls noetig, setzt Defaults und Zeitstempel.
// Treiber rufen Prepare in Save vor dem Schreiben auf.
func Prepare(p *Product, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Name = strings.TrimSpace(p.Name)
	if strings.TrimSpace(p.Category) == "" {
		p.Category = DefaultCategory
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// NotFound erzeugt den Fehler fuer eine unbekannte Produkt-ID
func NotFound(op, id string) error {
	return errtypes.NotFound(op, fmt.Errorf("%w: %s", ErrProductNotFound, id))
}

// MODUL: match/pipeline
// ZWECK: Verbindet Materializer, Provider, Katalog und Ranking
// INPUT: vision.ImageRef
// OUTPUT: Embedding, sortierte Ergebnisse oder gespeichertes Produkt
// NEBENEFFEKTE: Netzwerk (Bild laden, Provider), Katalog-Zugriffe
// ABHAENGIGKEITEN: vision, catalog, types/errtypes
// HINWEISE: Jeder Schritt ist terminal, keine Retries, keine Teilergebnisse

package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/7blacky7/vismatch/catalog"
	"github.com/7blacky7/vismatch/types/errtypes"
	"github.com/7blacky7/vismatch/vision"
)

// ErrEmptyEmbedding meldet einen Provider, der einen leeren Vektor liefert
var ErrEmptyEmbedding = errors.New("provider returned an empty embedding")

// Pipeline fuehrt Embed, Match und Index aus. Alle Abhaengigkeiten werden
// injiziert, die Pipeline ist sicher fuer parallele Nutzung.
type Pipeline struct {
	store        catalog.Store
	provider     vision.Provider
	materializer *vision.Materializer
	topK         int
}

// Option konfiguriert eine Pipeline
type Option func(*Pipeline)

// WithMaterializer setzt einen eigenen Materializer
func WithMaterializer(m *vision.Materializer) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.materializer = m
		}
	}
}

// WithTopK setzt die maximale Anzahl an Ergebnissen (<= 0: alle)
func WithTopK(k int) Option {
	return func(p *Pipeline) { p.topK = k }
}

// New erstellt eine Pipeline
func New(store catalog.Store, provider vision.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:        store,
		provider:     provider,
		materializer: vision.NewMaterializer(),
		topK:         DefaultTopK,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provider gibt den gebundenen Provider zurueck
func (p *Pipeline) Provider() vision.Provider { return p.provider }

// Store gibt den gebundenen Katalog zurueck
func (p *Pipeline) Store() catalog.Store { return p.store }

// Embed laedt das Bild und berechnet sein Embedding
func (p *Pipeline) Embed(ctx context.Context, ref vision.ImageRef) ([]float32, error) {
	data, err := p.materializer.Materialize(ctx, ref)
	if err != nil {
		return nil, err
	}

	vec, err := p.provider.Embed(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, errtypes.Provider("match: embed", ErrEmptyEmbedding)
	}
	return vec, nil
}

// Match berechnet das Embedding der Anfrage und sortiert die Kandidaten
// des Katalogs nach Aehnlichkeit. Ein leerer Katalog ergibt eine leere
// Liste ohne Fehler.
func (p *Pipeline) Match(ctx context.Context, ref vision.ImageRef) ([]Result, error) {
	start := time.Now()

	query, err := p.Embed(ctx, ref)
	if err != nil {
		return nil, err
	}

	candidates, err := p.store.List(ctx, catalog.EmbeddableFilter())
	if err != nil {
		return nil, fmt.Errorf("match: load candidates: %w", err)
	}

	candidates = sameDimension(query, candidates)

	results, err := Rank(query, candidates, p.topK)
	if err != nil {
		return nil, err
	}

	slog.Debug("match completed", "ref", ref.String(), "candidates", len(candidates), "results", len(results), "elapsed", time.Since(start))
	return results, nil
}

// ProductInput beschreibt ein neues Katalog-Produkt
type ProductInput struct {
	Name     string
	Category string

	// Image ist die Quelle fuer das Embedding
	Image vision.ImageRef

	// ImageRef wird gespeichert, leer = Image.Ref
	ImageRef string

	Metadata map[string]any
}

// Index berechnet das Embedding und speichert das Produkt
func (p *Pipeline) Index(ctx context.Context, in ProductInput) (*catalog.Product, error) {
	vec, err := p.Embed(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	stored := in.ImageRef
	if stored == "" {
		stored = in.Image.Ref
	}

	prod := &catalog.Product{
		Name:      in.Name,
		Category:  in.Category,
		ImageRef:  stored,
		Embedding: vec,
		Metadata:  in.Metadata,
	}
	if err := p.store.Save(ctx, prod); err != nil {
		return nil, err
	}

	slog.Info("product indexed", "id", prod.ID, "name", prod.Name, "dimensions", len(vec))
	return prod, nil
}

// sameDimension entfernt Kandidaten, deren Dimension nicht zur Anfrage passt.
// Solche Datensaetze entstehen, wenn der Provider gewechselt wurde.
func sameDimension(query []float32, candidates []*catalog.Product) []*catalog.Product {
	out := make([]*catalog.Product, 0, len(candidates))
	skipped := 0
	for _, c := range candidates {
		if len(c.Embedding) != len(query) {
			skipped++
			continue
		}
		out = append(out, c)
	}
	if skipped > 0 {
		slog.Warn("skipping candidates with different embedding dimensions",
			"skipped", skipped, "query_dimensions", len(query))
	}
	return out
}

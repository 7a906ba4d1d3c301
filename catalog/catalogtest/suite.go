// Package catalogtest enthaelt die gemeinsame Test-Suite fuer Katalog-Treiber.
package catalogtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/vismatch/catalog"
	"github.com/7blacky7/vismatch/types/errtypes"
)

// Product erzeugt ein gueltiges Test-Produkt
func Product(name string, embedding ...float32) *catalog.Product {
	return &catalog.Product{
		Name:      name,
		Category:  "Shoes",
		ImageRef:  "/uploads/" + name + ".jpg",
		Embedding: embedding,
		Metadata:  map[string]any{"source": "test"},
	}
}

// Run fuehrt die Suite gegen einen frischen Store pro Subtest aus
func Run(t *testing.T, open func(t *testing.T) catalog.Store) {
	t.Helper()

	t.Run("SaveGet", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		p := Product("sneaker", 0.25, 0.5, -1)
		require.NoError(t, s.Save(ctx, p))
		require.NotEmpty(t, p.ID, "Save muss eine ID vergeben")
		assert.False(t, p.CreatedAt.IsZero())

		got, err := s.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
		assert.Equal(t, p.Category, got.Category)
		assert.Equal(t, p.ImageRef, got.ImageRef)
		assert.Equal(t, []float32{0.25, 0.5, -1}, got.Embedding)
		assert.Equal(t, "test", got.Metadata["source"])
	})

	t.Run("SaveDefaultsCategory", func(t *testing.T) {
		s := open(t)
		p := Product("boot", 1)
		p.Category = ""
		require.NoError(t, s.Save(context.Background(), p))

		got, err := s.Get(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.DefaultCategory, got.Category)
	})

	t.Run("SaveRejectsInvalid", func(t *testing.T) {
		s := open(t)
		err := s.Save(context.Background(), Product("no embedding"))
		assert.True(t, errors.Is(err, errtypes.ErrValidation), "erwartet Validation-Fehler, erhalten %v", err)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		p := Product("sandal", 1, 0)
		require.NoError(t, s.Save(ctx, p))

		p.Name = "sandal v2"
		p.Embedding = []float32{0, 1, 0}
		require.NoError(t, s.Save(ctx, p))

		got, err := s.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "sandal v2", got.Name)
		assert.Equal(t, []float32{0, 1, 0}, got.Embedding)

		all, err := s.List(ctx, catalog.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), "does-not-exist")
		assert.True(t, errors.Is(err, catalog.ErrProductNotFound), "erwartet ErrProductNotFound, erhalten %v", err)
		assert.True(t, errors.Is(err, errtypes.ErrNotFound))
	})

	t.Run("ListFilter", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		items := []*catalog.Product{
			Product("Runner", 1, 0),
			Product("Unnamed Product", 1, 0),
			Product("iPhone", 0, 1),
			Product("Bag", 0, 1),
		}
		items[3].Category = "Bags"
		for i, p := range items {
			p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, s.Save(ctx, p))
		}

		all, err := s.List(ctx, catalog.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bag", "iPhone", "Unnamed Product", "Runner"}, names(all), "neueste zuerst")

		cands, err := s.List(ctx, catalog.EmbeddableFilter())
		require.NoError(t, err)
		assert.Equal(t, []string{"Bag", "Runner"}, names(cands))

		bags, err := s.List(ctx, catalog.Filter{Category: "Bags"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bag"}, names(bags))
	})

	t.Run("DeleteClear", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		a, b := Product("a", 1), Product("b", 2)
		require.NoError(t, s.Save(ctx, a))
		require.NoError(t, s.Save(ctx, b))

		require.NoError(t, s.Delete(ctx, a.ID))
		err := s.Delete(ctx, a.ID)
		assert.True(t, errors.Is(err, catalog.ErrProductNotFound), "zweites Delete: erwartet ErrProductNotFound, erhalten %v", err)

		n, err := s.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		all, err := s.List(ctx, catalog.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func names(products []*catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

// MODUL: match/cosine
// ZWECK: Cosine Similarity zwischen zwei Embeddings
// INPUT: zwei []float32 gleicher Laenge
// OUTPUT: float64 in [-1, 1]
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: gonum/floats, types/errtypes
// HINWEISE: Akkumulation in float64, Nullvektor ergibt 0

package match

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/7blacky7/vismatch/types/errtypes"
)

// Cosine berechnet dot(a,b) / (|a| * |b|).
// Unterschiedliche Laengen liefern einen DimensionMismatch-Fehler,
// ein Nullvektor auf einer Seite liefert 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errtypes.DimensionMismatch("match: cosine", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	x, y := widen(a), widen(b)
	na, nb := floats.Norm(x, 2), floats.Norm(y, 2)
	if na == 0 || nb == 0 {
		return 0, nil
	}

	s := floats.Dot(x, y) / (na * nb)
	if math.IsNaN(s) {
		return 0, nil
	}
	return math.Max(-1, math.Min(1, s)), nil
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

package match

import (
	"sort"

	"github.com/7blacky7/vismatch/catalog"
)

// DefaultTopK ist die Anzahl der Ergebnisse pro Match
const DefaultTopK = 10

// Result ist ein Kandidat mit seiner Aehnlichkeit zur Anfrage
type Result struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	ImageRef   string  `json:"image_url"`
	Similarity float64 `json:"similarity"`
}

// Rank bewertet alle Kandidaten gegen query, sortiert absteigend und
// kuerzt auf k Eintraege (k <= 0: alle). Gleichstand behaelt die
// Reihenfolge der Kandidaten. Ein Kandidat mit abweichender Dimension
// laesst den ganzen Aufruf fehlschlagen.
func Rank(query []float32, candidates []*catalog.Product, k int) ([]Result, error) {
	results := make([]Result, 0, len(candidates))
	for _, p := range candidates {
		s, err := Cosine(query, p.Embedding)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{
			ProductID:  p.ID,
			Name:       p.Name,
			Category:   p.Category,
			ImageRef:   p.ImageRef,
			Similarity: s,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

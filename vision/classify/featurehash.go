// MODUL: classify/featurehash
// ZWECK: Feature-Hashing von Klassifikations-Labels in einen festen Vektor
// INPUT: Labels mit Scores (absteigend sortiert)
// OUTPUT: Pseudo-Embedding ([]float32)
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: huggingface (Label), unicode/utf16
// HINWEISE: Geringe Qualitaet. Bilder mit ueberlappenden Top-Labels erhalten
//           aehnliche Vektoren, ohne dass ein echtes Embedding existiert.

package classify

import (
	"unicode/utf16"

	"github.com/7blacky7/vismatch/huggingface"
)

const (
	// VectorSize ist die Anzahl der Buckets
	VectorSize = 1000

	// TopN ist die Anzahl der verwendeten Labels
	TopN = 10
)

// LabelHash ist der polynomielle Rolling-Hash h = h*31 + c ueber
// UTF-16 Code Units mit int32-Ueberlauf.
func LabelHash(label string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(label)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

// Bucket bildet einen Label-Hash auf einen Index in [0, size) ab.
// Der Betrag wird in 64 Bit berechnet, damit MinInt32 nicht ueberlaeuft.
func Bucket(label string, size int) int {
	h := int64(LabelHash(label))
	if h < 0 {
		h = -h
	}
	return int(h % int64(size))
}

// FeatureHash schreibt die Scores der ersten topN Labels in ihre Buckets.
// Bei Kollisionen gewinnt das spaetere Label, Scores werden nicht summiert.
func FeatureHash(labels []huggingface.Label, size, topN int) []float32 {
	if size <= 0 {
		size = VectorSize
	}
	if topN <= 0 {
		topN = TopN
	}

	vec := make([]float32, size)
	for i, l := range labels {
		if i >= topN {
			break
		}
		vec[Bucket(l.Label, size)] = l.Score
	}
	return vec
}

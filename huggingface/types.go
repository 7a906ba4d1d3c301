// types.go - Antwort-Typen der Inference API
//
// Die API liefert je nach Modell:
// - Klassifikation: [{"label": "...", "score": 0.9}, ...]
// - Batch-Klassifikation: [[{"label": ..., "score": ...}, ...]]
// - Feature-Extraction: [0.1, ...] oder [[0.1, ...], ...]
// - CLIP-artige Modelle: {"image_embeds": [...]} bzw. [{"image_embeds": [...]}]
package huggingface

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Label ist ein Klassifikationsergebnis
type Label struct {
	Label string  `json:"label"`
	Score float32 `json:"score"`
}

// InferenceResult enthaelt entweder Labels oder einen Vektor
type InferenceResult struct {
	Labels []Label
	Vector []float32
}

// ParseInference dekodiert eine Antwort der Inference API.
// Labels behalten die Reihenfolge der Antwort (absteigend nach Score).
func ParseInference(raw []byte) (*InferenceResult, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: leere antwort", ErrInvalidResponse)
	}

	if raw[0] == '{' {
		var obj struct {
			ImageEmbeds []float32 `json:"image_embeds"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil || len(obj.ImageEmbeds) == 0 {
			return nil, fmt.Errorf("%w: unerwartetes objekt", ErrInvalidResponse)
		}
		return &InferenceResult{Vector: obj.ImageEmbeds}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: leeres array", ErrInvalidResponse)
	}

	first := bytes.TrimSpace(items[0])
	switch {
	case len(first) > 0 && first[0] == '{':
		var probe struct {
			Label       *string   `json:"label"`
			ImageEmbeds []float32 `json:"image_embeds"`
		}
		if err := json.Unmarshal(first, &probe); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if probe.Label == nil {
			if len(probe.ImageEmbeds) > 0 {
				return &InferenceResult{Vector: probe.ImageEmbeds}, nil
			}
			return nil, fmt.Errorf("%w: objekt ohne label", ErrInvalidResponse)
		}
		var labels []Label
		if err := json.Unmarshal(raw, &labels); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return &InferenceResult{Labels: labels}, nil

	case len(first) > 0 && first[0] == '[':
		// Batch-Antwort: erstes Element verwenden
		return ParseInference(first)

	default:
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return &InferenceResult{Vector: vec}, nil
	}
}

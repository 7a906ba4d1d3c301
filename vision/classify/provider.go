// MODUL: classify/provider
// ZWECK: Fallback-Provider auf Basis einer Bild-Klassifikations-API
// INPUT: Bild-Bytes, HF-Token, Modell-ID
// OUTPUT: Pseudo-Embedding (1000 Buckets) oder Vektor des Modells
// NEBENEFFEKTE: HTTP-Requests an die HuggingFace Inference API
// ABHAENGIGKEITEN: huggingface (Client), vision (Provider), types/errtypes
// HINWEISE: Ohne Token wird vor jedem Netzwerkaufruf ein Configuration-Fehler geliefert

package classify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/7blacky7/vismatch/huggingface"
	"github.com/7blacky7/vismatch/types/errtypes"
	"github.com/7blacky7/vismatch/vision"
)

// ErrNoCredential meldet einen fehlenden HuggingFace-Token
var ErrNoCredential = errors.New("no embedding service available: enable local CLIP (VISMATCH_USE_LOCAL_CLIP=true) or set HUGGINGFACE_API_KEY")

// Provider klassifiziert Bilder und hasht die Top-Labels in einen Vektor.
type Provider struct {
	client *huggingface.Client
	model  string
	size   int
	topN   int
}

// New erstellt einen Provider. Ein leerer Token ist erlaubt und fuehrt
// erst beim ersten Embed zu einem Fehler.
func New(token, model string, opts ...huggingface.ClientOption) *Provider {
	if model == "" {
		model = huggingface.DefaultModel
	}
	opts = append([]huggingface.ClientOption{huggingface.WithToken(token)}, opts...)
	return &Provider{
		client: huggingface.NewClient(opts...),
		model:  model,
		size:   VectorSize,
		topN:   TopN,
	}
}

// Info implementiert vision.Provider
func (p *Provider) Info() vision.ProviderInfo {
	return vision.ProviderInfo{
		Name:        vision.ProviderHuggingFace,
		Endpoint:    p.client.BaseURL(),
		Model:       p.model,
		Dimensions:  p.size,
		LowFidelity: true,
	}
}

// Embed klassifiziert das Bild. Label-Antworten werden per Feature-Hashing
// in VectorSize Buckets abgebildet, numerische Antworten direkt verwendet.
func (p *Provider) Embed(ctx context.Context, image []byte) ([]float32, error) {
	const op = "huggingface: embed"

	if !p.client.HasToken() {
		return nil, errtypes.Configuration(op, ErrNoCredential)
	}

	slog.Warn("using classification fallback, similarity quality is limited", "model", p.model)

	res, err := p.client.Infer(ctx, p.model, image)
	if err != nil {
		return nil, errtypes.Provider(op, err)
	}

	switch {
	case len(res.Labels) > 0:
		return FeatureHash(res.Labels, p.size, p.topN), nil
	case len(res.Vector) > 0:
		return res.Vector, nil
	default:
		return nil, errtypes.Provider(op, huggingface.ErrInvalidResponse)
	}
}

var _ vision.Provider = (*Provider)(nil)

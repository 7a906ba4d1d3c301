// MODUL: classify/register
// ZWECK: Registrierung des Klassifikations-Fallbacks in der globalen Registry
// INPUT: Keine
// OUTPUT: Keine (Seiteneffekt: Registry-Eintrag)
// NEBENEFFEKTE: Registriert "huggingface" Factory in vision.DefaultRegistry
// ABHAENGIGKEITEN: vision (RegisterToDefault), provider.go (New)
// HINWEISE: Wird automatisch durch init() beim Import ausgefuehrt

package classify

import (
	"github.com/7blacky7/vismatch/huggingface"
	"github.com/7blacky7/vismatch/vision"
)

func init() {
	vision.RegisterToDefault(vision.ProviderHuggingFace, factory)
}

func factory(cfg vision.ProviderConfig) (vision.Provider, error) {
	return New(cfg.HFToken, cfg.HFModel,
		huggingface.WithBaseURL(cfg.HFEndpoint),
		huggingface.WithClientTimeout(cfg.HFTimeout),
		huggingface.WithRequestMode(huggingface.ParseRequestMode(cfg.HFRequest)),
	), nil
}

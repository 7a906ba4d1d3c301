// MODUL: clip/register
// ZWECK: Automatische Registrierung des CLIP-Providers in der globalen Registry
// INPUT: Keine
// OUTPUT: Keine (Seiteneffekt: Registry-Eintrag)
// NEBENEFFEKTE: Registriert "clip" Factory in vision.DefaultRegistry
// ABHAENGIGKEITEN: vision (RegisterToDefault), client.go (New)
// HINWEISE: Wird automatisch durch init() beim Import ausgefuehrt

package clip

import (
	"github.com/7blacky7/vismatch/vision"
)

// init registriert den CLIP-Provider beim Package-Import.
// Nach dem Import von "github.com/7blacky7/vismatch/vision/clip" ist er
// unter dem Namen "clip" in der DefaultRegistry verfuegbar.
func init() {
	vision.RegisterToDefault(vision.ProviderCLIP, factory)
}

func factory(cfg vision.ProviderConfig) (vision.Provider, error) {
	opts := []Option{WithTimeout(cfg.CLIPTimeout)}
	if cfg.CLIPJPEG {
		opts = append(opts, WithJPEGNormalization())
	}
	return New(cfg.CLIPURL, opts...), nil
}

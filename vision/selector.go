// MODUL: selector
// ZWECK: Bindet beim Start genau einen Provider anhand eines Schalters
// INPUT: ProviderConfig
// OUTPUT: Provider
// NEBENEFFEKTE: Log-Warnung bei fehlender Konfiguration
// ABHAENGIGKEITEN: registry.go
// HINWEISE: Kein Umschalten zur Laufzeit, Fehlkonfiguration zeigt sich erst beim ersten Embed

package vision

import "log/slog"

// SelectProvider erstellt den konfigurierten Provider aus der DefaultRegistry.
func SelectProvider(cfg ProviderConfig) (Provider, error) {
	return SelectProviderFrom(DefaultRegistry, cfg)
}

// SelectProviderFrom erstellt den konfigurierten Provider aus einer Registry.
func SelectProviderFrom(r *Registry, cfg ProviderConfig) (Provider, error) {
	name := cfg.ProviderName()
	p, err := r.Create(name, cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Usable() {
		slog.Warn("no usable embedding provider configured, embed calls will fail",
			"provider", name,
			"hint", "set VISMATCH_USE_LOCAL_CLIP=true or HUGGINGFACE_API_KEY")
	}

	info := p.Info()
	slog.Info("embedding provider selected", "provider", info.Name, "model", info.Model, "dimensions", info.Dimensions, "low_fidelity", info.LowFidelity)
	return p, nil
}

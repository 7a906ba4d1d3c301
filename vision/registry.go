// Package vision - Provider Registry fuer die Registrierung per init().
//
// MODUL: registry
// ZWECK: Zentrale Registry fuer Provider-Factories mit Thread-sicherer Verwaltung
// INPUT: Provider-Name, ProviderFactory, ProviderConfig
// OUTPUT: Provider-Instanzen
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: sync (stdlib), provider.go
// HINWEISE: Thread-sicher durch RWMutex
package vision

import (
	"sort"
	"sync"
)

// ============================================================================
// Registry - Zentrale Provider-Verwaltung
// ============================================================================

// Registry verwaltet registrierte Provider-Factories.
type Registry struct {
	factories map[string]ProviderFactory
	mu        sync.RWMutex
}

// NewRegistry erstellt eine neue leere Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

// Register registriert eine Factory unter dem angegebenen Namen.
// Ueberschreibt existierende Eintraege ohne Warnung.
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
}

// Unregister entfernt einen Provider aus der Registry.
// Gibt true zurueck wenn der Provider existierte.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.factories[name]
	delete(r.factories, name)
	return exists
}

// Get gibt die Factory fuer den angegebenen Namen zurueck.
func (r *Registry) Get(name string) (ProviderFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	return factory, exists
}

// Has prueft ob ein Provider unter dem Namen registriert ist.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List gibt die registrierten Namen sortiert zurueck.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create erstellt einen Provider mit der registrierten Factory.
// Gibt einen RegistryError mit ErrProviderNotRegistered zurueck wenn der Name fehlt.
func (r *Registry) Create(name string, cfg ProviderConfig) (Provider, error) {
	factory, exists := r.Get(name)
	if !exists {
		return nil, &RegistryError{Op: "create", Name: name, Err: ErrProviderNotRegistered}
	}

	p, err := factory(cfg)
	if err != nil {
		return nil, &RegistryError{Op: "create", Name: name, Err: err}
	}
	return p, nil
}

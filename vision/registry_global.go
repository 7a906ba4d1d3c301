// Package vision - Globale Registry-Instanz und Package-Level Funktionen.
//
// MODUL: registry_global
// ZWECK: Stellt eine globale DefaultRegistry bereit
// INPUT: Provider-Name, ProviderFactory
// OUTPUT: Registrierte Provider
// NEBENEFFEKTE: Aendert globale DefaultRegistry
// ABHAENGIGKEITEN: registry.go (Registry)
// HINWEISE: Provider registrieren sich via init() in ihren Packages
package vision

import "errors"

// ErrProviderNotRegistered wird zurueckgegeben wenn ein Provider nicht registriert ist.
// Meist fehlt der Blank-Import des Provider-Packages.
var ErrProviderNotRegistered = errors.New("vision: provider not registered")

// RegistryError repraesentiert einen Registry-spezifischen Fehler.
type RegistryError struct {
	Op   string // Operation (z.B. "create")
	Name string // Provider-Name
	Err  error  // Urspruenglicher Fehler
}

// Error implementiert das error Interface.
func (e *RegistryError) Error() string {
	return "vision: " + e.Op + " provider '" + e.Name + "': " + e.Err.Error()
}

// Unwrap gibt den urspruenglichen Fehler zurueck.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// DefaultRegistry ist die globale Registry fuer Provider.
var DefaultRegistry = NewRegistry()

// RegisterToDefault registriert eine Factory in der DefaultRegistry.
// Panict bei nil-Factory, da Aufrufe aus init() kommen.
func RegisterToDefault(name string, factory ProviderFactory) {
	if factory == nil {
		panic("vision: nil factory for provider '" + name + "'")
	}
	DefaultRegistry.Register(name, factory)
}

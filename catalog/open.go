// open.go - Treiber-Auswahl fuer Katalog-Stores
//
// Treiber registrieren sich per init() unter ihrem Namen. Der Aufrufer
// importiert die gewuenschten Treiber (blank import) und oeffnet den Store
// mit Open. Der memory-Treiber ist immer verfuegbar.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Namen der mitgelieferten Treiber
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverQdrant   = "qdrant"
	DriverSupabase = "supabase"
)

var (
	ErrUnknownDriver = errors.New("catalog: unknown driver")
	ErrInvalidConfig = errors.New("catalog: invalid configuration")
)

// Config enthaelt die Parameter aller Treiber. Jeder Treiber liest nur
// seine eigenen Felder.
type Config struct {
	Driver string

	SQLitePath string

	RedisURL string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string
}

// OpenFunc erzeugt einen Store aus der Konfiguration
type OpenFunc func(ctx context.Context, cfg Config) (Store, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]OpenFunc{
		DriverMemory: func(context.Context, Config) (Store, error) { return NewMemoryStore(), nil },
	}
)

// Register macht einen Treiber unter name verfuegbar.
// Panics bei nil, analog zu database/sql.Register.
func Register(name string, open OpenFunc) {
	if open == nil {
		panic("catalog: Register open func is nil for " + name)
	}
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = open
}

// Drivers listet die registrierten Treiber sortiert auf
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open oeffnet den in cfg.Driver benannten Store
func Open(ctx context.Context, cfg Config) (Store, error) {
	driversMu.RLock()
	open, ok := drivers[cfg.Driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownDriver, cfg.Driver, Drivers())
	}

	s, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", cfg.Driver, err)
	}
	return s, nil
}

// Package errtypes enthaelt die Fehler-Taxonomie von vismatch.
//
// Jeder Fehler der Match-Engine traegt eine Kind, die Aufrufer mit
// errors.Is gegen die Sentinels pruefen koennen:
//
//	if errors.Is(err, errtypes.ErrProvider) { ... }
//
// Die HTTP-Grenze bildet die Kind auf Statuscodes ab.
package errtypes

import (
	"errors"
	"fmt"
)

// Kind unterscheidet die Fehlerklassen der Engine.
type Kind int

const (
	KindUnknown Kind = iota
	KindFetch
	KindNotFound
	KindFormat
	KindConfiguration
	KindProvider
	KindDimensionMismatch
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindNotFound:
		return "not found"
	case KindFormat:
		return "format"
	case KindConfiguration:
		return "configuration"
	case KindProvider:
		return "provider"
	case KindDimensionMismatch:
		return "dimension mismatch"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinels fuer errors.Is. Ein *Error mit passender Kind gilt als gleich.
var (
	ErrFetch             = &Error{Kind: KindFetch}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrFormat            = &Error{Kind: KindFormat}
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrProvider          = &Error{Kind: KindProvider}
	ErrDimensionMismatch = &Error{Kind: KindDimensionMismatch}
	ErrValidation        = &Error{Kind: KindValidation}
)

// ErrServiceUnreachable markiert einen Provider, der keine Verbindung annimmt.
var ErrServiceUnreachable = errors.New("service unreachable")

// Error ist ein Fehler mit Kind, Operation und Ursache.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return e.Op + ": " + e.Kind.String() + " error"
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is vergleicht nach Kind, damit Sentinels ohne Op/Err passen.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf gibt die Kind des ersten *Error in der Kette zurueck.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ============================================================================
// Konstruktoren
// ============================================================================

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Fetch: Bild per HTTP(S) nicht ladbar (Timeout, Status, Netzwerk).
func Fetch(op string, err error) error { return newError(KindFetch, op, err) }

// NotFound: lokaler Pfad oder Datensatz existiert nicht.
func NotFound(op string, err error) error { return newError(KindNotFound, op, err) }

// Format: Eingabe nicht dekodierbar (Data-URI, Bildformat).
func Format(op string, err error) error { return newError(KindFormat, op, err) }

// Configuration: Provider ohne nutzbares Credential oder Endpunkt.
func Configuration(op string, err error) error { return newError(KindConfiguration, op, err) }

// Provider: Upstream-Aufruf fehlgeschlagen oder Antwort unbrauchbar.
func Provider(op string, err error) error { return newError(KindProvider, op, err) }

// Validation: ungueltige Eingabe an der HTTP-Grenze oder im Store.
func Validation(op string, err error) error { return newError(KindValidation, op, err) }

// DimensionMismatch meldet Vektoren unterschiedlicher Laenge.
func DimensionMismatch(op string, a, b int) error {
	return newError(KindDimensionMismatch, op, fmt.Errorf("vector dimensions differ: %d != %d", a, b))
}

// Errorf baut die Ursache per fmt.Errorf und verpackt sie mit Kind und Op.
func Errorf(kind Kind, op, format string, args ...any) error {
	return newError(kind, op, fmt.Errorf(format, args...))
}

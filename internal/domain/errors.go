package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// ValidationError es una falla de validación que bloquea el guardado completo
// antes de cualquier mutación. errors.Is(err, ErrInvalidInput) == true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Validation construye un ValidationError.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError envuelve una falla de almacenamiento con el contexto
// necesario para reconciliación manual (operación y colección). Retryable
// marca timeouts y cortes transitorios; el TxRunner reintenta acotado.
type PersistenceError struct {
	Op         string // ej. "update stock", "insert movement"
	Collection string // ej. "products", "orders"
	Retryable  bool
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia: %s en %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsRetryable indica si err (o su cadena) es un PersistenceError transitorio.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Retryable
}

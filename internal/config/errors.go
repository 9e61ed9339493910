package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigParseFailed is returned when the merged settings cannot be decoded.
	ErrConfigParseFailed = errors.New("no se pudo interpretar la configuración")
	// ErrConfigInvalid is matched by every ValidationError.
	ErrConfigInvalid = errors.New("configuración inválida")
)

// ValidationError represents an error in configuration validation.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuración inválida: campo %q con valor %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrConfigInvalid
}

// Package memory implementa los repositorios en maps con mutex.
// Se usa en dev y en tests de integración; no persiste nada.
package memory

import "errors"

var (
	ErrNotFound = errors.New("not found")
)

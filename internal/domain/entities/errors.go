package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a token is not allowed to perform an operation.
	ErrUnauthorized = errors.New("token não autorizado")
	// ErrDecode marks every payload decoding failure.
	ErrDecode = errors.New("payload inválido")
	// ErrConfigNotFound is returned by a TokenConfigRepository when nothing was persisted yet.
	ErrConfigNotFound = errors.New("configuração de tokens não encontrada")
	// ErrDuplicateToken is returned when a new token is already known.
	ErrDuplicateToken = errors.New("token já existente")
	// ErrConfigConflict is returned by a conditional Save when the stored config
	// changed since it was last loaded.
	ErrConfigConflict = errors.New("configuração de tokens alterada por outro processo")
)

// DecodeError describes which step of the payload decoding failed.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("falha ao decodificar payload (%s)", e.Stage)
	}
	return fmt.Sprintf("falha ao decodificar payload (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

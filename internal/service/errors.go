package service

import (
	"errors"
	"fmt"

	"github.com/Orbeng/engser/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Kind classifies a service failure; handlers map it to an HTTP status.
type Kind int

const (
	KindTransient Kind = iota // unexpected store failure, safe to retry
	KindValidation
	KindNotFound
	KindConflict // referential conflict: entity still referenced, or reference missing
	KindDuplicate
	KindUnauthorized
)

// FieldError names one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// Error is the error type returned by every service method. Message is safe
// to show to API clients; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// ValidationError reports a rejected input, optionally naming the field.
func ValidationError(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }

// KindOf returns the Kind of err, or KindTransient for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransient
}

// classify converts a repository error into a service *Error. notFoundMsg is
// used for gorm.ErrRecordNotFound.
func classify(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newError(KindNotFound, notFoundMsg, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return newError(KindConflict, "Entidade referenciada não encontrada", err)
	case errors.Is(err, repository.ErrReferenced):
		return newError(KindConflict, "Registro em uso por outros cadastros", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return newError(KindDuplicate, "Registro duplicado", err)
	default:
		return newError(KindTransient, "Erro interno, tente novamente", err)
	}
}

// logFailure records a failed operation. Transient failures are logged at
// error level, expected ones (validation, not found...) at warn.
func logFailure(op, id string, err error) {
	ev := log.Warn()
	if KindOf(err) == KindTransient {
		ev = log.Error()
	}
	ev.Err(err).Str("op", op).Str("id", id).Msg("operation failed")
}

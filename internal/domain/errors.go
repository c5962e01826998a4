package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica errores de negocio de forma independiente al transporte.
type ErrorKind string

const (
	KindValidation  ErrorKind = "VALIDATION"
	KindConflict    ErrorKind = "CONFLICT"
	KindAuth        ErrorKind = "AUTH"
	KindForbidden   ErrorKind = "FORBIDDEN"
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindRateLimited ErrorKind = "RATE_LIMITED"
	KindParse       ErrorKind = "PARSE"
	KindServer      ErrorKind = "SERVER"
)

// Error es un error clasificado. Message es seguro para el cliente; Err no.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compara por Kind y Message para que errors.Is funcione con los
// sentinels aunque el error haya sido envuelto con una causa.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// NewError construye un error de dominio.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError envuelve una causa interna con una clasificacion.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf devuelve la clasificacion del error; los errores sin clasificar son KindServer.
func KindOf(err error) ErrorKind {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Kind
	}
	return KindServer
}

// MessageOf devuelve el mensaje publico del error o fallback.
func MessageOf(err error, fallback string) string {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return fallback
}

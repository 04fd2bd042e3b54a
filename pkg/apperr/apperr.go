package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindInternal          Kind = "internal"
	KindValidation        Kind = "validation"
	KindAuthentication    Kind = "authentication"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindUpstreamFormat    Kind = "upstream_format"
	KindTransientUpstream Kind = "transient_upstream"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, apperr.ErrNotFound) work for any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrAuthentication    = &Error{Kind: KindAuthentication}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrUpstreamFormat    = &Error{Kind: KindUpstreamFormat}
	ErrTransientUpstream = &Error{Kind: KindTransientUpstream}
)

func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func UpstreamFormat(msg string, err error) *Error {
	return &Error{Kind: KindUpstreamFormat, Message: msg, Err: err}
}

func TransientUpstream(err error) *Error {
	return &Error{Kind: KindTransientUpstream, Message: "ai service unavailable", Err: err}
}

// KindOf returns the kind of the first *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage is the message that may be shown to a client.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}

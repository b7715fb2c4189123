package services

import (
	"errors"

	"gorm.io/gorm"
)

// Kind classifies a service failure so the API boundary can surface it as a
// distinct error instead of a bare null.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
	KindUpstream
)

// Error carries a failure kind and a user-facing message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the user-facing message without wrapped detail.
func (e *Error) Message() string { return e.msg }

// NotFound reports a missing referenced entity.
func NotFound(msg string) error { return &Error{kind: KindNotFound, msg: msg} }

// Forbidden reports that the actor may not act on the target.
func Forbidden(msg string) error { return &Error{kind: KindForbidden, msg: msg} }

// Conflict reports a duplicate like/save/tag/follow.
func Conflict(msg string) error { return &Error{kind: KindConflict, msg: msg} }

// Invalid reports a validation failure.
func Invalid(msg string) error { return &Error{kind: KindValidation, msg: msg} }

// Upstream reports a failure in an external collaborator (email, image host).
func Upstream(msg string, err error) error { return &Error{kind: KindUpstream, msg: msg, err: err} }

// KindOf extracts the kind from any error chain; unclassified errors are
// internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind()
	}
	return KindInternal
}

// orNotFound converts gorm's record-not-found into a typed not-found error
// and passes other storage errors through untouched.
func orNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(msg)
	}
	return err
}

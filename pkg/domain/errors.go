package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can branch without matching messages.
type Kind string

// Error kinds surfaced by the store and its collaborators.
const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindInternal     Kind = "internal"
)

// Error is the typed failure returned across package boundaries.
type Error struct {
	Kind    Kind
	Entity  EntityType
	ID      string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for any not-found failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Entity == "" && t.ID == "" && t.Field == ""
}

// Sentinels usable with errors.Is.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrPersistence  = &Error{Kind: KindPersistence}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
)

// NotFound reports that id does not exist in the entity collection.
func NotFound(entity EntityType, id string) error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// Conflict reports a uniqueness violation on field.
func Conflict(entity EntityType, field, value string) error {
	return &Error{Kind: KindConflict, Entity: entity, Field: field, Message: fmt.Sprintf("%s %s %q already exists", entity, field, value)}
}

// Invalid reports a missing or malformed field.
func Invalid(entity EntityType, field, message string) error {
	return &Error{Kind: KindValidation, Entity: entity, Field: field, Message: message}
}

// Persistence wraps a durable commit failure.
func Persistence(err error) error {
	return &Error{Kind: KindPersistence, Message: "commit dataset", Err: err}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden reports a role that may not perform the requested operation.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// KindOf extracts the failure kind, defaulting to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var rv RuleViolationError
	if errors.As(err, &rv) {
		return KindConflict
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a uniqueness or rule conflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

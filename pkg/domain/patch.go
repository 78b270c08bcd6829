package domain

import (
	"bytes"
	"encoding/json"
)

// Patch carries an optional field update. The zero value leaves the target
// untouched; a set Patch overwrites it, including with nil for pointer types.
//
// When decoded from JSON an absent key stays unset and an explicit null sets
// the zero value.
type Patch[T any] struct {
	set   bool
	value T
}

// Set returns a Patch that overwrites the target with v.
func Set[T any](v T) Patch[T] {
	return Patch[T]{set: true, value: v}
}

// Clear returns a Patch that overwrites the target with its zero value.
func Clear[T any]() Patch[T] {
	return Patch[T]{set: true}
}

// IsSet reports whether the patch carries a value.
func (p Patch[T]) IsSet() bool { return p.set }

// Value returns the carried value and whether it is set.
func (p Patch[T]) Value() (T, bool) { return p.value, p.set }

// ApplyTo writes the value into dst when set.
func (p Patch[T]) ApplyTo(dst *T) {
	if p.set {
		*dst = p.value
	}
}

// UnmarshalJSON marks the patch as set. encoding/json only calls it when the
// key is present.
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		p.value = zero
		return nil
	}
	return json.Unmarshal(data, &p.value)
}

// MarshalJSON encodes the carried value, or null when unset.
func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

// Ptr returns a pointer to v. Convenient for nullable record fields.
func Ptr[T any](v T) *T { return &v }

// NonEmpty returns nil for an empty string and a pointer otherwise.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

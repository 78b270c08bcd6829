// Package query filters, sorts, paginates and augments household, resident
// and notification records read from a store generation. It never mutates.
package query

import (
	"strings"

	"golang.org/x/text/cases"

	"residency/pkg/domain"
)

// Reader is the read surface the engine needs from the store.
type Reader interface {
	ListHouseholds() []domain.Household
	ListResidents() []domain.Resident
	FindHousehold(id string) (domain.Household, bool)
	FindResident(id string) (domain.Resident, bool)
}

// matcher performs case-insensitive substring matching. A nil matcher
// matches everything.
type matcher struct {
	needle string
	fold   cases.Caser
}

func newMatcher(search string) *matcher {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil
	}
	fold := cases.Fold()
	return &matcher{needle: fold.String(search), fold: fold}
}

// any reports whether any of the values contains the needle.
func (m *matcher) any(values ...*string) bool {
	if m == nil {
		return true
	}
	for _, v := range values {
		if v != nil && strings.Contains(m.fold.String(*v), m.needle) {
			return true
		}
	}
	return false
}

package core

import (
	"context"
	"fmt"

	"residency/pkg/domain"
)

// NewUniqueHouseholdCodeRule blocks duplicate household codes.
func NewUniqueHouseholdCodeRule() domain.Rule {
	return uniqueHouseholdCodeRule{}
}

type uniqueHouseholdCodeRule struct{}

func (uniqueHouseholdCodeRule) Name() string { return "unique_household_code" }

func (r uniqueHouseholdCodeRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if !touches(changes, domain.EntityHousehold) {
		return domain.Result{}, nil
	}
	seen := make(map[string]string)
	res := domain.Result{}
	for _, h := range view.ListHouseholds() {
		if first, dup := seen[h.HouseholdCode]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("household code %q used by %s and %s", h.HouseholdCode, first, h.ID),
				Entity:   domain.EntityHousehold,
				EntityID: h.ID,
			})
			continue
		}
		seen[h.HouseholdCode] = h.ID
	}
	return res, nil
}

package core

import (
	"context"
	"fmt"

	"residency/pkg/domain"
)

// NewResidentHouseholdRefRule blocks residents that reference a household
// missing from the same generation.
func NewResidentHouseholdRefRule() domain.Rule {
	return residentHouseholdRefRule{}
}

type residentHouseholdRefRule struct{}

func (residentHouseholdRefRule) Name() string { return "resident_household_ref" }

func (r residentHouseholdRefRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityResident || change.Action == domain.ActionDelete {
			continue
		}
		written, ok := change.After.(domain.Resident)
		if !ok {
			continue
		}
		resident, ok := view.FindResident(written.ID)
		if !ok || resident.HouseholdID == nil {
			continue
		}
		if _, exists := view.FindHousehold(*resident.HouseholdID); exists {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("resident %s references missing household %s", resident.ID, *resident.HouseholdID),
			Entity:   domain.EntityResident,
			EntityID: resident.ID,
		})
	}
	return res, nil
}

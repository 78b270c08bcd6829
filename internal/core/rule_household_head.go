package core

import (
	"context"
	"fmt"

	"residency/pkg/domain"
)

// NewSingleHouseholdHeadRule blocks any generation in which a household has
// more than one resident flagged as head.
func NewSingleHouseholdHeadRule() domain.Rule {
	return singleHouseholdHeadRule{}
}

type singleHouseholdHeadRule struct{}

func (singleHouseholdHeadRule) Name() string { return "single_household_head" }

func (r singleHouseholdHeadRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if !touches(changes, domain.EntityResident) {
		return domain.Result{}, nil
	}
	heads := make(map[string]int)
	for _, resident := range view.ListResidents() {
		if resident.IsHouseholdHead && resident.HouseholdID != nil {
			heads[*resident.HouseholdID]++
		}
	}

	res := domain.Result{}
	for householdID, count := range heads {
		if count <= 1 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("household %s has %d heads", householdID, count),
			Entity:   domain.EntityHousehold,
			EntityID: householdID,
		})
	}
	return res, nil
}

func touches(changes []domain.Change, entity domain.EntityType) bool {
	for _, c := range changes {
		if c.Entity == entity {
			return true
		}
	}
	return false
}

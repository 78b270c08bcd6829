package core

import "residency/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewSingleHouseholdHeadRule())
	engine.Register(NewUniqueHouseholdCodeRule())
	engine.Register(NewResidentHouseholdRefRule())
	return engine
}

package domain

import (
	"context"
	"errors"
	"testing"
)

func TestResultMergeAndBlocking(t *testing.T) {
	var result Result
	result.Merge(Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}})
	if result.HasBlocking() {
		t.Fatalf("expected no blocking violations")
	}
	result.Merge(Result{Violations: []Violation{{Rule: "block", Severity: SeverityBlock, Message: "two heads"}}})
	if !result.HasBlocking() {
		t.Fatalf("expected blocking violation")
	}
	err := RuleViolationError{Result: result}
	if err.Error() != "transaction blocked by rules: two heads" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("rule violations should classify as conflict, got %s", KindOf(err))
	}
}

func TestResultMergeEmptyInput(t *testing.T) {
	original := Result{Violations: []Violation{{Rule: "existing", Severity: SeverityWarn}}}
	original.Merge(Result{})
	if len(original.Violations) != 1 || original.Violations[0].Rule != "existing" {
		t.Fatalf("expected original violations to remain, got %+v", original.Violations)
	}
}

func TestRulesEngineEvaluate(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "warn"})
	engine.Register(staticRule{name: "log"})
	if got := engine.Rules(); len(got) != 2 || got[0] != "warn" || got[1] != "log" {
		t.Fatalf("unexpected rule order %v", got)
	}
	res, err := engine.Evaluate(context.Background(), emptyView{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected two violations, got %d", len(res.Violations))
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "fails", err: boom})
	engine.Register(staticRule{name: "never"})
	res, err := engine.Evaluate(context.Background(), emptyView{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected empty result on error")
	}
}

type staticRule struct {
	name string
	err  error
}

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	if r.err != nil {
		return Result{}, r.err
	}
	return Result{Violations: []Violation{{Rule: r.name, Severity: SeverityWarn}}}, nil
}

type emptyView struct{}

func (emptyView) ListUsers() []User                      { return nil }
func (emptyView) ListHouseholds() []Household            { return nil }
func (emptyView) ListResidents() []Resident              { return nil }
func (emptyView) FindHousehold(string) (Household, bool) { return Household{}, false }
func (emptyView) FindResident(string) (Resident, bool)   { return Resident{}, false }

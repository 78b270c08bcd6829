package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"residency/internal/infra/persistence/memory"
	"residency/pkg/domain"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

type fixture struct {
	clock   *fixedClock
	adapter *memory.Store
	store   *Store
	svc     *Service
}

func newFixture(t *testing.T, opts ...ServiceOption) *fixture {
	t.Helper()
	clock := &fixedClock{now: testNow}
	adapter := memory.NewStore()
	store := NewStore(adapter, WithClock(clock.Now), WithIDGenerator(sequentialIDs("id")))
	return &fixture{clock: clock, adapter: adapter, store: store, svc: NewService(store, opts...)}
}

func (f *fixture) household(t *testing.T, code string) domain.Household {
	t.Helper()
	h, _, err := f.svc.CreateHousehold(t.Context(), domain.Household{HouseholdCode: code, Address: code + " street"})
	require.NoError(t, err)
	return h
}

func (f *fixture) resident(t *testing.T, name string, householdID *string, head bool) domain.Resident {
	t.Helper()
	r, _, err := f.svc.CreateResident(t.Context(), domain.Resident{FullName: name, HouseholdID: householdID, IsHouseholdHead: head})
	require.NoError(t, err)
	return r
}

func (f *fixture) user(t *testing.T, username string, role domain.Role) domain.User {
	t.Helper()
	u, _, err := f.svc.CreateUser(t.Context(), domain.User{Username: username, FullName: "User " + username, PasswordHash: "hash", Role: role})
	require.NoError(t, err)
	return u
}

func headsOf(t *testing.T, s *Store, householdID string) []string {
	t.Helper()
	var heads []string
	for _, r := range s.ExportState().Residents {
		if r.IsHouseholdHead && r.InHousehold(householdID) {
			heads = append(heads, r.FullName)
		}
	}
	return heads
}

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency/internal/infra/persistence/memory"
	"residency/pkg/domain"
)

func TestHouseholdHeadTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	hk := f.household(t, "HK100")
	a := f.resident(t, "A", &hk.ID, true)
	f.clock.Advance(time.Minute)
	b := f.resident(t, "B", &hk.ID, true)

	assert.Equal(t, []string{"B"}, headsOf(t, f.store, hk.ID))

	stored, err := f.svc.GetResident(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsHouseholdHead)
	assert.Equal(t, testNow.Add(time.Minute), stored.UpdatedAt)

	_, _, err = f.svc.UpdateResident(ctx, a.ID, ResidentUpdate{IsHouseholdHead: domain.Set(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, headsOf(t, f.store, hk.ID))

	stored, err = f.svc.GetResident(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsHouseholdHead)
}

func TestMovingHeadIntoHouseholdDemotesExisting(t *testing.T) {
	f := newFixture(t)
	h1 := f.household(t, "HK1")
	h2 := f.household(t, "HK2")
	f.resident(t, "Head one", &h1.ID, true)
	moving := f.resident(t, "Head two", &h2.ID, true)

	_, _, err := f.svc.UpdateResident(t.Context(), moving.ID, ResidentUpdate{HouseholdID: domain.Set(&h1.ID)})
	require.NoError(t, err)

	assert.Equal(t, []string{"Head two"}, headsOf(t, f.store, h1.ID))
	assert.Empty(t, headsOf(t, f.store, h2.ID))
}

func TestHeadWithoutHouseholdIsAllowed(t *testing.T) {
	f := newFixture(t)
	f.resident(t, "Loose one", nil, true)
	f.resident(t, "Loose two", nil, true)
	assert.Len(t, f.store.ExportState().Residents, 2)
}

func TestDeleteHouseholdUnassignsResidents(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	hk := f.household(t, "HK200")
	other := f.household(t, "HK201")
	r1 := f.resident(t, "Member one", &hk.ID, true)
	r2 := f.resident(t, "Member two", &hk.ID, false)
	r3 := f.resident(t, "Elsewhere", &other.ID, false)

	_, err := f.svc.DeleteHousehold(ctx, hk.ID)
	require.NoError(t, err)

	_, err = f.svc.GetHousehold(ctx, hk.ID)
	assert.True(t, domain.IsNotFound(err))

	for _, id := range []string{r1.ID, r2.ID} {
		r, err := f.svc.GetResident(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, r.HouseholdID, id)
	}
	r, err := f.svc.GetResident(ctx, r3.ID)
	require.NoError(t, err)
	require.NotNil(t, r.HouseholdID)
	assert.Equal(t, other.ID, *r.HouseholdID)
	assert.Len(t, f.store.ExportState().Residents, 3)
}

func TestDuplicateHouseholdCodeLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.household(t, "HK001")
	saves := f.adapter.Saves()
	before := f.store.ExportState()

	_, _, err := f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK001", Address: "elsewhere"})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, before, f.store.ExportState())
	assert.Equal(t, saves, f.adapter.Saves())

	second := f.household(t, "HK002")
	_, _, err = f.svc.UpdateHousehold(ctx, second.ID, HouseholdUpdate{HouseholdCode: domain.Set("HK001")})
	assert.True(t, domain.IsConflict(err))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, _, err := f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK9"})
	assert.True(t, domain.IsValidation(err))

	_, _, err = f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK9", Address: "x", HouseholdStatus: "wealthy"})
	assert.True(t, domain.IsValidation(err))

	_, _, err = f.svc.CreateResident(ctx, domain.Resident{})
	assert.True(t, domain.IsValidation(err))

	_, _, err = f.svc.CreateResident(ctx, domain.Resident{FullName: "Ghost", HouseholdID: domain.Ptr("missing")})
	assert.True(t, domain.IsNotFound(err))

	_, _, err = f.svc.CreateUser(ctx, domain.User{Username: "x", FullName: "x", PasswordHash: "h", Role: "mayor"})
	assert.True(t, domain.IsValidation(err))
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	h := f.household(t, "HK300")
	assert.Equal(t, domain.HouseholdPermanent, h.HouseholdType)
	assert.Equal(t, domain.StatusNormal, h.HouseholdStatus)
	assert.Equal(t, testNow, h.CreatedAt)

	r := f.resident(t, "Defaulted", nil, false)
	assert.Equal(t, domain.DefaultEthnicity, r.Ethnicity)
	assert.Equal(t, domain.ResidencePermanent, r.ResidenceType)
	assert.Equal(t, domain.DefaultResidenceStatus, r.ResidenceStatus)

	u := f.user(t, "plain", "")
	assert.Equal(t, domain.RoleMember, u.Role)
}

func TestUpdatePatchSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	h, _, err := f.svc.CreateHousehold(ctx, domain.Household{
		HouseholdCode: "HK400",
		Address:       "1 Road",
		Area:          domain.Ptr("Tổ 1"),
		Notes:         domain.Ptr("keep me"),
	})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	updated, _, err := f.svc.UpdateHousehold(ctx, h.ID, HouseholdUpdate{Area: domain.Clear[*string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Area)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "keep me", *updated.Notes)
	assert.Equal(t, "1 Road", updated.Address)
	assert.Equal(t, testNow, updated.CreatedAt)
	assert.Equal(t, testNow.Add(time.Hour), updated.UpdatedAt)
}

func TestUsernameUniqueness(t *testing.T) {
	f := newFixture(t)
	f.user(t, "admin", domain.RoleAdmin)
	_, _, err := f.svc.CreateUser(t.Context(), domain.User{Username: "admin", FullName: "Again", PasswordHash: "h"})
	assert.True(t, domain.IsConflict(err))
}

func TestStrictCommitOnSaveFailure(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.household(t, "HK500")
	before := f.store.ExportState()

	boom := errors.New("disk full")
	f.adapter.FailSaves(boom)
	_, _, err := f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK501", Address: "x"})
	require.Error(t, err)
	assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, f.store.ExportState())

	_, err = f.svc.HouseholdByCode(ctx, "HK501")
	assert.True(t, domain.IsNotFound(err))

	f.adapter.FailSaves(nil)
	f.household(t, "HK501")
}

func TestReadsReturnCopies(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	h, _, err := f.svc.CreateHousehold(ctx, domain.Household{HouseholdCode: "HK600", Address: "x", Notes: domain.Ptr("original")})
	require.NoError(t, err)

	*h.Notes = "mutated"
	got, err := f.svc.GetHousehold(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", *got.Notes)

	*got.Notes = "mutated again"
	again, err := f.svc.GetHousehold(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", *again.Notes)
}

func TestActivityLogCap(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	for i := range 600 {
		f.clock.Advance(time.Second)
		_, err := f.svc.LogActivity(ctx, ActivityEntry{UserID: "u", Action: "login", Details: domain.Ptr(string(rune('a' + i%26)))})
		require.NoError(t, err)
	}
	logs := f.store.ExportState().ActivityLogs
	require.Len(t, logs, domain.MaxActivityLogs)
	assert.Equal(t, testNow.Add(101*time.Second), logs[0].CreatedAt)
	assert.Equal(t, testNow.Add(600*time.Second), logs[len(logs)-1].CreatedAt)
	for i := 1; i < len(logs); i++ {
		assert.True(t, logs[i].CreatedAt.After(logs[i-1].CreatedAt))
	}

	recent, err := f.svc.RecentActivity(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, testNow.Add(600*time.Second), recent[0].CreatedAt)
}

func TestLogActivityRequiresAction(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.LogActivity(t.Context(), ActivityEntry{UserID: "u"})
	assert.True(t, domain.IsValidation(err))
}

func TestLoadRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hk := f.household(t, "HK700")
	f.resident(t, "Persisted", &hk.ID, true)
	_, err := f.svc.SetSetting(ctx, "theme", "dark")
	require.NoError(t, err)

	saved, err := f.adapter.Load(ctx)
	require.NoError(t, err)

	reloaded := NewStore(memory.NewStoreWith(saved))
	ok, err := reloaded.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.store.ExportState(), reloaded.ExportState())

	empty := NewStore(memory.NewStore())
	ok, err = empty.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, domain.DefaultSettings(), empty.ExportState().Settings)
}

func TestLoadNormalizesSnapshot(t *testing.T) {
	ctx := context.Background()
	hh := domain.Household{ID: "h1", HouseholdCode: "HK1", Address: "x"}
	logs := make([]domain.ActivityLog, 0, 520)
	for i := range 520 {
		logs = append(logs, domain.ActivityLog{ID: fmt.Sprintf("log-%d", i), Action: "x", CreatedAt: testNow.Add(time.Duration(i) * time.Second)})
	}
	ds := domain.Dataset{
		Households: []domain.Household{hh},
		Residents: []domain.Resident{
			{ID: "r1", FullName: "First head", HouseholdID: domain.Ptr("h1"), IsHouseholdHead: true},
			{ID: "r2", FullName: "Second head", HouseholdID: domain.Ptr("h1"), IsHouseholdHead: true},
			{ID: "r3", FullName: "Dangling", HouseholdID: domain.Ptr("gone")},
		},
		ActivityLogs: logs,
	}
	s := NewStore(memory.NewStoreWith(ds))
	ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	got := s.ExportState()
	assert.Equal(t, domain.DefaultSettings(), got.Settings)
	assert.NotNil(t, got.Users)
	assert.NotNil(t, got.Notifications)
	assert.Equal(t, domain.HouseholdPermanent, got.Households[0].HouseholdType)
	assert.True(t, got.Residents[0].IsHouseholdHead)
	assert.False(t, got.Residents[1].IsHouseholdHead)
	assert.Nil(t, got.Residents[2].HouseholdID)
	require.Len(t, got.ActivityLogs, domain.MaxActivityLogs)
	assert.Equal(t, testNow.Add(20*time.Second), got.ActivityLogs[0].CreatedAt)
}

func TestEmptyStringsMeanUnassigned(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	r, _, err := f.svc.CreateResident(ctx, domain.Resident{
		FullName:       "Blank refs",
		HouseholdID:    domain.Ptr(""),
		CurrentAddress: domain.Ptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, r.HouseholdID)
	assert.Nil(t, r.CurrentAddress)

	hk := f.household(t, "HK800")
	moved, _, err := f.svc.UpdateResident(ctx, r.ID, ResidentUpdate{HouseholdID: domain.Set(&hk.ID)})
	require.NoError(t, err)
	require.NotNil(t, moved.HouseholdID)

	left, _, err := f.svc.UpdateResident(ctx, r.ID, ResidentUpdate{HouseholdID: domain.Set(domain.Ptr(""))})
	require.NoError(t, err)
	assert.Nil(t, left.HouseholdID)
}

func TestLoadKeepsFirstRecordPerID(t *testing.T) {
	ds := domain.Dataset{
		Households: []domain.Household{
			{ID: "h1", HouseholdCode: "HK1", Address: "first"},
			{ID: "h1", HouseholdCode: "HK2", Address: "second"},
		},
		Residents: []domain.Resident{
			{ID: "r1", FullName: "Original"},
			{ID: "r2", FullName: "Other"},
			{ID: "r1", FullName: "Impostor"},
		},
		ActivityLogs: []domain.ActivityLog{
			{ID: "l1", Action: "a", CreatedAt: testNow},
			{ID: "l1", Action: "b", CreatedAt: testNow},
		},
	}
	s := NewStore(memory.NewStoreWith(ds))
	ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	got := s.ExportState()
	require.Len(t, got.Households, 1)
	assert.Equal(t, "first", got.Households[0].Address)
	require.Len(t, got.Residents, 2)
	assert.Equal(t, "Original", got.Residents[0].FullName)
	assert.Equal(t, "Other", got.Residents[1].FullName)
	require.Len(t, got.ActivityLogs, 1)
	assert.Equal(t, "a", got.ActivityLogs[0].Action)
	assert.Len(t, ds.Residents, 3, "input dataset untouched")
}

func TestRestoreRejectsDuplicateIDs(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.household(t, "HK900")
	saves := f.adapter.Saves()

	err := f.store.Restore(ctx, domain.Dataset{
		Users: []domain.User{
			{ID: "u1", Username: "a", FullName: "A", PasswordHash: "h", Role: domain.RoleMember},
			{ID: "u1", Username: "b", FullName: "B", PasswordHash: "h", Role: domain.RoleMember},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, saves, f.adapter.Saves())
	assert.Len(t, f.store.ExportState().Households, 1)
}

func TestBlockingRuleAbortsTransaction(t *testing.T) {
	f := newFixture(t)
	hk := f.household(t, "HK800")
	f.resident(t, "Existing head", &hk.ID, true)
	before := f.store.ExportState()

	// Writing a second head directly bypasses demotion; the rule must veto it.
	res, err := f.store.RunInTransaction(t.Context(), func(tx *Transaction) error {
		r := domain.Resident{ID: "sneaky", FullName: "Sneaky", HouseholdID: &hk.ID, IsHouseholdHead: true, ResidenceType: domain.ResidencePermanent}
		tx.state.residents.put(r.ID, r)
		tx.recordChange(domain.Change{Entity: domain.EntityResident, Action: domain.ActionCreate, After: r})
		return nil
	})
	require.Error(t, err)
	var violation domain.RuleViolationError
	require.ErrorAs(t, err, &violation)
	assert.True(t, res.HasBlocking())
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, before, f.store.ExportState())
}

func TestTransactionWithoutChangesSkipsSave(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.RunInTransaction(t.Context(), func(tx *Transaction) error { return nil })
	require.NoError(t, err)
	assert.Zero(t, f.adapter.Saves())
}

func TestSettings(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	v, err := f.svc.Setting(ctx, "ward_name")
	require.NoError(t, err)
	assert.Equal(t, "Phường Long Trường", v)

	_, err = f.svc.Setting(ctx, "mayor")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.SetSetting(ctx, "mayor", "x")
	assert.True(t, domain.IsValidation(err))

	s, err := f.svc.UpdateSettings(ctx, map[string]string{"theme": "dark", "contact_email": "kp25@example.vn"})
	require.NoError(t, err)
	assert.Equal(t, "dark", s.Theme)
	assert.Equal(t, "kp25@example.vn", s.Public().ContactEmail)

	_, err = f.svc.UpdateSettings(ctx, map[string]string{"theme": "light", "bogus": "x"})
	assert.True(t, domain.IsValidation(err))
	s, err = f.svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", s.Theme)
}

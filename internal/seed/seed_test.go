package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency/internal/auth"
	"residency/internal/core"
	"residency/internal/infra/persistence/memory"
	"residency/pkg/domain"
)

var seedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func fakeHash(p string) (string, error) { return "hash:" + p, nil }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
}

func TestDatasetShape(t *testing.T) {
	ds, err := Dataset(Options{Now: seedNow, NewID: sequentialIDs(), HashPassword: fakeHash})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSettings(), ds.Settings)
	require.Len(t, ds.Users, 4)
	require.Len(t, ds.Households, 5)
	require.Len(t, ds.Residents, 12)
	require.Len(t, ds.Notifications, 2)
	assert.Empty(t, ds.ActivityLogs)

	assert.Equal(t, "hash:admin123", ds.Users[0].PasswordHash)
	assert.Equal(t, "HK001", ds.Households[0].HouseholdCode)

	heads := map[string]int{}
	for _, r := range ds.Residents {
		require.NotNil(t, r.HouseholdID)
		assert.Equal(t, domain.DefaultEthnicity, r.Ethnicity)
		if r.IsHouseholdHead {
			heads[*r.HouseholdID]++
		}
	}
	assert.Len(t, heads, 5)
	for id, n := range heads {
		assert.Equal(t, 1, n, "household %s", id)
	}
	assert.Equal(t, domain.ResidenceTemporary, ds.Residents[8].ResidenceType)
}

func TestDatasetDoesNotAliasTemplates(t *testing.T) {
	ds, err := Dataset(Options{Now: seedNow, HashPassword: fakeHash})
	require.NoError(t, err)
	*ds.Households[0].Area = "changed"

	again, err := Dataset(Options{Now: seedNow, HashPassword: fakeHash})
	require.NoError(t, err)
	assert.Equal(t, "Tổ 1", *again.Households[0].Area)
}

func TestIfEmptySeedsOnce(t *testing.T) {
	ctx := context.Background()
	adapter := memory.NewStore()
	store := core.NewStore(adapter, core.WithClock(func() time.Time { return seedNow }))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, loaded)

	seeded, err := IfEmpty(ctx, store, loaded)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Equal(t, 1, adapter.Saves())

	ds := store.ExportState()
	require.Len(t, ds.Users, 4)
	ok, err := auth.CheckPassword(ds.Users[1].PasswordHash, "chief123")
	require.NoError(t, err)
	assert.True(t, ok)

	seeded, err = IfEmpty(ctx, store, true)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 1, adapter.Saves())
}

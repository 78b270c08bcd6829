package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"residency/pkg/domain"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(domain.RoleAdmin, DeleteEvent))
	assert.True(t, HasPermission(domain.RoleChief, ManageSettings))
	assert.False(t, HasPermission(domain.RolePolice, DeleteResident))
	assert.True(t, HasPermission(domain.RolePolice, ViewSensitiveData))
	assert.False(t, HasPermission(domain.RoleMember, ViewAll))
	assert.False(t, HasPermission(domain.Role("guest"), ViewPublic))
}

func TestCanManage(t *testing.T) {
	cases := []struct {
		role   domain.Role
		entity domain.EntityType
		want   bool
	}{
		{domain.RoleAdmin, domain.EntityNotification, true},
		{domain.RoleChief, domain.EntitySettings, true},
		{domain.RolePolice, domain.EntityHousehold, true},
		{domain.RolePolice, domain.EntityResident, true},
		{domain.RolePolice, domain.EntityNotification, false},
		{domain.RoleMember, domain.EntityResident, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanManage(tc.role, tc.entity), "%s/%s", tc.role, tc.entity)
	}
	assert.True(t, CanDelete(domain.RoleChief))
	assert.False(t, CanDelete(domain.RolePolice))
}

func TestHasRoleAdminBypass(t *testing.T) {
	assert.True(t, HasRole(domain.RoleAdmin, domain.RoleChief))
	assert.True(t, HasRole(domain.RoleChief, domain.RoleChief))
	assert.False(t, HasRole(domain.RoleMember, domain.RoleChief, domain.RolePolice))
}

func TestMaskIDNumber(t *testing.T) {
	id := domain.Ptr("079123456789")
	assert.Equal(t, "***6789", *MaskIDNumber(domain.RoleMember, id))
	assert.Equal(t, "079123456789", *MaskIDNumber(domain.RolePolice, id))
	assert.Nil(t, MaskIDNumber(domain.RoleMember, nil))
	assert.Equal(t, "***12", *MaskIDNumber(domain.RoleMember, domain.Ptr("12")))
}

func TestSeesAudience(t *testing.T) {
	assert.True(t, SeesAudience(domain.RoleMember, domain.TargetMembers))
	assert.False(t, SeesAudience(domain.RoleMember, "staff"))
	assert.True(t, SeesAudience(domain.RolePolice, "staff"))
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, "Trưởng khu phố", RoleName(domain.RoleChief))
	assert.Equal(t, "guest", RoleName("guest"))
	assert.Len(t, Roles, 4)
}

// Package access maps operator roles to the actions they may perform.
package access

import (
	"slices"

	"residency/pkg/domain"
)

// Permission names a guarded capability.
type Permission string

// Known permissions.
const (
	All                Permission = "*"
	ViewAll            Permission = "view_all"
	ViewPublic         Permission = "view_public"
	ViewNotifications  Permission = "view_notifications"
	ViewEvents         Permission = "view_events"
	ViewOwnData        Permission = "view_own_data"
	ViewStatistics     Permission = "view_statistics"
	ViewSensitiveData  Permission = "view_sensitive_data"
	ExportData         Permission = "export_data"
	ManageSettings     Permission = "manage_settings"
	CreateHousehold    Permission = "create_household"
	EditHousehold      Permission = "edit_household"
	DeleteHousehold    Permission = "delete_household"
	CreateResident     Permission = "create_resident"
	EditResident       Permission = "edit_resident"
	DeleteResident     Permission = "delete_resident"
	CreateNotification Permission = "create_notification"
	EditNotification   Permission = "edit_notification"
	DeleteNotification Permission = "delete_notification"
	CreateEvent        Permission = "create_event"
	EditEvent          Permission = "edit_event"
	DeleteEvent        Permission = "delete_event"
)

var permissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {All},
	domain.RoleChief: {
		ViewAll, CreateHousehold, EditHousehold, DeleteHousehold,
		CreateResident, EditResident, DeleteResident,
		CreateNotification, EditNotification, DeleteNotification,
		CreateEvent, EditEvent, DeleteEvent,
		ViewStatistics, ExportData, ManageSettings,
	},
	domain.RolePolice: {
		ViewAll, CreateHousehold, EditHousehold,
		CreateResident, EditResident,
		ViewStatistics, ExportData, ViewSensitiveData,
	},
	domain.RoleMember: {ViewPublic, ViewNotifications, ViewEvents, ViewOwnData},
}

var roleNames = map[domain.Role]string{
	domain.RoleAdmin:  "Quản trị viên",
	domain.RoleChief:  "Trưởng khu phố",
	domain.RolePolice: "Công an khu vực",
	domain.RoleMember: "Thành viên",
}

// Roles lists every role in display order.
var Roles = []domain.Role{domain.RoleAdmin, domain.RoleChief, domain.RolePolice, domain.RoleMember}

// RoleName returns the display label for role, or the raw value when unknown.
func RoleName(role domain.Role) string {
	if name, ok := roleNames[role]; ok {
		return name
	}
	return string(role)
}

// Permissions returns a copy of the permissions granted to role.
func Permissions(role domain.Role) []Permission {
	return slices.Clone(permissions[role])
}

// HasPermission reports whether role holds p, directly or through the
// wildcard.
func HasPermission(role domain.Role, p Permission) bool {
	perms := permissions[role]
	return slices.Contains(perms, All) || slices.Contains(perms, p)
}

// HasRole reports whether role is one of allowed. Admin always passes.
func HasRole(role domain.Role, allowed ...domain.Role) bool {
	return role == domain.RoleAdmin || slices.Contains(allowed, role)
}

// CanManage reports whether role may create or edit records of entity. Police
// may manage households and residents only.
func CanManage(role domain.Role, entity domain.EntityType) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleChief:
		return true
	case domain.RolePolice:
		return entity == domain.EntityHousehold || entity == domain.EntityResident
	}
	return false
}

// CanDelete reports whether role may delete households and residents.
func CanDelete(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleChief
}

// SeesAudience reports whether role may read notifications addressed to
// target. Members only see announcements for everyone or for members.
func SeesAudience(role domain.Role, target string) bool {
	if role != domain.RoleMember {
		return true
	}
	return target == domain.TargetAll || target == domain.TargetMembers
}

// MaskIDNumber hides all but the last four characters of an identity number
// from members.
func MaskIDNumber(role domain.Role, id *string) *string {
	if role != domain.RoleMember || id == nil || *id == "" {
		return id
	}
	runes := []rune(*id)
	if len(runes) > 4 {
		runes = runes[len(runes)-4:]
	}
	masked := "***" + string(runes)
	return &masked
}

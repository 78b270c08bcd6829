package core

import (
	"time"

	"residency/pkg/domain"
)

// HouseholdUpdate lists the household fields a caller may change. Unset
// fields keep their stored value.
type HouseholdUpdate struct {
	HouseholdCode   domain.Patch[string]                 `json:"household_code"`
	Address         domain.Patch[string]                 `json:"address"`
	HouseNumber     domain.Patch[*string]                `json:"house_number"`
	Lane            domain.Patch[*string]                `json:"lane"`
	Street          domain.Patch[*string]                `json:"street"`
	Area            domain.Patch[*string]                `json:"area"`
	HouseholdType   domain.Patch[domain.HouseholdType]   `json:"household_type"`
	HouseholdStatus domain.Patch[domain.HouseholdStatus] `json:"household_status"`
	Phone           domain.Patch[*string]                `json:"phone"`
	Email           domain.Patch[*string]                `json:"email"`
	Notes           domain.Patch[*string]                `json:"notes"`
}

func (u HouseholdUpdate) apply(h *domain.Household) {
	u.HouseholdCode.ApplyTo(&h.HouseholdCode)
	u.Address.ApplyTo(&h.Address)
	u.HouseNumber.ApplyTo(&h.HouseNumber)
	u.Lane.ApplyTo(&h.Lane)
	u.Street.ApplyTo(&h.Street)
	u.Area.ApplyTo(&h.Area)
	u.HouseholdType.ApplyTo(&h.HouseholdType)
	u.HouseholdStatus.ApplyTo(&h.HouseholdStatus)
	u.Phone.ApplyTo(&h.Phone)
	u.Email.ApplyTo(&h.Email)
	u.Notes.ApplyTo(&h.Notes)
}

// ResidentUpdate lists the resident fields a caller may change. Setting
// HouseholdID to nil unassigns the resident.
type ResidentUpdate struct {
	HouseholdID     domain.Patch[*string]              `json:"household_id"`
	FullName        domain.Patch[string]               `json:"full_name"`
	BirthDate       domain.Patch[*string]              `json:"birth_date"`
	Gender          domain.Patch[*string]              `json:"gender"`
	IDNumber        domain.Patch[*string]              `json:"id_number"`
	Phone           domain.Patch[*string]              `json:"phone"`
	Email           domain.Patch[*string]              `json:"email"`
	Occupation      domain.Patch[*string]              `json:"occupation"`
	Workplace       domain.Patch[*string]              `json:"workplace"`
	Education       domain.Patch[*string]              `json:"education"`
	Religion        domain.Patch[*string]              `json:"religion"`
	Ethnicity       domain.Patch[string]               `json:"ethnicity"`
	Relationship    domain.Patch[*string]              `json:"relationship"`
	IsHouseholdHead domain.Patch[bool]                 `json:"is_household_head"`
	ResidenceType   domain.Patch[domain.ResidenceType] `json:"residence_type"`
	ResidenceStatus domain.Patch[string]               `json:"residence_status"`
	CurrentAddress  domain.Patch[*string]              `json:"current_address"`
	Notes           domain.Patch[*string]              `json:"notes"`
}

func (u ResidentUpdate) apply(r *domain.Resident) {
	u.HouseholdID.ApplyTo(&r.HouseholdID)
	u.FullName.ApplyTo(&r.FullName)
	u.BirthDate.ApplyTo(&r.BirthDate)
	u.Gender.ApplyTo(&r.Gender)
	u.IDNumber.ApplyTo(&r.IDNumber)
	u.Phone.ApplyTo(&r.Phone)
	u.Email.ApplyTo(&r.Email)
	u.Occupation.ApplyTo(&r.Occupation)
	u.Workplace.ApplyTo(&r.Workplace)
	u.Education.ApplyTo(&r.Education)
	u.Religion.ApplyTo(&r.Religion)
	u.Ethnicity.ApplyTo(&r.Ethnicity)
	u.Relationship.ApplyTo(&r.Relationship)
	u.IsHouseholdHead.ApplyTo(&r.IsHouseholdHead)
	u.ResidenceType.ApplyTo(&r.ResidenceType)
	u.ResidenceStatus.ApplyTo(&r.ResidenceStatus)
	u.CurrentAddress.ApplyTo(&r.CurrentAddress)
	u.Notes.ApplyTo(&r.Notes)
}

// UserUpdate lists profile fields. Credentials change through dedicated
// operations.
type UserUpdate struct {
	FullName domain.Patch[string]      `json:"full_name"`
	Phone    domain.Patch[*string]     `json:"phone"`
	Email    domain.Patch[*string]     `json:"email"`
	Role     domain.Patch[domain.Role] `json:"role"`
	IsActive domain.Patch[bool]        `json:"is_active"`
}

func (u UserUpdate) apply(user *domain.User) {
	u.FullName.ApplyTo(&user.FullName)
	u.Phone.ApplyTo(&user.Phone)
	u.Email.ApplyTo(&user.Email)
	u.Role.ApplyTo(&user.Role)
	u.IsActive.ApplyTo(&user.IsActive)
}

// NotificationUpdate lists the notification fields a caller may change.
type NotificationUpdate struct {
	Title      domain.Patch[string]                  `json:"title"`
	Content    domain.Patch[string]                  `json:"content"`
	Type       domain.Patch[domain.NotificationType] `json:"type"`
	Priority   domain.Patch[domain.Priority]         `json:"priority"`
	TargetType domain.Patch[string]                  `json:"target_type"`
	IsPinned   domain.Patch[bool]                    `json:"is_pinned"`
	ExpiresAt  domain.Patch[*time.Time]              `json:"expires_at"`
}

func (u NotificationUpdate) apply(n *domain.Notification) {
	u.Title.ApplyTo(&n.Title)
	u.Content.ApplyTo(&n.Content)
	u.Type.ApplyTo(&n.Type)
	u.Priority.ApplyTo(&n.Priority)
	u.TargetType.ApplyTo(&n.TargetType)
	u.IsPinned.ApplyTo(&n.IsPinned)
	u.ExpiresAt.ApplyTo(&n.ExpiresAt)
}

// ActivityEntry is the input for appending to the audit trail.
type ActivityEntry struct {
	UserID     string  `json:"user_id"`
	Action     string  `json:"action"`
	EntityType *string `json:"entity_type"`
	EntityID   *string `json:"entity_id"`
	Details    *string `json:"details"`
}

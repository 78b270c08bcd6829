// Package domain defines the persistent records, value types, error kinds and
// rule evaluation primitives shared by the residency store and its adapters.
package domain

import "time"

// EntityType identifies the type of record stored in the residency domain.
type EntityType string

// Supported entity type identifiers used in Change records, errors and
// activity log entries.
const (
	// EntityUser identifies an operator account.
	EntityUser EntityType = "user"
	// EntityHousehold identifies a residence unit.
	EntityHousehold EntityType = "household"
	// EntityResident identifies a person record.
	EntityResident EntityType = "resident"
	// EntityNotification identifies an announcement.
	EntityNotification EntityType = "notification"
	// EntityActivityLog identifies an audit trail entry.
	EntityActivityLog EntityType = "activity_log"
	// EntitySettings identifies the neighborhood settings singleton.
	EntitySettings EntityType = "settings"
)

// Role enumerates operator roles consumed by the access policy.
type Role string

// Operator roles.
const (
	RoleAdmin  Role = "admin"
	RoleChief  Role = "chief"
	RolePolice Role = "police"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleChief, RolePolice, RoleMember:
		return true
	}
	return false
}

// HouseholdType distinguishes permanent and temporary registrations.
type HouseholdType string

// Household registration types.
const (
	HouseholdPermanent HouseholdType = "permanent"
	HouseholdTemporary HouseholdType = "temporary"
)

// Valid reports whether t is a known household type.
func (t HouseholdType) Valid() bool {
	return t == HouseholdPermanent || t == HouseholdTemporary
}

// HouseholdStatus captures the administrative classification of a household.
type HouseholdStatus string

// Household statuses.
const (
	StatusNormal   HouseholdStatus = "normal"
	StatusBusiness HouseholdStatus = "business"
	StatusRental   HouseholdStatus = "rental"
	StatusPoor     HouseholdStatus = "poor"
	StatusNearPoor HouseholdStatus = "near_poor"
	StatusPolicy   HouseholdStatus = "policy"
)

// Valid reports whether s is a known household status.
func (s HouseholdStatus) Valid() bool {
	switch s {
	case StatusNormal, StatusBusiness, StatusRental, StatusPoor, StatusNearPoor, StatusPolicy:
		return true
	}
	return false
}

// ResidenceType is the resident-level registration type.
type ResidenceType string

// Resident registration types.
const (
	ResidencePermanent ResidenceType = "permanent"
	ResidenceTemporary ResidenceType = "temporary"
)

// Valid reports whether t is a known residence type.
func (t ResidenceType) Valid() bool {
	return t == ResidencePermanent || t == ResidenceTemporary
}

// NotificationType classifies announcements.
type NotificationType string

// Notification types.
const (
	NotificationGeneral NotificationType = "general"
	NotificationFee     NotificationType = "fee"
	NotificationMeeting NotificationType = "meeting"
	NotificationEvent   NotificationType = "event"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationGeneral, NotificationFee, NotificationMeeting, NotificationEvent:
		return true
	}
	return false
}

// Priority enumerates notification priorities.
type Priority string

// Notification priorities.
const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityHigh
}

// Audience targets recognised for notifications.
const (
	TargetAll     = "all"
	TargetMembers = "members"
)

// Defaults applied when optional fields are omitted on create.
const (
	DefaultEthnicity       = "Kinh"
	DefaultResidenceStatus = "present"
)

// User is an operator account. PasswordHash is never produced by the store;
// callers hash before writing.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone"`
	Email        *string   `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	APIKey       *string   `json:"gemini_api_key"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Household is a residence unit. Member counts and head names are derived at
// query time and never stored.
type Household struct {
	ID              string          `json:"id"`
	HouseholdCode   string          `json:"household_code"`
	Address         string          `json:"address"`
	HouseNumber     *string         `json:"house_number"`
	Lane            *string         `json:"lane"`
	Street          *string         `json:"street"`
	Area            *string         `json:"area"`
	HouseholdType   HouseholdType   `json:"household_type"`
	HouseholdStatus HouseholdStatus `json:"household_status"`
	Phone           *string         `json:"phone"`
	Email           *string         `json:"email"`
	Notes           *string         `json:"notes"`
	CreatedBy       *string         `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Resident is a person record optionally attached to a household. BirthDate
// is kept as the ISO calendar date string it was entered with.
type Resident struct {
	ID              string        `json:"id"`
	HouseholdID     *string       `json:"household_id"`
	FullName        string        `json:"full_name"`
	BirthDate       *string       `json:"birth_date"`
	Gender          *string       `json:"gender"`
	IDNumber        *string       `json:"id_number"`
	Phone           *string       `json:"phone"`
	Email           *string       `json:"email"`
	Occupation      *string       `json:"occupation"`
	Workplace       *string       `json:"workplace"`
	Education       *string       `json:"education"`
	Religion        *string       `json:"religion"`
	Ethnicity       string        `json:"ethnicity"`
	Relationship    *string       `json:"relationship"`
	IsHouseholdHead bool          `json:"is_household_head"`
	ResidenceType   ResidenceType `json:"residence_type"`
	ResidenceStatus string        `json:"residence_status"`
	CurrentAddress  *string       `json:"current_address"`
	Notes           *string       `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// InHousehold reports whether the resident references householdID.
func (r Resident) InHousehold(householdID string) bool {
	return r.HouseholdID != nil && *r.HouseholdID == householdID
}

// Notification is an announcement. ExpiresAt in the past hides it from
// default listings without deleting it.
type Notification struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	Type          NotificationType `json:"type"`
	Priority      Priority         `json:"priority"`
	TargetType    string           `json:"target_type"`
	IsPinned      bool             `json:"is_pinned"`
	ExpiresAt     *time.Time       `json:"expires_at"`
	CreatedBy     *string          `json:"created_by"`
	CreatedByName *string          `json:"created_by_name"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ActiveAt reports whether the notification is still visible at now.
func (n Notification) ActiveAt(now time.Time) bool {
	return n.ExpiresAt == nil || n.ExpiresAt.After(now)
}

// ActivityLog is a bounded audit trail entry.
type ActivityLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	EntityType *string   `json:"entity_type"`
	EntityID   *string   `json:"entity_id"`
	Details    *string   `json:"details"`
	UserName   *string   `json:"user_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// MaxActivityLogs bounds the retained audit trail.
const MaxActivityLogs = 500

// Settings is the neighborhood configuration singleton.
type Settings struct {
	NeighborhoodName string `json:"neighborhood_name"`
	WardName         string `json:"ward_name"`
	DistrictName     string `json:"district_name"`
	CityName         string `json:"city_name"`
	ContactPhone     string `json:"contact_phone"`
	ContactEmail     string `json:"contact_email"`
	Theme            string `json:"theme"`
}

// DefaultSettings returns the settings a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		NeighborhoodName: "Khu phố 25 - Long Trường",
		WardName:         "Phường Long Trường",
		DistrictName:     "TP. Thủ Đức",
		CityName:         "TP. Hồ Chí Minh",
		Theme:            "light",
	}
}

// SettingKeys lists the recognised setting names in display order.
var SettingKeys = []string{
	"neighborhood_name", "ward_name", "district_name", "city_name",
	"contact_phone", "contact_email", "theme",
}

// Get returns the value of a named setting.
func (s Settings) Get(key string) (string, bool) {
	if p := s.field(key); p != nil {
		return *p, true
	}
	return "", false
}

// Set overwrites a named setting. It returns false for unknown keys.
func (s *Settings) Set(key, value string) bool {
	p := s.field(key)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (s *Settings) field(key string) *string {
	switch key {
	case "neighborhood_name":
		return &s.NeighborhoodName
	case "ward_name":
		return &s.WardName
	case "district_name":
		return &s.DistrictName
	case "city_name":
		return &s.CityName
	case "contact_phone":
		return &s.ContactPhone
	case "contact_email":
		return &s.ContactEmail
	case "theme":
		return &s.Theme
	}
	return nil
}

// PublicInfo is the unauthenticated subset of Settings.
type PublicInfo struct {
	NeighborhoodName string `json:"neighborhood_name"`
	WardName         string `json:"ward_name"`
	DistrictName     string `json:"district_name"`
	CityName         string `json:"city_name"`
	ContactPhone     string `json:"contact_phone"`
	ContactEmail     string `json:"contact_email"`
}

// Public projects the settings onto the public subset.
func (s Settings) Public() PublicInfo {
	return PublicInfo{
		NeighborhoodName: s.NeighborhoodName,
		WardName:         s.WardName,
		DistrictName:     s.DistrictName,
		CityName:         s.CityName,
		ContactPhone:     s.ContactPhone,
		ContactEmail:     s.ContactEmail,
	}
}

// Change describes a mutation captured within a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}

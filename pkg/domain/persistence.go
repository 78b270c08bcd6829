package domain

import (
	"context"
	"errors"
)

// Dataset is the durable snapshot document. Collections keep insertion order.
type Dataset struct {
	Settings      Settings       `json:"settings"`
	Users         []User         `json:"users"`
	Households    []Household    `json:"households"`
	Residents     []Resident     `json:"residents"`
	Notifications []Notification `json:"notifications"`
	ActivityLogs  []ActivityLog  `json:"activity_logs"`
}

// ErrNoDataset is returned by Adapter.Load when nothing has been saved yet.
var ErrNoDataset = errors.New("no dataset stored")

// Adapter is the persistence collaborator. Save must be durable before it
// returns nil.
type Adapter interface {
	Load(ctx context.Context) (Dataset, error)
	Save(ctx context.Context, ds Dataset) error
	Close() error
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := Dataset{Settings: d.Settings}
	out.Users = cloneSlice(d.Users, CloneUser)
	out.Households = cloneSlice(d.Households, CloneHousehold)
	out.Residents = cloneSlice(d.Residents, CloneResident)
	out.Notifications = cloneSlice(d.Notifications, CloneNotification)
	out.ActivityLogs = cloneSlice(d.ActivityLogs, CloneActivityLog)
	return out
}

func cloneSlice[T any](in []T, fn func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// CloneUser deep-copies a user.
func CloneUser(u User) User {
	cp := u
	cp.Phone = cloneStr(u.Phone)
	cp.Email = cloneStr(u.Email)
	cp.APIKey = cloneStr(u.APIKey)
	return cp
}

// CloneHousehold deep-copies a household.
func CloneHousehold(h Household) Household {
	cp := h
	cp.HouseNumber = cloneStr(h.HouseNumber)
	cp.Lane = cloneStr(h.Lane)
	cp.Street = cloneStr(h.Street)
	cp.Area = cloneStr(h.Area)
	cp.Phone = cloneStr(h.Phone)
	cp.Email = cloneStr(h.Email)
	cp.Notes = cloneStr(h.Notes)
	cp.CreatedBy = cloneStr(h.CreatedBy)
	return cp
}

// CloneResident deep-copies a resident.
func CloneResident(r Resident) Resident {
	cp := r
	cp.HouseholdID = cloneStr(r.HouseholdID)
	cp.BirthDate = cloneStr(r.BirthDate)
	cp.Gender = cloneStr(r.Gender)
	cp.IDNumber = cloneStr(r.IDNumber)
	cp.Phone = cloneStr(r.Phone)
	cp.Email = cloneStr(r.Email)
	cp.Occupation = cloneStr(r.Occupation)
	cp.Workplace = cloneStr(r.Workplace)
	cp.Education = cloneStr(r.Education)
	cp.Religion = cloneStr(r.Religion)
	cp.Relationship = cloneStr(r.Relationship)
	cp.CurrentAddress = cloneStr(r.CurrentAddress)
	cp.Notes = cloneStr(r.Notes)
	return cp
}

// CloneNotification deep-copies a notification.
func CloneNotification(n Notification) Notification {
	cp := n
	if n.ExpiresAt != nil {
		t := *n.ExpiresAt
		cp.ExpiresAt = &t
	}
	cp.CreatedBy = cloneStr(n.CreatedBy)
	cp.CreatedByName = cloneStr(n.CreatedByName)
	return cp
}

// CloneActivityLog deep-copies an activity log entry.
func CloneActivityLog(l ActivityLog) ActivityLog {
	cp := l
	cp.EntityType = cloneStr(l.EntityType)
	cp.EntityID = cloneStr(l.EntityID)
	cp.Details = cloneStr(l.Details)
	cp.UserName = cloneStr(l.UserName)
	return cp
}

package core

import (
	"time"

	"residency/pkg/domain"
)

// View is a read-only window over a store generation. Every accessor returns
// copies, so callers may keep results after the view callback returns.
type View struct {
	state *state
	now   time.Time
}

var _ domain.RuleView = View{}

// Now is the clock reading taken when the view was opened.
func (v View) Now() time.Time { return v.now }

// Settings returns the neighborhood settings.
func (v View) Settings() domain.Settings { return v.state.settings }

// ListUsers returns users in insertion order.
func (v View) ListUsers() []domain.User { return v.state.users.list(domain.CloneUser) }

// ListHouseholds returns households in insertion order.
func (v View) ListHouseholds() []domain.Household {
	return v.state.households.list(domain.CloneHousehold)
}

// ListResidents returns residents in insertion order.
func (v View) ListResidents() []domain.Resident {
	return v.state.residents.list(domain.CloneResident)
}

// ListNotifications returns notifications in insertion order.
func (v View) ListNotifications() []domain.Notification {
	return v.state.notifications.list(domain.CloneNotification)
}

// ListActivityLogs returns the retained audit trail, oldest first.
func (v View) ListActivityLogs() []domain.ActivityLog {
	return v.state.logs.list(domain.CloneActivityLog)
}

// FindUser looks up a user by id.
func (v View) FindUser(id string) (domain.User, bool) {
	u, ok := v.state.users.get(id)
	if !ok {
		return domain.User{}, false
	}
	return domain.CloneUser(u), true
}

// FindUserByUsername looks up a user by exact username.
func (v View) FindUserByUsername(username string) (domain.User, bool) {
	var (
		found domain.User
		ok    bool
	)
	v.state.users.each(func(_ string, u domain.User) bool {
		if u.Username == username {
			found, ok = domain.CloneUser(u), true
			return false
		}
		return true
	})
	return found, ok
}

// FindHousehold looks up a household by id.
func (v View) FindHousehold(id string) (domain.Household, bool) {
	h, ok := v.state.households.get(id)
	if !ok {
		return domain.Household{}, false
	}
	return domain.CloneHousehold(h), true
}

// FindHouseholdByCode looks up a household by its exact code.
func (v View) FindHouseholdByCode(code string) (domain.Household, bool) {
	var (
		found domain.Household
		ok    bool
	)
	v.state.households.each(func(_ string, h domain.Household) bool {
		if h.HouseholdCode == code {
			found, ok = domain.CloneHousehold(h), true
			return false
		}
		return true
	})
	return found, ok
}

// FindResident looks up a resident by id.
func (v View) FindResident(id string) (domain.Resident, bool) {
	r, ok := v.state.residents.get(id)
	if !ok {
		return domain.Resident{}, false
	}
	return domain.CloneResident(r), true
}

// FindNotification looks up a notification by id.
func (v View) FindNotification(id string) (domain.Notification, bool) {
	n, ok := v.state.notifications.get(id)
	if !ok {
		return domain.Notification{}, false
	}
	return domain.CloneNotification(n), true
}

// CountResidents returns the number of stored residents.
func (v View) CountResidents() int { return v.state.residents.len() }

// CountHouseholds returns the number of stored households.
func (v View) CountHouseholds() int { return v.state.households.len() }

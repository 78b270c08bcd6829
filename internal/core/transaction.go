package core

import (
	"fmt"
	"time"

	"residency/pkg/domain"
)

// Transaction is a mutation set applied to a cloned store state.
type Transaction struct {
	store   *Store
	state   state
	changes []domain.Change
	now     time.Time
}

func (tx *Transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// View returns a read-only view over the transactional state.
func (tx *Transaction) View() View {
	return View{state: &tx.state, now: tx.now}
}

// Now is the timestamp stamped on every record written by the transaction.
func (tx *Transaction) Now() time.Time { return tx.now }

// Changes returns the mutations recorded so far.
func (tx *Transaction) Changes() []domain.Change {
	return append([]domain.Change(nil), tx.changes...)
}

// CreateUser stores a new operator account.
func (tx *Transaction) CreateUser(u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = tx.store.idFn()
	}
	if tx.state.users.has(u.ID) {
		return domain.User{}, domain.Conflict(domain.EntityUser, "id", u.ID)
	}
	if u.Role == "" {
		u.Role = domain.RoleMember
	}
	if err := validateUser(u); err != nil {
		return domain.User{}, err
	}
	if err := tx.ensureUniqueUsername(u.Username, u.ID); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.users.put(u.ID, domain.CloneUser(u))
	tx.recordChange(domain.Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: domain.CloneUser(u)})
	return domain.CloneUser(u), nil
}

// UpdateUser merges profile changes onto an existing user.
func (tx *Transaction) UpdateUser(id string, upd UserUpdate) (domain.User, error) {
	return tx.mutateUser(id, func(u *domain.User) error {
		upd.apply(u)
		return validateUser(*u)
	})
}

// SetUserPassword replaces the stored password hash.
func (tx *Transaction) SetUserPassword(id, hash string) (domain.User, error) {
	return tx.mutateUser(id, func(u *domain.User) error {
		if hash == "" {
			return domain.Invalid(domain.EntityUser, "password", "password hash is required")
		}
		u.PasswordHash = hash
		return nil
	})
}

// SetUserAPIKey sets or clears the user's external service key.
func (tx *Transaction) SetUserAPIKey(id string, key *string) (domain.User, error) {
	return tx.mutateUser(id, func(u *domain.User) error {
		u.APIKey = key
		return nil
	})
}

func (tx *Transaction) mutateUser(id string, mutator func(*domain.User) error) (domain.User, error) {
	current, ok := tx.state.users.get(id)
	if !ok {
		return domain.User{}, domain.NotFound(domain.EntityUser, id)
	}
	before := domain.CloneUser(current)
	if err := mutator(&current); err != nil {
		return domain.User{}, err
	}
	if err := tx.ensureUniqueUsername(current.Username, id); err != nil {
		return domain.User{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.users.put(id, domain.CloneUser(current))
	tx.recordChange(domain.Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: domain.CloneUser(current)})
	return domain.CloneUser(current), nil
}

// DeleteUser removes an operator account.
func (tx *Transaction) DeleteUser(id string) error {
	current, ok := tx.state.users.get(id)
	if !ok {
		return domain.NotFound(domain.EntityUser, id)
	}
	tx.state.users.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityUser, Action: domain.ActionDelete, Before: domain.CloneUser(current)})
	return nil
}

func (tx *Transaction) ensureUniqueUsername(username, selfID string) error {
	var conflict bool
	tx.state.users.each(func(id string, u domain.User) bool {
		if id != selfID && u.Username == username {
			conflict = true
			return false
		}
		return true
	})
	if conflict {
		return domain.Conflict(domain.EntityUser, "username", username)
	}
	return nil
}

// CreateHousehold stores a new household.
func (tx *Transaction) CreateHousehold(h domain.Household) (domain.Household, error) {
	if h.ID == "" {
		h.ID = tx.store.idFn()
	}
	if tx.state.households.has(h.ID) {
		return domain.Household{}, domain.Conflict(domain.EntityHousehold, "id", h.ID)
	}
	applyHouseholdDefaults(&h)
	if err := validateHousehold(h); err != nil {
		return domain.Household{}, err
	}
	if err := tx.ensureUniqueHouseholdCode(h.HouseholdCode, h.ID); err != nil {
		return domain.Household{}, err
	}
	h.CreatedAt = tx.now
	h.UpdatedAt = tx.now
	tx.state.households.put(h.ID, domain.CloneHousehold(h))
	tx.recordChange(domain.Change{Entity: domain.EntityHousehold, Action: domain.ActionCreate, After: domain.CloneHousehold(h)})
	return domain.CloneHousehold(h), nil
}

// UpdateHousehold merges changes onto an existing household.
func (tx *Transaction) UpdateHousehold(id string, upd HouseholdUpdate) (domain.Household, error) {
	current, ok := tx.state.households.get(id)
	if !ok {
		return domain.Household{}, domain.NotFound(domain.EntityHousehold, id)
	}
	before := domain.CloneHousehold(current)
	upd.apply(&current)
	applyHouseholdDefaults(&current)
	if err := validateHousehold(current); err != nil {
		return domain.Household{}, err
	}
	if err := tx.ensureUniqueHouseholdCode(current.HouseholdCode, id); err != nil {
		return domain.Household{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.households.put(id, domain.CloneHousehold(current))
	tx.recordChange(domain.Change{Entity: domain.EntityHousehold, Action: domain.ActionUpdate, Before: before, After: domain.CloneHousehold(current)})
	return domain.CloneHousehold(current), nil
}

// DeleteHousehold removes a household and unassigns every resident that
// referenced it. Residents themselves are kept.
func (tx *Transaction) DeleteHousehold(id string) (int, error) {
	current, ok := tx.state.households.get(id)
	if !ok {
		return 0, domain.NotFound(domain.EntityHousehold, id)
	}
	var unassigned []string
	tx.state.residents.each(func(rid string, r domain.Resident) bool {
		if r.InHousehold(id) {
			unassigned = append(unassigned, rid)
		}
		return true
	})
	for _, rid := range unassigned {
		r, _ := tx.state.residents.get(rid)
		before := domain.CloneResident(r)
		r.HouseholdID = nil
		r.UpdatedAt = tx.now
		tx.state.residents.put(rid, r)
		tx.recordChange(domain.Change{Entity: domain.EntityResident, Action: domain.ActionUpdate, Before: before, After: domain.CloneResident(r)})
	}
	tx.state.households.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityHousehold, Action: domain.ActionDelete, Before: domain.CloneHousehold(current)})
	return len(unassigned), nil
}

func (tx *Transaction) ensureUniqueHouseholdCode(code, selfID string) error {
	var conflict bool
	tx.state.households.each(func(id string, h domain.Household) bool {
		if id != selfID && h.HouseholdCode == code {
			conflict = true
			return false
		}
		return true
	})
	if conflict {
		return domain.Conflict(domain.EntityHousehold, "household_code", code)
	}
	return nil
}

// CreateResident stores a new resident. A head flag demotes every other head
// of the same household within this transaction.
func (tx *Transaction) CreateResident(r domain.Resident) (domain.Resident, error) {
	if r.ID == "" {
		r.ID = tx.store.idFn()
	}
	if tx.state.residents.has(r.ID) {
		return domain.Resident{}, domain.Conflict(domain.EntityResident, "id", r.ID)
	}
	applyResidentDefaults(&r)
	if err := tx.validateResident(r); err != nil {
		return domain.Resident{}, err
	}
	tx.demoteHeads(r)
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.residents.put(r.ID, domain.CloneResident(r))
	tx.recordChange(domain.Change{Entity: domain.EntityResident, Action: domain.ActionCreate, After: domain.CloneResident(r)})
	return domain.CloneResident(r), nil
}

// UpdateResident merges changes onto an existing resident, demoting other
// heads when the result is a household head.
func (tx *Transaction) UpdateResident(id string, upd ResidentUpdate) (domain.Resident, error) {
	current, ok := tx.state.residents.get(id)
	if !ok {
		return domain.Resident{}, domain.NotFound(domain.EntityResident, id)
	}
	before := domain.CloneResident(current)
	upd.apply(&current)
	applyResidentDefaults(&current)
	current.ID = id
	if err := tx.validateResident(current); err != nil {
		return domain.Resident{}, err
	}
	tx.demoteHeads(current)
	current.UpdatedAt = tx.now
	tx.state.residents.put(id, domain.CloneResident(current))
	tx.recordChange(domain.Change{Entity: domain.EntityResident, Action: domain.ActionUpdate, Before: before, After: domain.CloneResident(current)})
	return domain.CloneResident(current), nil
}

// DeleteResident removes a resident.
func (tx *Transaction) DeleteResident(id string) error {
	current, ok := tx.state.residents.get(id)
	if !ok {
		return domain.NotFound(domain.EntityResident, id)
	}
	tx.state.residents.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityResident, Action: domain.ActionDelete, Before: domain.CloneResident(current)})
	return nil
}

func (tx *Transaction) validateResident(r domain.Resident) error {
	if r.FullName == "" {
		return domain.Invalid(domain.EntityResident, "full_name", "full_name is required")
	}
	if !r.ResidenceType.Valid() {
		return domain.Invalid(domain.EntityResident, "residence_type", fmt.Sprintf("unknown residence_type %q", r.ResidenceType))
	}
	if r.HouseholdID != nil && !tx.state.households.has(*r.HouseholdID) {
		return domain.NotFound(domain.EntityHousehold, *r.HouseholdID)
	}
	return nil
}

// demoteHeads clears the head flag on every other resident of r's household
// when r is written as head.
func (tx *Transaction) demoteHeads(r domain.Resident) {
	if !r.IsHouseholdHead || r.HouseholdID == nil {
		return
	}
	var demoted []string
	tx.state.residents.each(func(id string, other domain.Resident) bool {
		if id != r.ID && other.IsHouseholdHead && other.InHousehold(*r.HouseholdID) {
			demoted = append(demoted, id)
		}
		return true
	})
	for _, id := range demoted {
		other, _ := tx.state.residents.get(id)
		before := domain.CloneResident(other)
		other.IsHouseholdHead = false
		other.UpdatedAt = tx.now
		tx.state.residents.put(id, other)
		tx.recordChange(domain.Change{Entity: domain.EntityResident, Action: domain.ActionUpdate, Before: before, After: domain.CloneResident(other)})
	}
}

// CreateNotification stores a new announcement. The creator name is resolved
// from the users collection when not supplied.
func (tx *Transaction) CreateNotification(n domain.Notification) (domain.Notification, error) {
	if n.ID == "" {
		n.ID = tx.store.idFn()
	}
	if tx.state.notifications.has(n.ID) {
		return domain.Notification{}, domain.Conflict(domain.EntityNotification, "id", n.ID)
	}
	applyNotificationDefaults(&n)
	if err := validateNotification(n); err != nil {
		return domain.Notification{}, err
	}
	if n.CreatedByName == nil && n.CreatedBy != nil {
		if creator, ok := tx.state.users.get(*n.CreatedBy); ok {
			n.CreatedByName = domain.Ptr(creator.FullName)
		}
	}
	n.CreatedAt = tx.now
	tx.state.notifications.put(n.ID, domain.CloneNotification(n))
	tx.recordChange(domain.Change{Entity: domain.EntityNotification, Action: domain.ActionCreate, After: domain.CloneNotification(n)})
	return domain.CloneNotification(n), nil
}

// UpdateNotification merges changes onto an existing announcement.
func (tx *Transaction) UpdateNotification(id string, upd NotificationUpdate) (domain.Notification, error) {
	current, ok := tx.state.notifications.get(id)
	if !ok {
		return domain.Notification{}, domain.NotFound(domain.EntityNotification, id)
	}
	before := domain.CloneNotification(current)
	upd.apply(&current)
	applyNotificationDefaults(&current)
	if err := validateNotification(current); err != nil {
		return domain.Notification{}, err
	}
	current.ID = id
	tx.state.notifications.put(id, domain.CloneNotification(current))
	tx.recordChange(domain.Change{Entity: domain.EntityNotification, Action: domain.ActionUpdate, Before: before, After: domain.CloneNotification(current)})
	return domain.CloneNotification(current), nil
}

// DeleteNotification removes an announcement.
func (tx *Transaction) DeleteNotification(id string) error {
	current, ok := tx.state.notifications.get(id)
	if !ok {
		return domain.NotFound(domain.EntityNotification, id)
	}
	tx.state.notifications.remove(id)
	tx.recordChange(domain.Change{Entity: domain.EntityNotification, Action: domain.ActionDelete, Before: domain.CloneNotification(current)})
	return nil
}

// AppendActivity adds an audit entry, resolving the user name at write time
// and evicting the oldest entries beyond the cap.
func (tx *Transaction) AppendActivity(entry ActivityEntry) (domain.ActivityLog, error) {
	if entry.Action == "" {
		return domain.ActivityLog{}, domain.Invalid(domain.EntityActivityLog, "action", "action is required")
	}
	log := domain.ActivityLog{
		ID:         tx.store.idFn(),
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
		CreatedAt:  tx.now,
	}
	if u, ok := tx.state.users.get(entry.UserID); ok {
		log.UserName = domain.Ptr(u.FullName)
	}
	tx.state.logs.put(log.ID, domain.CloneActivityLog(log))
	tx.state.logs.trimFront(domain.MaxActivityLogs)
	tx.recordChange(domain.Change{Entity: domain.EntityActivityLog, Action: domain.ActionCreate, After: domain.CloneActivityLog(log)})
	return log, nil
}

// SetSetting overwrites one named setting.
func (tx *Transaction) SetSetting(key, value string) (domain.Settings, error) {
	return tx.UpdateSettings(map[string]string{key: value})
}

// UpdateSettings overwrites several settings at once. Unknown keys reject the
// whole update.
func (tx *Transaction) UpdateSettings(values map[string]string) (domain.Settings, error) {
	before := tx.state.settings
	next := before
	for key, value := range values {
		if !next.Set(key, value) {
			return domain.Settings{}, domain.Invalid(domain.EntitySettings, key, fmt.Sprintf("unknown setting %q", key))
		}
	}
	tx.state.settings = next
	tx.recordChange(domain.Change{Entity: domain.EntitySettings, Action: domain.ActionUpdate, Before: before, After: next})
	return next, nil
}

func validateUser(u domain.User) error {
	switch {
	case u.Username == "":
		return domain.Invalid(domain.EntityUser, "username", "username is required")
	case u.FullName == "":
		return domain.Invalid(domain.EntityUser, "full_name", "full_name is required")
	case u.PasswordHash == "":
		return domain.Invalid(domain.EntityUser, "password", "password hash is required")
	case !u.Role.Valid():
		return domain.Invalid(domain.EntityUser, "role", fmt.Sprintf("unknown role %q", u.Role))
	}
	return nil
}

func validateHousehold(h domain.Household) error {
	switch {
	case h.HouseholdCode == "":
		return domain.Invalid(domain.EntityHousehold, "household_code", "household_code is required")
	case h.Address == "":
		return domain.Invalid(domain.EntityHousehold, "address", "address is required")
	case !h.HouseholdType.Valid():
		return domain.Invalid(domain.EntityHousehold, "household_type", fmt.Sprintf("unknown household_type %q", h.HouseholdType))
	case !h.HouseholdStatus.Valid():
		return domain.Invalid(domain.EntityHousehold, "household_status", fmt.Sprintf("unknown household_status %q", h.HouseholdStatus))
	}
	return nil
}

func validateNotification(n domain.Notification) error {
	switch {
	case n.Title == "":
		return domain.Invalid(domain.EntityNotification, "title", "title is required")
	case n.Content == "":
		return domain.Invalid(domain.EntityNotification, "content", "content is required")
	case !n.Type.Valid():
		return domain.Invalid(domain.EntityNotification, "type", fmt.Sprintf("unknown notification type %q", n.Type))
	case !n.Priority.Valid():
		return domain.Invalid(domain.EntityNotification, "priority", fmt.Sprintf("unknown priority %q", n.Priority))
	}
	return nil
}

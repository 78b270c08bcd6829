package core

import (
	"residency/pkg/domain"
)

type state struct {
	settings      domain.Settings
	users         collection[domain.User]
	households    collection[domain.Household]
	residents     collection[domain.Resident]
	notifications collection[domain.Notification]
	logs          collection[domain.ActivityLog]
}

func newState() state {
	return state{
		settings:      domain.DefaultSettings(),
		users:         newCollection[domain.User](),
		households:    newCollection[domain.Household](),
		residents:     newCollection[domain.Resident](),
		notifications: newCollection[domain.Notification](),
		logs:          newCollection[domain.ActivityLog](),
	}
}

func (s state) clone() state {
	return state{
		settings:      s.settings,
		users:         s.users.clone(domain.CloneUser),
		households:    s.households.clone(domain.CloneHousehold),
		residents:     s.residents.clone(domain.CloneResident),
		notifications: s.notifications.clone(domain.CloneNotification),
		logs:          s.logs.clone(domain.CloneActivityLog),
	}
}

func (s state) dataset() domain.Dataset {
	return domain.Dataset{
		Settings:      s.settings,
		Users:         s.users.list(domain.CloneUser),
		Households:    s.households.list(domain.CloneHousehold),
		Residents:     s.residents.list(domain.CloneResident),
		Notifications: s.notifications.list(domain.CloneNotification),
		ActivityLogs:  s.logs.list(domain.CloneActivityLog),
	}
}

func stateFromDataset(ds domain.Dataset) state {
	return state{
		settings:      ds.Settings,
		users:         collectionFrom(ds.Users, idOfUser),
		households:    collectionFrom(ds.Households, idOfHousehold),
		residents:     collectionFrom(ds.Residents, idOfResident),
		notifications: collectionFrom(ds.Notifications, idOfNotification),
		logs:          collectionFrom(ds.ActivityLogs, idOfActivityLog),
	}
}

// normalizeDataset repairs a loaded snapshot so the in-memory invariants hold
// from the first read: defaults are filled, residents pointing at missing
// households become unassigned, only the first head per household keeps the
// flag and the activity log is trimmed to its cap. Records repeating an
// earlier id are dropped; the first occurrence wins.
func normalizeDataset(ds domain.Dataset) domain.Dataset {
	ds = ds.Clone()
	ds.Users = dedupe(ds.Users, idOfUser)
	ds.Households = dedupe(ds.Households, idOfHousehold)
	ds.Residents = dedupe(ds.Residents, idOfResident)
	ds.Notifications = dedupe(ds.Notifications, idOfNotification)
	ds.ActivityLogs = dedupe(ds.ActivityLogs, idOfActivityLog)
	if ds.Settings == (domain.Settings{}) {
		ds.Settings = domain.DefaultSettings()
	}
	if ds.Users == nil {
		ds.Users = []domain.User{}
	}
	if ds.Households == nil {
		ds.Households = []domain.Household{}
	}
	if ds.Residents == nil {
		ds.Residents = []domain.Resident{}
	}
	if ds.Notifications == nil {
		ds.Notifications = []domain.Notification{}
	}
	if ds.ActivityLogs == nil {
		ds.ActivityLogs = []domain.ActivityLog{}
	}

	households := make(map[string]struct{}, len(ds.Households))
	for i := range ds.Households {
		applyHouseholdDefaults(&ds.Households[i])
		households[ds.Households[i].ID] = struct{}{}
	}

	heads := make(map[string]struct{})
	for i := range ds.Residents {
		r := &ds.Residents[i]
		applyResidentDefaults(r)
		if r.HouseholdID == nil {
			continue
		}
		if _, ok := households[*r.HouseholdID]; !ok {
			r.HouseholdID = nil
			continue
		}
		if !r.IsHouseholdHead {
			continue
		}
		if _, seen := heads[*r.HouseholdID]; seen {
			r.IsHouseholdHead = false
			continue
		}
		heads[*r.HouseholdID] = struct{}{}
	}

	for i := range ds.Notifications {
		applyNotificationDefaults(&ds.Notifications[i])
	}

	if excess := len(ds.ActivityLogs) - domain.MaxActivityLogs; excess > 0 {
		ds.ActivityLogs = append([]domain.ActivityLog(nil), ds.ActivityLogs[excess:]...)
	}
	return ds
}

func idOfUser(u domain.User) string { return u.ID }
func idOfHousehold(h domain.Household) string { return h.ID }
func idOfResident(r domain.Resident) string { return r.ID }
func idOfNotification(n domain.Notification) string { return n.ID }
func idOfActivityLog(l domain.ActivityLog) string { return l.ID }

// dedupe keeps the first record per id.
func dedupe[T any](records []T, idOf func(T) string) []T {
	if records == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		id := idOf(rec)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func firstDuplicate[T any](records []T, idOf func(T) string) (string, bool) {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		id := idOf(rec)
		if _, dup := seen[id]; dup {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}

// duplicateID reports the first repeated id in ds as a conflict.
func duplicateID(ds domain.Dataset) error {
	if id, ok := firstDuplicate(ds.Users, idOfUser); ok {
		return domain.Conflict(domain.EntityUser, "id", id)
	}
	if id, ok := firstDuplicate(ds.Households, idOfHousehold); ok {
		return domain.Conflict(domain.EntityHousehold, "id", id)
	}
	if id, ok := firstDuplicate(ds.Residents, idOfResident); ok {
		return domain.Conflict(domain.EntityResident, "id", id)
	}
	if id, ok := firstDuplicate(ds.Notifications, idOfNotification); ok {
		return domain.Conflict(domain.EntityNotification, "id", id)
	}
	if id, ok := firstDuplicate(ds.ActivityLogs, idOfActivityLog); ok {
		return domain.Conflict(domain.EntityActivityLog, "id", id)
	}
	return nil
}

func applyHouseholdDefaults(h *domain.Household) {
	if h.HouseholdType == "" {
		h.HouseholdType = domain.HouseholdPermanent
	}
	if h.HouseholdStatus == "" {
		h.HouseholdStatus = domain.StatusNormal
	}
}

func applyResidentDefaults(r *domain.Resident) {
	if r.HouseholdID != nil && *r.HouseholdID == "" {
		r.HouseholdID = nil
	}
	if r.CurrentAddress != nil && *r.CurrentAddress == "" {
		r.CurrentAddress = nil
	}
	if r.Ethnicity == "" {
		r.Ethnicity = domain.DefaultEthnicity
	}
	if r.ResidenceType == "" {
		r.ResidenceType = domain.ResidencePermanent
	}
	if r.ResidenceStatus == "" {
		r.ResidenceStatus = domain.DefaultResidenceStatus
	}
}

func applyNotificationDefaults(n *domain.Notification) {
	if n.Type == "" {
		n.Type = domain.NotificationGeneral
	}
	if n.Priority == "" {
		n.Priority = domain.PriorityNormal
	}
	if n.TargetType == "" {
		n.TargetType = domain.TargetAll
	}
}

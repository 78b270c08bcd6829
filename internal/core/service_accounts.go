package core

import (
	"context"

	"residency/internal/query"
	"residency/pkg/domain"
)

// CreateUser persists a new operator account. PasswordHash must already be
// hashed.
func (s *Service) CreateUser(ctx context.Context, u domain.User) (domain.User, domain.Result, error) {
	var created domain.User
	res, err := s.write(ctx, "create_user", func(tx *Transaction) (auditRecord, error) {
		var err error
		created, err = tx.CreateUser(u)
		return auditRecord{action: "create", entity: domain.EntityUser, id: created.ID, details: map[string]any{
			"username": created.Username,
			"role":     created.Role,
		}}, err
	})
	return created, res, err
}

// UpdateUser merges profile changes onto a user.
func (s *Service) UpdateUser(ctx context.Context, id string, upd UserUpdate) (domain.User, domain.Result, error) {
	var updated domain.User
	res, err := s.write(ctx, "update_user", func(tx *Transaction) (auditRecord, error) {
		var err error
		updated, err = tx.UpdateUser(id, upd)
		return auditRecord{action: "update", entity: domain.EntityUser, id: id}, err
	})
	return updated, res, err
}

// SetUserPassword replaces a user's password hash.
func (s *Service) SetUserPassword(ctx context.Context, id, hash string) (domain.Result, error) {
	return s.write(ctx, "set_user_password", func(tx *Transaction) (auditRecord, error) {
		_, err := tx.SetUserPassword(id, hash)
		return auditRecord{action: "change_password", entity: domain.EntityUser, id: id}, err
	})
}

// SetUserAPIKey sets or, with nil, clears a user's external service key.
func (s *Service) SetUserAPIKey(ctx context.Context, id string, key *string) (domain.User, domain.Result, error) {
	var updated domain.User
	res, err := s.write(ctx, "set_user_api_key", func(tx *Transaction) (auditRecord, error) {
		var err error
		updated, err = tx.SetUserAPIKey(id, key)
		return auditRecord{}, err
	})
	return updated, res, err
}

// DeactivateUser soft-disables an account.
func (s *Service) DeactivateUser(ctx context.Context, id string) (domain.User, domain.Result, error) {
	return s.UpdateUser(ctx, id, UserUpdate{IsActive: domain.Set(false)})
}

// DeleteUser hard-deletes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) (domain.Result, error) {
	return s.write(ctx, "delete_user", func(tx *Transaction) (auditRecord, error) {
		existing, ok := tx.View().FindUser(id)
		if !ok {
			return auditRecord{}, domain.NotFound(domain.EntityUser, id)
		}
		return auditRecord{action: "delete", entity: domain.EntityUser, id: id, details: map[string]any{
			"username": existing.Username,
		}}, tx.DeleteUser(id)
	})
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	var out domain.User
	err := s.read(ctx, "get_user", func(v View) error {
		u, ok := v.FindUser(id)
		if !ok {
			return domain.NotFound(domain.EntityUser, id)
		}
		out = u
		return nil
	})
	return out, err
}

// UserByUsername returns an active user by username. Inactive accounts are
// reported as not found.
func (s *Service) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	var out domain.User
	err := s.read(ctx, "user_by_username", func(v View) error {
		u, ok := v.FindUserByUsername(username)
		if !ok || !u.IsActive {
			return domain.NotFound(domain.EntityUser, username)
		}
		out = u
		return nil
	})
	return out, err
}

// ListUsers returns every account in creation order.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := s.read(ctx, "list_users", func(v View) error {
		out = v.ListUsers()
		return nil
	})
	return out, err
}

// CreateNotification persists a new announcement.
func (s *Service) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, domain.Result, error) {
	var created domain.Notification
	res, err := s.write(ctx, "create_notification", func(tx *Transaction) (auditRecord, error) {
		var err error
		created, err = tx.CreateNotification(n)
		return auditRecord{action: "create", entity: domain.EntityNotification, id: created.ID, details: map[string]any{
			"title": created.Title,
		}}, err
	})
	return created, res, err
}

// UpdateNotification merges changes onto an announcement.
func (s *Service) UpdateNotification(ctx context.Context, id string, upd NotificationUpdate) (domain.Notification, domain.Result, error) {
	var updated domain.Notification
	res, err := s.write(ctx, "update_notification", func(tx *Transaction) (auditRecord, error) {
		var err error
		updated, err = tx.UpdateNotification(id, upd)
		return auditRecord{action: "update", entity: domain.EntityNotification, id: id}, err
	})
	return updated, res, err
}

// DeleteNotification removes an announcement.
func (s *Service) DeleteNotification(ctx context.Context, id string) (domain.Result, error) {
	return s.write(ctx, "delete_notification", func(tx *Transaction) (auditRecord, error) {
		return auditRecord{action: "delete", entity: domain.EntityNotification, id: id}, tx.DeleteNotification(id)
	})
}

// GetNotification returns an announcement by id, expired or not.
func (s *Service) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	var out domain.Notification
	err := s.read(ctx, "get_notification", func(v View) error {
		n, ok := v.FindNotification(id)
		if !ok {
			return domain.NotFound(domain.EntityNotification, id)
		}
		out = n
		return nil
	})
	return out, err
}

// ListNotifications filters and paginates unexpired announcements.
func (s *Service) ListNotifications(ctx context.Context, f query.NotificationFilter, p query.Pagination) (query.Page[domain.Notification], error) {
	var out query.Page[domain.Notification]
	err := s.read(ctx, "list_notifications", func(v View) error {
		out = query.Paginate(query.Notifications(v.ListNotifications(), f, v.Now()), p, query.DefaultNotificationLimit)
		return nil
	})
	return out, err
}

// LatestNotifications returns the first limit announcements of the listing.
func (s *Service) LatestNotifications(ctx context.Context, f query.NotificationFilter, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := s.read(ctx, "latest_notifications", func(v View) error {
		out = query.Latest(v.ListNotifications(), f, v.Now(), limit)
		return nil
	})
	return out, err
}

// LogActivity appends an audit entry directly, e.g. for logins.
func (s *Service) LogActivity(ctx context.Context, entry ActivityEntry) (domain.ActivityLog, error) {
	var logged domain.ActivityLog
	_, err := s.write(ctx, "log_activity", func(tx *Transaction) (auditRecord, error) {
		var err error
		logged, err = tx.AppendActivity(entry)
		return auditRecord{}, err
	})
	return logged, err
}

// RecentActivity returns at most limit entries, newest first.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	err := s.read(ctx, "recent_activity", func(v View) error {
		out = query.RecentActivity(v.ListActivityLogs(), limit)
		return nil
	})
	return out, err
}

// Settings returns the neighborhood settings.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	err := s.read(ctx, "get_settings", func(v View) error {
		out = v.Settings()
		return nil
	})
	return out, err
}

// Setting returns one named setting.
func (s *Service) Setting(ctx context.Context, key string) (string, error) {
	var out string
	err := s.read(ctx, "get_setting", func(v View) error {
		value, ok := v.Settings().Get(key)
		if !ok {
			return domain.NotFound(domain.EntitySettings, key)
		}
		out = value
		return nil
	})
	return out, err
}

// SetSetting overwrites one named setting.
func (s *Service) SetSetting(ctx context.Context, key, value string) (domain.Settings, error) {
	var updated domain.Settings
	_, err := s.write(ctx, "set_setting", func(tx *Transaction) (auditRecord, error) {
		var err error
		updated, err = tx.SetSetting(key, value)
		return auditRecord{action: "update_setting", entity: domain.EntitySettings, details: map[string]any{
			"key":   key,
			"value": value,
		}}, err
	})
	return updated, err
}

// UpdateSettings overwrites several settings in one commit.
func (s *Service) UpdateSettings(ctx context.Context, values map[string]string) (domain.Settings, error) {
	var updated domain.Settings
	_, err := s.write(ctx, "update_settings", func(tx *Transaction) (auditRecord, error) {
		var err error
		updated, err = tx.UpdateSettings(values)
		return auditRecord{action: "update_setting", entity: domain.EntitySettings, details: map[string]any{
			"keys": len(values),
		}}, err
	})
	return updated, err
}

package query

import (
	"sort"
	"time"

	"residency/pkg/domain"
)

// Default sizes for the dashboard strips.
const (
	DefaultLatestLimit    = 5
	DefaultRecentActivity = 10
)

// NotificationFilter narrows an announcement listing.
type NotificationFilter struct {
	Type domain.NotificationType `json:"type"`
	// MembersOnly restricts to announcements addressed to everyone or to
	// members, which is what the member role may read.
	MembersOnly bool `json:"-"`
	// IncludeExpired keeps announcements whose expiry has passed.
	IncludeExpired bool `json:"-"`
}

// Notifications returns matching announcements, pinned first and then newest
// first.
func Notifications(list []domain.Notification, f NotificationFilter, now time.Time) []domain.Notification {
	out := make([]domain.Notification, 0, len(list))
	for _, n := range list {
		if !f.IncludeExpired && !n.ActiveAt(now) {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.MembersOnly && n.TargetType != domain.TargetAll && n.TargetType != domain.TargetMembers {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Latest returns at most limit announcements in listing order.
func Latest(list []domain.Notification, f NotificationFilter, now time.Time, limit int) []domain.Notification {
	if limit < 1 {
		limit = DefaultLatestLimit
	}
	out := Notifications(list, f, now)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RecentActivity returns at most limit audit entries, newest first.
func RecentActivity(logs []domain.ActivityLog, limit int) []domain.ActivityLog {
	if limit < 1 {
		limit = DefaultRecentActivity
	}
	out := make([]domain.ActivityLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		out = append(out, logs[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

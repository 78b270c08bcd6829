package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"residency/internal/access"
	"residency/internal/core"
	"residency/internal/query"
	"residency/internal/stats"
	"residency/pkg/domain"
)

func notificationFilter(r *http.Request) query.NotificationFilter {
	return query.NotificationFilter{
		Type:        domain.NotificationType(queryParam(r, "type")),
		MembersOnly: principal(r).Role == domain.RoleMember,
	}
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListNotifications(r.Context(), notificationFilter(r), pagination(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleLatestNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.LatestNotifications(r.Context(), notificationFilter(r), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := h.svc.GetNotification(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !access.SeesAudience(principal(r).Role, n.TargetType) {
		writeError(w, domain.NotFound(domain.EntityNotification, id))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var in domain.Notification
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.ID = ""
	in.CreatedBy = domain.Ptr(principal(r).ID)
	created, _, err := h.svc.CreateNotification(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateNotification(w http.ResponseWriter, r *http.Request) {
	var upd core.NotificationUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, err)
		return
	}
	updated, _, err := h.svc.UpdateNotification(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.DeleteNotification(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "notification deleted")
}

// overviewResponse is the dashboard headline plus the latest audit entries.
type overviewResponse struct {
	stats.Overview
	RecentActivity []domain.ActivityLog `json:"recentActivity"`
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	overview, err := h.svc.Overview(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	recent, err := h.svc.RecentActivity(ctx, query.DefaultRecentActivity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overviewResponse{Overview: overview, RecentActivity: recent})
}

func (h *Handler) handleDemographics(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Demographics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDemographicStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.DemographicStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHouseholdStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.HouseholdStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Timeline(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handlePublicInfo(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Public())
}

func (h *Handler) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.svc.Setting(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

type settingRequest struct {
	Value string `json:"value"`
}

func (h *Handler) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.svc.SetSetting(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := decodeJSON(w, r, &values); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.svc.UpdateSettings(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

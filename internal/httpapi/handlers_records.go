package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"residency/internal/access"
	"residency/internal/core"
	"residency/internal/query"
	"residency/pkg/domain"
)

func pagination(r *http.Request) query.Pagination {
	return query.Pagination{Page: queryInt(r, "page"), Limit: queryInt(r, "limit")}
}

func (h *Handler) handleListHouseholds(w http.ResponseWriter, r *http.Request) {
	f := query.HouseholdFilter{
		Search: queryParam(r, "search"),
		Area:   queryParam(r, "area"),
		Type:   domain.HouseholdType(queryParam(r, "type")),
		Status: domain.HouseholdStatus(queryParam(r, "status")),
	}
	page, err := h.svc.ListHouseholds(r.Context(), f, pagination(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.svc.Areas(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (h *Handler) handleGetHousehold(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.HouseholdDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	role := principal(r).Role
	for i := range detail.Members {
		detail.Members[i].IDNumber = access.MaskIDNumber(role, detail.Members[i].IDNumber)
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleCreateHousehold(w http.ResponseWriter, r *http.Request) {
	var in domain.Household
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.ID = ""
	in.CreatedBy = domain.Ptr(principal(r).ID)
	created, _, err := h.svc.CreateHousehold(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateHousehold(w http.ResponseWriter, r *http.Request) {
	var upd core.HouseholdUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, err)
		return
	}
	updated, _, err := h.svc.UpdateHousehold(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteHousehold(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.DeleteHousehold(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "household deleted")
}

func (h *Handler) handleListResidents(w http.ResponseWriter, r *http.Request) {
	f := query.ResidentFilter{
		Search:        queryParam(r, "search"),
		Gender:        queryParam(r, "gender"),
		ResidenceType: domain.ResidenceType(queryParam(r, "residenceType", "residence_type")),
		HouseholdID:   queryParam(r, "householdId", "household_id"),
	}
	page, err := h.svc.ListResidents(r.Context(), f, pagination(r))
	if err != nil {
		writeError(w, err)
		return
	}
	role := principal(r).Role
	for i := range page.Items {
		page.Items[i].IDNumber = access.MaskIDNumber(role, page.Items[i].IDNumber)
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGetResident(w http.ResponseWriter, r *http.Request) {
	row, err := h.svc.ResidentDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	row.IDNumber = access.MaskIDNumber(principal(r).Role, row.IDNumber)
	writeJSON(w, http.StatusOK, row)
}

func (h *Handler) handleCreateResident(w http.ResponseWriter, r *http.Request) {
	var in domain.Resident
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.ID = ""
	created, _, err := h.svc.CreateResident(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateResident(w http.ResponseWriter, r *http.Request) {
	var upd core.ResidentUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, err)
		return
	}
	updated, _, err := h.svc.UpdateResident(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteResident(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.DeleteResident(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "resident deleted")
}

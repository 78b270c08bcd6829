package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"residency/internal/access"
	"residency/internal/auth"
	"residency/internal/core"
	"residency/pkg/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profile struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	FullName  string      `json:"full_name"`
	Email     *string     `json:"email"`
	Phone     *string     `json:"phone"`
	Role      domain.Role `json:"role"`
	RoleName  string      `json:"roleName"`
	IsActive  bool        `json:"is_active"`
	HasAPIKey bool        `json:"hasApiKey"`
	CreatedAt time.Time   `json:"created_at"`
}

func profileOf(u domain.User) profile {
	return profile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		RoleName:  access.RoleName(u.Role),
		IsActive:  u.IsActive,
		HasAPIKey: u.APIKey != nil && *u.APIKey != "",
		CreatedAt: u.CreatedAt,
	}
}

var errBadCredentials = domain.Unauthorized("invalid username or password")

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, domain.Invalid(domain.EntityUser, "username", "username and password are required"))
		return
	}

	user, err := h.svc.UserByUsername(ctx, req.Username)
	if domain.IsNotFound(err) {
		writeError(w, errBadCredentials)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "stored password hash is unusable", "user_id", user.ID, "error", err)
	}
	if !ok {
		writeError(w, errBadCredentials)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign token", "user_id", user.ID, "error", err)
		writeError(w, err)
		return
	}
	details, _ := json.Marshal(map[string]string{"timestamp": h.svc.Store().Now().Format(time.RFC3339Nano)})
	if _, err := h.svc.LogActivity(ctx, core.ActivityEntry{
		UserID:  user.ID,
		Action:  "login",
		Details: domain.Ptr(string(details)),
	}); err != nil {
		h.logger.WarnContext(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  profileOf(user),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), principal(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileOf(user))
}

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Email    *string     `json:"email"`
	Phone    *string     `json:"phone"`
	Role     domain.Role `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Password == "" {
		writeError(w, domain.Invalid(domain.EntityUser, "password", "password is required"))
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	created, _, err := h.svc.CreateUser(r.Context(), domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profileOf(created))
}

type profileRequest struct {
	FullName domain.Patch[string]  `json:"full_name"`
	Email    domain.Patch[*string] `json:"email"`
	Phone    domain.Patch[*string] `json:"phone"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	updated, _, err := h.svc.UpdateUser(r.Context(), principal(r).ID, core.UserUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileOf(updated))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, domain.Invalid(domain.EntityUser, "password", "current and new password are required"))
		return
	}
	user, err := h.svc.GetUser(ctx, principal(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if ok, _ := auth.CheckPassword(user.PasswordHash, req.CurrentPassword); !ok {
		writeError(w, domain.Invalid(domain.EntityUser, "current_password", "current password is incorrect"))
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.svc.SetUserPassword(ctx, user.ID, hash); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "password changed")
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

// apiKeyPrefix is the prefix of Google API keys.
const apiKeyPrefix = "AIza"

func (h *Handler) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var key *string
	if req.APIKey != "" {
		if !strings.HasPrefix(req.APIKey, apiKeyPrefix) {
			writeError(w, domain.Invalid(domain.EntityUser, "api_key", "API key must start with "+apiKeyPrefix))
			return
		}
		key = &req.APIKey
	}
	updated, _, err := h.svc.SetUserAPIKey(r.Context(), principal(r).ID, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasApiKey": profileOf(updated).HasAPIKey})
}

func (h *Handler) handleAPIKeyStatus(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), principal(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasApiKey": profileOf(user).HasAPIKey})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]profile, 0, len(users))
	for _, u := range users {
		out = append(out, profileOf(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == principal(r).ID {
		writeError(w, domain.Invalid(domain.EntityUser, "id", "you cannot delete your own account"))
		return
	}
	if _, err := h.svc.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "user deleted")
}

type roleOption struct {
	Value domain.Role `json:"value"`
	Label string      `json:"label"`
}

func (h *Handler) handleRoles(w http.ResponseWriter, _ *http.Request) {
	out := make([]roleOption, 0, len(access.Roles))
	for _, role := range access.Roles {
		out = append(out, roleOption{Value: role, Label: access.RoleName(role)})
	}
	writeJSON(w, http.StatusOK, out)
}

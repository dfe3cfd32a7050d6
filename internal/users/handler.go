package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/salesdesk/salesdesk/internal/authz"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Handler wires HTTP endpoints for accounts, sessions and user management.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validator:      validator.New(),
	}
}

// MountAuthRoutes registers authentication routes on provided router.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
}

// MountRoutes registers the administrative user-management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Put("/{id}/role", h.handleAssignRole)
	r.Put("/{id}/leader", h.handleAssignLeader)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Password string `json:"password" validate:"required,min=8"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	LeaderID  *int64 `json:"leader_id,omitempty"`
	Superuser bool   `json:"is_administrator"`
}

func toUserResponse(u *User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		LeaderID:  u.LeaderID,
		Superuser: u.Superuser,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", "username and password are required")
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrUsernameTaken):
			httpx.Problem(w, http.StatusConflict, "username taken", "a user with that username already exists")
		case errors.Is(err, shared.ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			h.logger.Error("register user", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "registration failed", "")
		}
		return
	}

	h.startSession(w, r, user)
	httpx.JSON(w, http.StatusCreated, map[string]any{"user": toUserResponse(user)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be valid JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", "username and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "login failed", "invalid username or password")
		return
	}

	h.startSession(w, r, user)
	httpx.JSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSession reports whether the request carries a valid authenticated
// session, the JSON analogue of a token-verify endpoint.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if actor == nil {
		httpx.Problem(w, http.StatusUnauthorized, "authentication required", "must log in")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": toUserResponse(actor)})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	list, err := h.service.ListUsers(r.Context(), actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for i := range list {
		out = append(out, toUserResponse(&list[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": out})
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=regular group_leader administrator"`
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid user id", "")
		return
	}
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", "role must be regular, group_leader or administrator")
		return
	}

	actor := ActorFromContext(r.Context())
	user, err := h.service.AssignRole(r.Context(), actor, id, authz.Role(req.Role))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

type assignLeaderRequest struct {
	LeaderID *int64 `json:"leader_id"`
}

func (h *Handler) handleAssignLeader(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid user id", "")
		return
	}
	var req assignLeaderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be valid JSON")
		return
	}

	actor := ActorFromContext(r.Context())
	user, err := h.service.AssignLeader(r.Context(), actor, id, req.LeaderID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrAuthenticationRequired):
		httpx.Problem(w, http.StatusUnauthorized, "authentication required", "must log in")
	case errors.Is(err, shared.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "forbidden", "")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "not found", "")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
	default:
		h.logger.Error("users request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *User) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
}

package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/travelize/internal/httpx"
	"github.com/mehmetcc/travelize/internal/token"
	"go.uber.org/zap"
)

const storeTimeout = 5 * time.Second

type Handler struct {
	directory Directory
	logger    *zap.Logger
	validator *validator.Validate
}

func NewHandler(directory Directory, l *zap.Logger) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := ParseRole(fl.Field().String())
		return err == nil
	}); err != nil {
		panic("user: register role validation: " + err.Error())
	}
	return &Handler{
		directory: directory,
		logger:    l,
		validator: v,
	}
}

// CheckAdmin answers GET /admin/{email}.
func (h *Handler) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	ok, err := h.hasRole(r, chi.URLParam(r, "email"), RoleAdmin)
	if err != nil {
		httpx.Internal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"admin": ok})
}

// CheckTourGuide answers GET /tourGuides/{email}.
func (h *Handler) CheckTourGuide(w http.ResponseWriter, r *http.Request) {
	ok, err := h.hasRole(r, chi.URLParam(r, "email"), RoleTourGuide)
	if err != nil {
		httpx.Internal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"tourGuide": ok})
}

func (h *Handler) hasRole(r *http.Request, email string, role Role) (bool, error) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	got, err := h.directory.RoleOf(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		h.logger.Error("role lookup failed", zap.Error(err))
		return false, err
	}
	return got == role, nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	var body map[string]any
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.logger.Warn("failed to decode register request body", zap.Error(err))
		httpx.WriteDecodeError(w, err)
		return
	}
	email, _ := body["email"].(string)

	res, err := h.directory.RegisterIfAbsent(ctx, email, body)
	if err != nil {
		if errors.Is(err, ErrMissingEmail) {
			httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
				Code:    httpx.ErrValidationFailed,
				Message: "email is required",
				Details: []httpx.FieldError{{Field: "email", Rule: "required"}},
			})
			return
		}
		h.logger.Error("failed to register user", zap.Error(err))
		httpx.Internal(w)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, res)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	users, err := h.directory.List(ctx)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		httpx.Internal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// Get returns the record addressed by ?email=, defaulting to the caller.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	u, err := h.directory.FindByEmail(ctx, targetEmail(r))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	var fields map[string]any
	if err := httpx.DecodeJSON(w, r, &fields); err != nil {
		h.logger.Warn("failed to decode profile update body", zap.Error(err))
		httpx.WriteDecodeError(w, err)
		return
	}

	u, err := h.directory.UpdateProfile(ctx, targetEmail(r), fields)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	var req updateRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode update role body", zap.Error(err))
		httpx.WriteDecodeError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("update role validation failed", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
			Code:    httpx.ErrValidationFailed,
			Message: "validation failed",
			Details: httpx.ValidationDetails(err),
		})
		return
	}
	role, _ := ParseRole(req.Role)

	id := chi.URLParam(r, "id")
	if err := h.directory.SetRole(ctx, id, role); err != nil {
		h.writeLookupError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updateRoleResponse{ID: id, Role: role})
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w)
	case errors.Is(err, ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
			Code:    httpx.ErrValidationFailed,
			Message: "invalid role",
		})
	default:
		h.logger.Error("user directory failure", zap.Error(err))
		httpx.Internal(w)
	}
}

func targetEmail(r *http.Request) string {
	if email := r.URL.Query().Get("email"); email != "" {
		return email
	}
	return token.CallerEmail(r.Context())
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type updateRoleResponse struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

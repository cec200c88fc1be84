package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mehmetcc/travelize/internal/httpx"
	"github.com/mehmetcc/travelize/internal/token"
	"github.com/mehmetcc/travelize/internal/user"
	"go.uber.org/zap"
)

const (
	storeTimeout    = 5 * time.Second
	initialPackageN = 3
)

type Handler struct {
	repo   Repository
	logger *zap.Logger
}

func NewHandler(repo Repository, l *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: l}
}

// List returns every document of coll, at most limit when limit > 0.
func (h *Handler) List(coll Collection, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.find(w, r, coll, Filter{Limit: limit})
	}
}

func (h *Handler) InitialPackages() http.HandlerFunc {
	return h.List(Packages, initialPackageN)
}

// Get returns the document addressed by the {id} URL parameter.
func (h *Handler) Get(coll Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
		defer cancel()

		doc, err := h.repo.FindOne(ctx, coll, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				httpx.NotFound(w)
				return
			}
			httpx.Internal(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, doc)
	}
}

// ListOwned returns the entries owned by ?email=, defaulting to the caller.
// The route guard has already checked the caller may read that email.
func (h *Handler) ListOwned(coll Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			email = token.CallerEmail(r.Context())
		}
		h.find(w, r, coll, Filter{Email: user.NormalizeEmail(email)})
	}
}

// Create stores the posted document owned by the caller.
func (h *Handler) Create(coll Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
		defer cancel()

		var doc Document
		if err := httpx.DecodeJSON(w, r, &doc); err != nil {
			h.logger.Warn("failed to decode document body", zap.String("collection", string(coll)), zap.Error(err))
			httpx.WriteDecodeError(w, err)
			return
		}
		if doc == nil {
			httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
				Code:    httpx.ErrInvalidJSON,
				Message: "request body must be a JSON object",
			})
			return
		}

		caller := token.CallerEmail(r.Context())
		if caller == "" {
			httpx.Forbidden(w)
			return
		}
		if owner := user.NormalizeEmail(doc.Owner()); owner != "" && owner != caller {
			httpx.Forbidden(w)
			return
		}
		doc["email"] = caller
		delete(doc, "_id")

		id, err := h.repo.Insert(ctx, coll, doc)
		if err != nil {
			httpx.Internal(w)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, map[string]string{"insertedId": id})
	}
}

// DeleteOwned removes the {id} entry when it belongs to the caller.
func (h *Handler) DeleteOwned(coll Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
		defer cancel()

		caller := token.CallerEmail(r.Context())
		if caller == "" {
			httpx.Forbidden(w)
			return
		}

		n, err := h.repo.DeleteOwned(ctx, coll, chi.URLParam(r, "id"), caller)
		if err != nil {
			httpx.Internal(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]int64{"deletedCount": n})
	}
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request, coll Collection, f Filter) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	docs, err := h.repo.Find(ctx, coll, f)
	if err != nil {
		httpx.Internal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, docs)
}

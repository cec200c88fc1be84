package auth

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

const lookupTimeout = 3 * time.Second

// RoleLookup resolves the stored role of an email.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (user.Role, error)
}

// Target extracts the email a request is addressed to. An empty result means
// the caller's own email.
type Target func(r *http.Request) string

func TargetParam(name string) Target {
	return func(r *http.Request) string { return chi.URLParam(r, name) }
}

func TargetQuery(name string) Target {
	return func(r *http.Request) string { return r.URL.Query().Get(name) }
}

// Gate holds the guards. RequireAuthenticated must wrap every other guard.
type Gate struct {
	verifier token.Verifier
	roles    RoleLookup
	logger   *zap.Logger
}

func NewGate(verifier token.Verifier, roles RoleLookup, logger *zap.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		roles:    roles,
		logger:   logger,
	}
}

// RequireAuthenticated rejects requests without a valid bearer token. It does
// no store I/O.
func (g *Gate) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := httpx.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			httpx.Unauthorized(w)
			return
		}
		session, err := g.verifier.Verify(raw)
		if err != nil {
			g.logger.Debug("token rejected", zap.Error(err))
			httpx.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(token.NewContext(r.Context(), session)))
	})
}

// RequireIdentity rejects authenticated callers whose token carries no email,
// so owner-scoped writes always have an owner.
func (g *Gate) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token.CallerEmail(r.Context()) == "" {
			g.deny(w, ErrNoSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) RequireRole(expected user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.deny(w, g.checkRole(r, expected)) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrRole lets the request through when the caller addresses their
// own email, or when the caller holds the expected role.
func (g *Gate) RequireSelfOrRole(expected user.Role, target Target) func(http.Handler) http.Handler {
	return g.selfGuard(target, &expected)
}

func (g *Gate) RequireSelf(target Target) func(http.Handler) http.Handler {
	return g.selfGuard(target, nil)
}

func (g *Gate) selfGuard(target Target, escape *user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := token.CallerEmail(r.Context())
			if caller == "" {
				g.deny(w, ErrNoSession)
				return
			}

			want := user.NormalizeEmail(target(r))
			if want == "" || want == caller {
				next.ServeHTTP(w, r)
				return
			}
			if escape == nil {
				g.deny(w, ErrForbidden)
				return
			}
			if g.deny(w, g.checkRole(r, *escape)) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gate) checkRole(r *http.Request, expected user.Role) error {
	caller := token.CallerEmail(r.Context())
	if caller == "" {
		return ErrNoSession
	}

	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	role, err := g.roles.RoleOf(ctx, caller)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return ErrForbidden
	case err != nil:
		return err
	case role != expected:
		return ErrForbidden
	}
	return nil
}

// deny writes the rejection for err and reports whether the request stops.
func (g *Gate) deny(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNoSession):
		httpx.Forbidden(w)
	default:
		g.logger.Error("role lookup failed", zap.Error(err))
		httpx.Internal(w)
	}
	return true
}

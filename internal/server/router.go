package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mehmetcc/travelize/internal/auth"
	"github.com/mehmetcc/travelize/internal/catalog"
	"github.com/mehmetcc/travelize/internal/config"
	"github.com/mehmetcc/travelize/internal/httpx"
	"github.com/mehmetcc/travelize/internal/token"
	"github.com/mehmetcc/travelize/internal/user"
	"go.uber.org/zap"
	"moul.io/chizap"
)

type Deps struct {
	Tokens    token.TokenService
	Directory user.Directory
	Catalog   catalog.Repository
}

// NewRouter builds the full HTTP surface. Every guarded route is wrapped in
// RequireAuthenticated before any role or ownership guard.
func NewRouter(cfg *config.AppConfig, deps Deps, logger *zap.Logger) http.Handler {
	gate := auth.NewGate(deps.Tokens, deps.Directory, logger)
	authHandler := auth.NewHandler(deps.Tokens, logger)
	userHandler := user.NewHandler(deps.Directory, logger)
	catalogHandler := catalog.NewHandler(deps.Catalog, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chizap.New(logger, &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteText(w, http.StatusOK, "TravelizeBD is Running")
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jwt/access-token", authHandler.IssueAccessToken)
		r.Post("/users", userHandler.Register)

		r.Get("/initialPackages", catalogHandler.InitialPackages())
		r.Get("/allPackages", catalogHandler.List(catalog.Packages, 0))
		r.Get("/viewPackages/{id}", catalogHandler.Get(catalog.Packages))
		r.Get("/tourGuides", catalogHandler.List(catalog.TourGuides, 0))
		r.Get("/touristStories", catalogHandler.List(catalog.TouristStories, 0))
		r.Get("/storyDetails/{id}", catalogHandler.Get(catalog.TouristStories))

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAuthenticated)

			r.With(gate.RequireSelfOrRole(user.RoleAdmin, auth.TargetParam("email"))).
				Get("/admin/{email}", userHandler.CheckAdmin)
			r.With(gate.RequireSelf(auth.TargetParam("email"))).
				Get("/tourGuides/{email}", userHandler.CheckTourGuide)

			r.With(gate.RequireRole(user.RoleAdmin)).Get("/users", userHandler.List)
			r.With(gate.RequireRole(user.RoleAdmin)).Patch("/admin/updateRole/{id}", userHandler.UpdateRole)

			selfOrAdmin := gate.RequireSelfOrRole(user.RoleAdmin, auth.TargetQuery("email"))
			r.With(selfOrAdmin).Get("/user", userHandler.Get)
			r.With(selfOrAdmin).Patch("/user", userHandler.UpdateProfile)
			r.With(selfOrAdmin).Get("/role", userHandler.Get)

			r.With(selfOrAdmin).Get("/user/bookings", catalogHandler.ListOwned(catalog.Bookings))
			r.With(gate.RequireIdentity).Post("/user/bookings", catalogHandler.Create(catalog.Bookings))
			r.With(selfOrAdmin).Get("/user/wishlists", catalogHandler.ListOwned(catalog.Wishlists))
			r.With(gate.RequireIdentity).Post("/user/wishlists", catalogHandler.Create(catalog.Wishlists))
			r.With(gate.RequireIdentity).Delete("/user/deleteWishlists/{id}", catalogHandler.DeleteOwned(catalog.Wishlists))
		})
	})

	return r
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kmehta/divvy/internal/auth"
	"github.com/kmehta/divvy/internal/http/balance"
	"github.com/kmehta/divvy/internal/http/expense"
	"github.com/kmehta/divvy/internal/http/group"
	"github.com/kmehta/divvy/internal/http/settlement"
	"github.com/kmehta/divvy/internal/http/user"
	"github.com/kmehta/divvy/internal/middleware"
)

// New assembles the API router. Registration and login are open; every
// other API route requires a valid bearer token.
func New(
	jwtManager *auth.JWTManager,
	usersV1 *user.Handler,
	groupsV1 *group.Handler,
	expensesV1 *expense.Handler,
	settlementsV1 *settlement.Handler,
	balancesV1 *balance.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(middleware.Metrics)
	router.Use(middleware.RequestLogger)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))

		r.Route("/auth", usersV1.AuthRoutes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Route("/users", usersV1.Routes)
			r.Route("/groups", groupsV1.Routes)
			r.Route("/expenses", expensesV1.Routes)
			r.Route("/settlements", settlementsV1.Routes)
			r.Route("/balances", balancesV1.Routes)
		})
	})

	return router
}

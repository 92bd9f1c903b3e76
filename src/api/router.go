package api

import (
	"fmt"

	"girlmath-server/src/auth"
	"girlmath-server/src/db"
	"girlmath-server/src/goals"
	"girlmath-server/src/handlers"
	"girlmath-server/src/ledger"
	"girlmath-server/src/middleware"
	"girlmath-server/src/util"
	"girlmath-server/src/views"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Sessions *util.Sessions
	// Cache may be nil to disable transaction list caching.
	Cache    *db.TransactionCache
	ReadOnly bool
}

func NewRouter(store db.Store, opts Options) (*chi.Mux, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	sessions := opts.Sessions
	pages := handlers.NewPages(renderer, sessions, opts.ReadOnly)
	authSvc := auth.NewService(store)
	ledgerSvc := ledger.NewService(store, opts.Cache)
	goalSvc := goals.NewService(store)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.Recover(pages.ErrorPage))
	r.Use(middleware.CSRF(sessions.Secure(), pages.ErrorPage))
	r.Use(middleware.ReadOnlyMiddleware(opts.ReadOnly, pages.ErrorPage))

	r.NotFound(pages.NotFound)
	r.MethodNotAllowed(pages.MethodNotAllowed)

	r.Get("/health", handlers.Health(store))

	r.Get("/register", handlers.RegisterForm(sessions, pages))
	r.Post("/register", handlers.Register(authSvc, pages))
	r.Get("/login", handlers.LoginForm(sessions, pages))
	r.Post("/login", handlers.Login(authSvc, sessions, pages))

	// Protected routes
	r.With(middleware.RequireSession(sessions)).Group(func(r chi.Router) {
		r.Get("/logout", handlers.Logout(sessions, pages))

		// Ledger
		r.Get("/", handlers.Index(ledgerSvc, sessions, pages))
		r.Post("/set_balance", handlers.SetBalance(ledgerSvc, pages))
		r.Post("/add", handlers.AddTransaction(ledgerSvc, pages))
		r.Get("/delete/{id}", handlers.DeleteTransaction(ledgerSvc, pages))
		r.Get("/analytics", handlers.Analytics(ledgerSvc, pages))

		// Goals
		r.Get("/goals", handlers.Goals(goalSvc, pages))
		r.Post("/goals", handlers.AddGoal(goalSvc, pages))
		r.Post("/update_goal/{id}", handlers.UpdateGoal(goalSvc, pages))
		r.Get("/delete_goal/{id}", handlers.DeleteGoal(goalSvc, pages))
	})

	return r, nil
}

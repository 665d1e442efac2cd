package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/izposoja/internal/dialog"
	"github.com/erazemk/izposoja/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, engine *dialog.Engine, initialAdmins map[string]bool) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	eventsHandler := &EventsHandler{DB: db, Engine: engine, InitialAdmins: initialAdmins}
	overviewHandler := &OverviewHandler{DB: db}
	accountsHandler := &AccountsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.AccountRoleAdmin)
	requireGateway := RequireRole(model.AccountRoleGateway)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Gateway bridge: events and proof photos.
	mux.Handle("POST /api/events", authMW(requireGateway(http.HandlerFunc(eventsHandler.HandleEvent))))
	mux.Handle("POST /api/photos", authMW(requireGateway(http.HandlerFunc(eventsHandler.UploadPhoto))))
	mux.Handle("GET /api/photos/{id}", authMW(requireGateway(http.HandlerFunc(eventsHandler.GetPhoto))))

	// Overview (admin only).
	mux.Handle("GET /api/items/held", authMW(requireAdmin(http.HandlerFunc(overviewHandler.ListHeld))))
	mux.Handle("GET /api/items/available", authMW(requireAdmin(http.HandlerFunc(overviewHandler.ListAvailable))))
	mux.Handle("GET /api/items/{id}/history", authMW(requireAdmin(http.HandlerFunc(overviewHandler.ItemHistory))))
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(overviewHandler.ListUsers))))
	mux.Handle("GET /api/users/{id}/history", authMW(requireAdmin(http.HandlerFunc(overviewHandler.UserHistory))))
	mux.Handle("GET /api/admin-log", authMW(requireAdmin(http.HandlerFunc(overviewHandler.AdminLog))))

	// Account management (admin only).
	mux.Handle("GET /api/accounts", authMW(requireAdmin(http.HandlerFunc(accountsHandler.List))))
	mux.Handle("DELETE /api/accounts/{id}", authMW(requireAdmin(http.HandlerFunc(accountsHandler.Delete))))

	return LoggingMiddleware(mux)
}

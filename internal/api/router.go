package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/stagehouse/internal/auth"
	"github.com/erazemk/stagehouse/internal/metrics"
	"github.com/erazemk/stagehouse/internal/staging"
	"github.com/erazemk/stagehouse/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
//
// Every route goes through Authenticate, which only resolves the caller. What a
// caller may do is decided by the staging service and the users handler.
func NewRouter(svc *staging.Service, db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db, Auth: auth.Authorizer{Roles: store.UserRoles{DB: db}}}
	itemsHandler := &ItemsHandler{Svc: svc}
	projectsHandler := &ProjectsHandler{Svc: svc}
	catalogHandler := &CatalogHandler{Svc: svc}

	authMW := Authenticate(jwtSecret, db)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMW(h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	handle("POST /api/auth/logout", authHandler.Logout)
	handle("PUT /api/auth/password", authHandler.ChangePassword)

	// Users (admin only).
	handle("GET /api/users", usersHandler.List)
	handle("POST /api/users", usersHandler.Create)
	handle("GET /api/users/{id}", usersHandler.Get)
	handle("PUT /api/users/{id}", usersHandler.Update)
	handle("PUT /api/users/{id}/password", usersHandler.ResetPassword)
	handle("DELETE /api/users/{id}", usersHandler.Delete)

	// Items: read (public), write (admin).
	handle("GET /api/items", itemsHandler.List)
	handle("POST /api/items", itemsHandler.Create)
	handle("GET /api/items/{id}", itemsHandler.Get)
	handle("PUT /api/items/{id}", itemsHandler.Update)
	handle("DELETE /api/items/{id}", itemsHandler.Delete)
	handle("POST /api/items/{id}/archive", itemsHandler.Archive)
	handle("POST /api/items/{id}/restore", itemsHandler.Restore)
	handle("POST /api/items/{id}/move", itemsHandler.Move)
	handle("GET /api/items/{id}/availability", itemsHandler.Availability)
	handle("GET /api/items/{id}/assignments", itemsHandler.Assignments)
	handle("GET /api/items/{id}/images", itemsHandler.ListImages)
	handle("POST /api/items/{id}/images", itemsHandler.AddImage)
	handle("DELETE /api/items/{id}/images/{imageID}", itemsHandler.DeleteImage)
	handle("POST /api/items/{id}/images/move", itemsHandler.MoveImage)

	// Catalog browsing (public).
	handle("GET /api/catalog/{oid}", catalogHandler.ByOID)
	handle("GET /api/catalog/{oid}/adjacent", catalogHandler.Adjacent)
	handle("GET /api/categories", catalogHandler.Categories)
	handle("GET /api/portfolio", catalogHandler.Portfolio)
	handle("GET /api/ledger/verify", catalogHandler.VerifyLedger)

	// Projects: owner or admin.
	handle("GET /api/projects", projectsHandler.List)
	handle("POST /api/projects", projectsHandler.Create)
	handle("GET /api/projects/{id}", projectsHandler.Get)
	handle("PUT /api/projects/{id}", projectsHandler.Update)
	handle("DELETE /api/projects/{id}", projectsHandler.Delete)
	handle("POST /api/projects/{id}/highlight", projectsHandler.Highlight)
	handle("POST /api/projects/{id}/move", projectsHandler.Move)
	handle("GET /api/projects/{id}/images", projectsHandler.ListImages)
	handle("POST /api/projects/{id}/images", projectsHandler.AddImage)
	handle("DELETE /api/projects/{id}/images/{imageID}", projectsHandler.DeleteImage)
	handle("PUT /api/projects/{id}/images/order", projectsHandler.SetImageOrder)
	handle("POST /api/projects/{id}/images/move", projectsHandler.MoveImage)
	handle("GET /api/projects/{id}/assignments", projectsHandler.Assignments)
	handle("POST /api/projects/{id}/assignments", projectsHandler.Assign)
	handle("POST /api/assignments/{id}/return", projectsHandler.Return)

	return mux
}

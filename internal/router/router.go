package router

import (
	"net/http"

	"pasta-logger/internal/handler"
	"pasta-logger/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers the router mounts. Files is nil when
// objects live in S3 and are served from there.
type Handlers struct {
	Auth    *handler.AuthHandler
	Logs    *handler.LogHandler
	Cooking *handler.CookingHandler
	Masters *handler.MasterHandler
	Files   *handler.FileHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, authn middleware.Authenticator, secureCookies bool, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/logs/new", http.StatusSeeOther)
	})

	// Sign-in
	mux.HandleFunc("GET /login", h.Auth.LoginPage)
	mux.HandleFunc("POST /login", h.Auth.Login)
	mux.HandleFunc("GET /auth/callback", h.Auth.Callback)
	mux.HandleFunc("POST /logout", h.Auth.Logout)
	mux.HandleFunc("POST /theme", h.Auth.Theme)

	// Cooking logs
	mux.HandleFunc("GET /logs", h.Logs.List)
	mux.HandleFunc("GET /logs/new", h.Logs.New)
	mux.HandleFunc("POST /logs", h.Logs.Create)
	mux.HandleFunc("GET /logs/{id}", h.Logs.Detail)
	mux.HandleFunc("POST /logs/{id}/delete", h.Logs.Delete)

	// Live cooking timer
	mux.HandleFunc("GET /cooking/state", h.Cooking.State)
	mux.HandleFunc("POST /cooking/stages/{stage}", h.Cooking.RecordStage)
	mux.HandleFunc("POST /cooking/marks/{mark}", h.Cooking.StampMark)
	mux.HandleFunc("POST /cooking/boil", h.Cooking.SetBoil)
	mux.HandleFunc("POST /cooking/countdown", h.Cooking.StartCountdown)
	mux.HandleFunc("DELETE /cooking/countdown", h.Cooking.StopCountdown)
	mux.HandleFunc("POST /cooking/reset", h.Cooking.Reset)
	mux.HandleFunc("GET /cooking/ws", h.Cooking.Stream)
	mux.HandleFunc("GET /api/salt", h.Cooking.Salt)

	// Master data
	mux.HandleFunc("GET /manage", h.Masters.Dashboard)

	mux.HandleFunc("GET /manage/recipes", h.Masters.Recipes)
	mux.HandleFunc("GET /manage/recipes/{id}/edit", h.Masters.Recipes)
	mux.HandleFunc("POST /manage/recipes", h.Masters.SaveRecipe)
	mux.HandleFunc("POST /manage/recipes/{id}", h.Masters.SaveRecipe)
	mux.HandleFunc("POST /manage/recipes/{id}/delete", h.Masters.DeleteRecipe)

	mux.HandleFunc("GET /manage/pastas", h.Masters.PastaKinds)
	mux.HandleFunc("GET /manage/pastas/{id}/edit", h.Masters.PastaKinds)
	mux.HandleFunc("POST /manage/pastas", h.Masters.SavePastaKind)
	mux.HandleFunc("POST /manage/pastas/{id}", h.Masters.SavePastaKind)
	mux.HandleFunc("POST /manage/pastas/{id}/delete", h.Masters.DeletePastaKind)

	mux.HandleFunc("GET /manage/cheeses", h.Masters.Cheeses)
	mux.HandleFunc("GET /manage/cheeses/{id}/edit", h.Masters.Cheeses)
	mux.HandleFunc("POST /manage/cheeses", h.Masters.SaveCheese)
	mux.HandleFunc("POST /manage/cheeses/{id}", h.Masters.SaveCheese)
	mux.HandleFunc("POST /manage/cheeses/{id}/delete", h.Masters.DeleteCheese)

	// Locally stored photos and images (signed token, no session)
	if h.Files != nil {
		mux.HandleFunc("GET /files/{bucket}/{key...}", h.Files.Serve)
	}

	// Apply middleware in order: Recovery -> Logging -> RequireSession
	var handler http.Handler = mux
	handler = middleware.RequireSession(authn, secureCookies, logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}

package routes

import (
	"net/http"
	"os"

	"github.com/ecotrack/wastage-api/controllers"
	"github.com/ecotrack/wastage-api/mailer"
	"github.com/ecotrack/wastage-api/middleware"
	"github.com/ecotrack/wastage-api/store"
	"github.com/gorilla/mux"
)

// SetupRoutes configures the application routes.
func SetupRoutes(s store.Store, sender mailer.Sender) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Wastage Reduction System API is running!"))
	}).Methods("GET")

	// --- Authentication Routes (Public) ---
	r.HandleFunc("/register", controllers.RegisterHandler(s)).Methods("POST")
	r.HandleFunc("/login", controllers.LoginHandler(s)).Methods("POST")
	r.HandleFunc("/forgot-password", controllers.ForgotPasswordHandler(s, sender)).Methods("POST")
	r.HandleFunc("/reset-password", controllers.ResetPasswordHandler(s)).Methods("POST")

	// --- Data Routes ---
	// These are open by default, trusting the caller-supplied ids like the
	// original system does. Setting REQUIRE_AUTH=true puts them behind the
	// JWT middleware (tokens are issued at login).
	dataRouter := r.PathPrefix("").Subrouter()
	if os.Getenv("REQUIRE_AUTH") == "true" {
		dataRouter.Use(middleware.JWTMiddleware)
	}

	dataRouter.HandleFunc("/users/{id}", controllers.GetUserHandler(s)).Methods("GET")
	dataRouter.HandleFunc("/users/{id}", controllers.UpdateUserHandler(s)).Methods("PUT")

	dataRouter.HandleFunc("/wastes/user/{userId}", controllers.GetWastesByUserHandler(s)).Methods("GET")
	dataRouter.HandleFunc("/wastes", controllers.CreateWasteHandler(s)).Methods("POST")
	dataRouter.HandleFunc("/wastes/{id}", controllers.UpdateWasteHandler(s)).Methods("PUT")
	dataRouter.HandleFunc("/wastes/{id}", controllers.DeleteWasteHandler(s)).Methods("DELETE")

	dataRouter.HandleFunc("/logs/user/{userId}", controllers.GetLogsByUserHandler(s)).Methods("GET")

	return r
}

package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"slotbooking/internal/delivery/http/controllers"
	"slotbooking/internal/delivery/http/helpers"
	"slotbooking/internal/delivery/http/middleware"
	"slotbooking/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	adminController *controllers.AdminController,
	publicController *controllers.PublicController,
) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(verifier, logger)

	// Auth
	mux.HandleFunc("POST /api/admin/login", authController.Login)

	// Admin
	mux.HandleFunc("POST /api/admin/events", admin(adminController.CreateEvent))
	mux.HandleFunc("GET /api/admin/events", admin(adminController.ListEvents))
	mux.HandleFunc("POST /api/admin/events/{eventID}/toggle", admin(adminController.ToggleEvent))
	mux.HandleFunc("DELETE /api/admin/events/{eventID}", admin(adminController.DeleteEvent))
	mux.HandleFunc("GET /api/admin/events/{eventID}/registrations", admin(adminController.ListEventRegistrations))
	mux.HandleFunc("POST /api/admin/events/{eventID}/invitations", admin(adminController.SendInvitations))
	mux.HandleFunc("PUT /api/admin/registrations/{registrationID}", admin(adminController.ReassignRegistration))
	mux.HandleFunc("DELETE /api/admin/registrations/{registrationID}", admin(adminController.DeleteRegistration))

	// Public
	mux.HandleFunc("GET /api/events/{hash}", publicController.GetEvent)
	mux.HandleFunc("GET /api/events/{hash}/slots", publicController.ListSlots)
	mux.HandleFunc("POST /api/events/{hash}/register", publicController.Register)
	mux.HandleFunc("GET /api/events/{hash}/my-registration", publicController.MyRegistration)

	// Health
	mux.HandleFunc("GET /health", healthCheck)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

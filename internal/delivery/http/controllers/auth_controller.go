package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"slotbooking/internal/delivery/http/helpers"
	"slotbooking/internal/domain"
)

// LoginRequest is the request body for POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	if l.Password == "" {
		return []string{"password is required"}
	}
	return nil
}

// LoginResponse is the data payload for POST /api/admin/login (200).
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// LoginSuccessResponse is the success response envelope for POST /api/admin/login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// Login godoc
// @Summary Organizer login
// @Description Checks the organizer password and returns a bearer token for the admin endpoints.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Organizer password"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains success and token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, err := c.Service.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "wrong password")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Success: true, Token: token})
}

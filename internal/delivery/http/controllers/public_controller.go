package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"slotbooking/internal/delivery/http/helpers"
	"slotbooking/internal/domain"
)

// PublicController handles the participant-facing endpoints, all addressed by
// the event's public hash. No authentication is involved.
type PublicController struct {
	Logger        *slog.Logger
	Events        domain.EventService
	Registrations domain.RegistrationService
}

func NewPublicController(logger *slog.Logger, events domain.EventService, registrations domain.RegistrationService) *PublicController {
	return &PublicController{
		Logger:        logger,
		Events:        events,
		Registrations: registrations,
	}
}

// PublicEventResponse is the data payload for GET /api/events/{hash} (200).
// It deliberately omits the internal event id.
type PublicEventResponse struct {
	Title            string `json:"title"`
	EventDate        string `json:"event_date"`
	RegistrationOpen bool   `json:"registration_open"`
}

// PublicEventSuccessResponse is the success response envelope for GET /api/events/{hash} (200).
type PublicEventSuccessResponse struct {
	Data  PublicEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetEvent godoc
// @Summary Get public event metadata
// @Description Returns the title, date and registration state of the event behind the hash.
// @Tags public
// @Produce json
// @Param hash path string true "Event hash"
// @Success 200 {object} controllers.PublicEventSuccessResponse "data contains title, event_date and registration_open"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{hash} [get]
func (c *PublicController) GetEvent(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if hash == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing hash")
		return
	}
	event, err := c.Events.GetEventByHash(r.Context(), hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PublicEventResponse{
		Title:            event.Title,
		EventDate:        event.EventDate,
		RegistrationOpen: event.RegistrationOpen,
	})
}

// ListSlotsSuccessResponse is the success response envelope for GET /api/events/{hash}/slots (200).
type ListSlotsSuccessResponse struct {
	Data  []*domain.SlotStatus `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListSlots godoc
// @Summary List the event's slots
// @Description Returns every generated slot with its occupancy, freshly derived from the event configuration.
// @Tags public
// @Produce json
// @Param hash path string true "Event hash"
// @Success 200 {object} controllers.ListSlotsSuccessResponse "data is an array of slots"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{hash}/slots [get]
func (c *PublicController) ListSlots(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if hash == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing hash")
		return
	}
	slots, err := c.Events.ListSlots(r.Context(), hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if slots == nil {
		slots = []*domain.SlotStatus{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// RegisterRequest is the request body for POST /api/events/{hash}/register.
type RegisterRequest struct {
	ChildName string `json:"child_name"`
	Phone     string `json:"phone"`
	SlotTime  string `json:"slot_time"`
}

// Validate implements Validator. The phone format itself is checked by the
// service; here only presence is enforced.
func (rr RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(rr.ChildName) == "" {
		errs = append(errs, "child_name is required")
	}
	if strings.TrimSpace(rr.Phone) == "" {
		errs = append(errs, "phone is required")
	}
	if strings.TrimSpace(rr.SlotTime) == "" {
		errs = append(errs, "slot_time is required")
	}
	return errs
}

// RegisterResponse is the data payload for POST /api/events/{hash}/register.
// Status is "created", "transferred" or "unchanged".
type RegisterResponse struct {
	Status       string               `json:"status"`
	Registration *domain.Registration `json:"registration"`
}

// RegisterSuccessResponse is the success response envelope for POST /api/events/{hash}/register.
type RegisterSuccessResponse struct {
	Data  RegisterResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Register godoc
// @Summary Claim a slot
// @Description Registers the participant for the slot. A resubmission with the same name and phone moves the existing registration instead of creating a second one; resubmitting the held slot changes nothing. A 409 response carries the occupant's phone.
// @Tags public
// @Accept json
// @Produce json
// @Param hash path string true "Event hash"
// @Param body body RegisterRequest true "Name, phone and slot time"
// @Success 200 {object} controllers.RegisterSuccessResponse "status transferred or unchanged"
// @Success 201 {object} controllers.RegisterSuccessResponse "status created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid phone or missing fields)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (registration closed)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, error.phone is the occupant's phone"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{hash}/register [post]
func (c *PublicController) Register(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if hash == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing hash")
		return
	}
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Registrations.ClaimSlot(r.Context(), hash, req.ChildName, req.Phone, req.SlotTime)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhone):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "phone must be exactly 10 digits")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrRegistrationClosed):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "registration is closed")
		case errors.Is(err, domain.ErrSlotConflict):
			var conflict *domain.SlotConflictError
			if errors.As(err, &conflict) {
				helpers.WriteJSONConflict(w, conflict.Error(), conflict.Phone)
			} else {
				helpers.WriteJSONConflict(w, err.Error(), "")
			}
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}

	status := "unchanged"
	code := http.StatusOK
	switch {
	case result.Created:
		status = "created"
		code = http.StatusCreated
	case result.Transferred:
		status = "transferred"
	}
	helpers.WriteJSONSuccess(w, code, RegisterResponse{Status: status, Registration: result.Registration})
}

// MyRegistrationResponse is the data payload for GET /api/events/{hash}/my-registration.
type MyRegistrationResponse struct {
	Registered   bool                 `json:"registered"`
	Registration *domain.Registration `json:"registration,omitempty"`
}

// MyRegistrationSuccessResponse is the success response envelope for GET /api/events/{hash}/my-registration.
type MyRegistrationSuccessResponse struct {
	Data  MyRegistrationResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// MyRegistration godoc
// @Summary Look up a registration by phone
// @Description Returns the registration held by the phone within the event. An empty phone and an unknown phone both answer registered=false.
// @Tags public
// @Produce json
// @Param hash path string true "Event hash"
// @Param phone query string false "Phone (10 digits)"
// @Success 200 {object} controllers.MyRegistrationSuccessResponse "data contains registered and optionally the registration"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{hash}/my-registration [get]
func (c *PublicController) MyRegistration(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if hash == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing hash")
		return
	}
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		helpers.WriteJSONSuccess(w, http.StatusOK, MyRegistrationResponse{Registered: false})
		return
	}
	reg, err := c.Registrations.FindByPhone(r.Context(), hash, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if reg == nil {
		helpers.WriteJSONSuccess(w, http.StatusOK, MyRegistrationResponse{Registered: false})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MyRegistrationResponse{Registered: true, Registration: reg})
}

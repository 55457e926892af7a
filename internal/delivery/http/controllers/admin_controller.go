package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"slotbooking/internal/delivery/http/helpers"
	"slotbooking/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// AdminController handles the organizer-facing event and registration endpoints.
type AdminController struct {
	Logger        *slog.Logger
	Events        domain.EventService
	Registrations domain.RegistrationService
}

func NewAdminController(logger *slog.Logger, events domain.EventService, registrations domain.RegistrationService) *AdminController {
	return &AdminController{
		Logger:        logger,
		Events:        events,
		Registrations: registrations,
	}
}

// CreateEventRequest is the request body for POST /api/admin/events.
type CreateEventRequest struct {
	Title        string                 `json:"title"`
	EventDate    string                 `json:"event_date"`
	StartTime    string                 `json:"start_time"`
	EndTime      string                 `json:"end_time"`
	SlotDuration int                    `json:"slot_duration"`
	Breaks       []domain.BreakInterval `json:"breaks"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.EventDate == "" {
		errs = append(errs, "event_date is required")
	}
	if c.StartTime == "" {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime == "" {
		errs = append(errs, "end_time is required")
	}
	if c.SlotDuration <= 0 {
		errs = append(errs, "slot_duration must be a positive number of minutes")
	}
	for _, b := range c.Breaks {
		if b.Start == "" || b.End == "" {
			errs = append(errs, "each break needs start and end")
			break
		}
	}
	return errs
}

// CreateEventResponse is the data payload for POST /api/admin/events (201).
type CreateEventResponse struct {
	EventID         string `json:"event_id"`
	EventHash       string `json:"event_hash"`
	RegistrationURL string `json:"registration_url"`
}

// CreateEventSuccessResponse is the success response envelope for POST /api/admin/events (201).
type CreateEventSuccessResponse struct {
	Data  CreateEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates a single-day event with fixed-length slots and breaks. Returns the event id, its public hash, and the shareable registration URL.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event fields"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains event_id, event_hash and registration_url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/events [post]
func (c *AdminController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, url, err := c.Events.CreateEvent(r.Context(), req.Title, req.EventDate, req.StartTime, req.EndTime, req.SlotDuration, req.Breaks)
	if err != nil {
		// Validation failures from the service (bad times, bad date) are 400s.
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateEventResponse{
		EventID:         event.ID,
		EventHash:       event.EventHash,
		RegistrationURL: url,
	})
}

// ListEventsResponse is the data payload for GET /api/admin/events (200).
type ListEventsResponse struct {
	Items      []*domain.EventWithCount `json:"items"`
	Pagination helpers.PaginationMeta   `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /api/admin/events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListEvents godoc
// @Summary List events for a date
// @Description Returns the events on the given date (default today) with registration counts, paginated.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD, default today)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/events [get]
func (c *AdminController) ListEvents(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Events.ListEventsByDate(r.Context(), date, params)
	if err != nil {
		if strings.Contains(err.Error(), "invalid date") {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if events == nil {
		events = []*domain.EventWithCount{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Items: events, Pagination: meta})
}

// ToggleEventResponse is the data payload for POST /api/admin/events/{eventID}/toggle (200).
type ToggleEventResponse struct {
	RegistrationOpen bool `json:"registration_open"`
}

// ToggleEventSuccessResponse is the success response envelope for POST /api/admin/events/{eventID}/toggle (200).
type ToggleEventSuccessResponse struct {
	Data  ToggleEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ToggleEvent godoc
// @Summary Toggle event registration
// @Description Flips the registration-open flag and returns the new state.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ToggleEventSuccessResponse "data contains the new registration_open value"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/events/{eventID}/toggle [post]
func (c *AdminController) ToggleEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	open, err := c.Events.ToggleRegistration(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleEventResponse{RegistrationOpen: open})
}

// DeleteEventResponse is the data payload for DELETE /api/admin/events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /api/admin/events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event; its registrations are removed with it.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/events/{eventID} [delete]
func (c *AdminController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if err := c.Events.DeleteEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// ListRegistrationsSuccessResponse is the success response envelope for GET /api/admin/events/{eventID}/registrations (200).
type ListRegistrationsSuccessResponse struct {
	Data  []*domain.AdminSlot `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListEventRegistrations godoc
// @Summary List an event's slots with registration detail
// @Description Returns the full generated slot list merged with the registration holding each slot, if any.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListRegistrationsSuccessResponse "data is an array of slots with optional registration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/events/{eventID}/registrations [get]
func (c *AdminController) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	slots, err := c.Events.ListAdminSlots(r.Context(), eventID)
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
		slots = []*domain.AdminSlot{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// ReassignRegistrationRequest is the request body for PUT /api/admin/registrations/{registrationID}.
type ReassignRegistrationRequest struct {
	SlotTime string `json:"slot_time"`
}

// Validate implements Validator.
func (u ReassignRegistrationRequest) Validate() []string {
	if strings.TrimSpace(u.SlotTime) == "" {
		return []string{"slot_time is required"}
	}
	return nil
}

// ReassignRegistrationSuccessResponse is the success response envelope for PUT /api/admin/registrations/{registrationID} (200).
type ReassignRegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ReassignRegistration godoc
// @Summary Move a registration to another slot
// @Description Admin-forced slot reassignment. The target slot must be free within the event; the registration being moved is excluded from the conflict check.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Param body body ReassignRegistrationRequest true "New slot time (HH:MM)"
// @Success 200 {object} controllers.ReassignRegistrationSuccessResponse "data contains the updated registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slot taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/registrations/{registrationID} [put]
func (c *AdminController) ReassignRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	var req ReassignRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Registrations.ReassignSlot(r.Context(), registrationID, req.SlotTime)
	if err != nil {
		if errors.Is(err, domain.ErrRegistrationNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
			return
		}
		var conflict *domain.SlotConflictError
		if errors.As(err, &conflict) {
			helpers.WriteJSONConflict(w, conflict.Error(), conflict.Phone)
			return
		}
		if errors.Is(err, domain.ErrSlotConflict) {
			helpers.WriteJSONConflict(w, err.Error(), "")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// DeleteRegistrationResponse is the data payload for DELETE /api/admin/registrations/{registrationID} (200).
type DeleteRegistrationResponse struct {
	Status string `json:"status"`
}

// DeleteRegistrationSuccessResponse is the success response envelope for DELETE /api/admin/registrations/{registrationID} (200).
type DeleteRegistrationSuccessResponse struct {
	Data  DeleteRegistrationResponse `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// DeleteRegistration godoc
// @Summary Delete a registration
// @Description Removes a registration; its slot becomes claimable again.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Success 200 {object} controllers.DeleteRegistrationSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/registrations/{registrationID} [delete]
func (c *AdminController) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	if err := c.Registrations.DeleteRegistration(r.Context(), registrationID); err != nil {
		if errors.Is(err, domain.ErrRegistrationNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteRegistrationResponse{Status: "deleted"})
}

// SendInvitationsRequest is the request body for POST /api/admin/events/{eventID}/invitations.
// Emails is a string of addresses separated by commas or spaces.
type SendInvitationsRequest struct {
	Emails string `json:"emails"`
}

// Validate implements Validator.
func (s SendInvitationsRequest) Validate() []string {
	if strings.TrimSpace(s.Emails) == "" {
		return []string{"emails is required"}
	}
	return nil
}

// parseEmailsFromString splits the input by commas and spaces, trims, lowercases,
// deduplicates, and returns only strings that match emailRegex.
func parseEmailsFromString(raw string) []string {
	raw = strings.ReplaceAll(raw, ",", " ")
	parts := strings.Fields(raw)
	seen := make(map[string]struct{})
	var out []string
	for _, p := range parts {
		email := strings.ToLower(strings.TrimSpace(p))
		if email == "" || !emailRegex.MatchString(email) {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

// SendInvitationsResponse is the data payload for POST /api/admin/events/{eventID}/invitations (200).
type SendInvitationsResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// SendInvitationsSuccessResponse is the success response envelope for POST /api/admin/events/{eventID}/invitations (200).
type SendInvitationsSuccessResponse struct {
	Data  SendInvitationsResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// SendInvitations godoc
// @Summary Email the registration link
// @Description Sends the event's registration URL to a list of addresses (comma or space separated). Returns the sent count and failed addresses.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SendInvitationsRequest true "Emails string"
// @Success 200 {object} controllers.SendInvitationsSuccessResponse "data contains sent count and failed list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (empty or no valid emails)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/events/{eventID}/invitations [post]
func (c *AdminController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	emails := parseEmailsFromString(req.Emails)
	if len(emails) == 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "no valid emails found")
		return
	}
	sent, failed, err := c.Events.SendInvitations(r.Context(), eventID, emails)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if failed == nil {
		failed = []string{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SendInvitationsResponse{Sent: sent, Failed: failed})
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/clubpulse/clubpulse/internal/handler/dto"
	"github.com/clubpulse/clubpulse/internal/middleware"
	"github.com/clubpulse/clubpulse/internal/service"
)

// handleCreateEvent creates a new event.
// @Summary Create a new event
// @Description Creates an event with a fixed seat capacity. Leader or admin only.
// @Tags events
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event creation request"
// @Success 201 {object} dto.EventResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /events [post]
func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	event, err := h.eventService.CreateEvent(ctx, member, service.CreateEventParams{
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToEventResponse(event))
}

// handleListEvents lists all events with their seat ledger state.
// @Summary List events
// @Tags events
// @Produce json
// @Success 200 {object} dto.EventsListResponse
// @Router /events [get]
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.EventsListResponse{Events: make([]dto.EventResponse, len(events))}
	for i, event := range events {
		resp.Events[i] = dto.ToEventResponse(event)
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleGetEvent retrieves a single event.
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /events/{id} [get]
func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToEventResponse(event))
}

// handleListEventRegistrations lists every registration on an event,
// tombstones included. Leader or admin only.
// @Summary List event registrations
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.RegistrationsListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /events/{id}/registrations [get]
func (h *Handler) handleListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}
	if !member.Role.IsStaff() {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "staff role required")
		return
	}

	eventID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.eventService.GetEvent(ctx, eventID); err != nil {
		respondDomainError(w, err)
		return
	}

	regs, err := h.regRepo.ListByEvent(ctx, eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.RegistrationsListResponse{Registrations: make([]dto.RegistrationResponse, len(regs))}
	for i, reg := range regs {
		resp.Registrations[i] = dto.ToRegistrationResponse(reg)
	}

	respondJSON(w, http.StatusOK, resp)
}

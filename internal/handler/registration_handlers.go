package handler

import (
	"encoding/json"
	"net/http"

	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/handler/dto"
	"github.com/clubpulse/clubpulse/internal/middleware"
)

// handleRegister registers the authenticated member for an event.
// @Summary Register for an event
// @Description Claims a seat atomically. Fails with 409 when the event is full
// @Description or the member already holds an active registration.
// @Tags registrations
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.RegisterRequest false "Registration options"
// @Success 201 {object} dto.RegistrationResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /events/{id}/registrations [post]
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	eventID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	// The body is optional; an empty method defaults to internal.
	var req dto.RegisterRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	reg, err := h.registrationSvc.Register(ctx, member.ID, eventID, domain.RegistrationMethod(req.Method))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToRegistrationResponse(reg))
}

// handleCancelRegistration cancels a registration and releases its seat.
// @Summary Cancel a registration
// @Description Idempotent: cancelling an already-cancelled registration succeeds.
// @Tags registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /registrations/{id}/cancel [put]
func (h *Handler) handleCancelRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	regID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	if err := h.registrationSvc.Cancel(ctx, regID, member); err != nil {
		respondDomainError(w, err)
		return
	}

	reg, err := h.regRepo.GetByID(ctx, regID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToRegistrationResponse(reg))
}

// handleConfirmRegistration confirms a registration. Staff only.
// @Summary Confirm a registration
// @Tags registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /registrations/{id}/confirm [put]
func (h *Handler) handleConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	regID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	reg, err := h.registrationSvc.Confirm(ctx, regID, member)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToRegistrationResponse(reg))
}

// handleMarkAttended marks a registration attended and triggers the
// attendance award. Staff only.
// @Summary Mark attendance
// @Description Stamps the check-in time and awards attendance points exactly once.
// @Tags registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /registrations/{id}/attended [put]
func (h *Handler) handleMarkAttended(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	regID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	reg, err := h.registrationSvc.MarkAttended(ctx, regID, member)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToRegistrationResponse(reg))
}

// handleFeedback stores the owning member's rating and feedback text.
// @Summary Leave event feedback
// @Tags registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param request body dto.FeedbackRequest true "Rating and feedback"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /registrations/{id}/feedback [put]
func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	regID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	reg, err := h.registrationSvc.AddFeedback(ctx, regID, member, req.Rating, req.Feedback)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToRegistrationResponse(reg))
}

// handleMyRegistrations lists the authenticated member's registrations.
// @Summary List my registrations
// @Tags registrations
// @Produce json
// @Success 200 {object} dto.RegistrationsListResponse
// @Security BearerAuth
// @Router /members/me/registrations [get]
func (h *Handler) handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	regs, err := h.regRepo.ListByMember(ctx, member.ID)
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

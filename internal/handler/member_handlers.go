package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clubpulse/clubpulse/internal/handler/dto"
	"github.com/clubpulse/clubpulse/internal/middleware"
)

// handleLeaderboard returns the top members by points with badge counts.
// @Summary Leaderboard
// @Description Returns the top N active members ordered by points. Equal
// @Description totals share the same rank. Recomputed on every call.
// @Tags members
// @Produce json
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Success 200 {object} dto.LeaderboardResponse
// @Router /leaderboard [get]
func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
				"limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.leaderboardService.TopN(r.Context(), limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToLeaderboardResponse(entries))
}

// handleRank returns a member's rank: 1 + the number of active members with
// strictly more points.
// @Summary Member rank
// @Tags members
// @Produce json
// @Param memberID path string true "Member ID"
// @Success 200 {object} dto.RankResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /rank/{memberID} [get]
func (h *Handler) handleRank(w http.ResponseWriter, r *http.Request) {
	memberID, ok := extractID(w, r, "memberID")
	if !ok {
		return
	}

	rank, err := h.leaderboardService.RankOf(r.Context(), memberID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.RankResponse{MemberID: memberID, Rank: rank})
}

// handleProfile returns the authenticated member's gamification state.
// @Summary My profile
// @Description Badges, attended events and completed tasks are derived from
// @Description their source tables on every call.
// @Tags members
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Security BearerAuth
// @Router /members/me [get]
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	badges, err := h.badgeRepo.ListByMember(ctx, member.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	attended, err := h.memberRepo.ListAttendedEventIDs(ctx, member.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	completed, err := h.memberRepo.ListCompletedTaskIDs(ctx, member.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.ProfileResponse{
		ID:               member.ID,
		Email:            member.Email,
		Name:             member.Name,
		Role:             string(member.Role),
		Points:           member.Points,
		Level:            member.Level,
		Badges:           make([]dto.BadgeResponse, len(badges)),
		AttendedEventIDs: attended,
		CompletedTaskIDs: completed,
	}
	for i, badge := range badges {
		resp.Badges[i] = dto.ToBadgeResponse(badge)
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleListAwards lists a member's point award history, newest first.
// @Summary List point awards
// @Tags members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} dto.AwardsListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /members/{id}/awards [get]
func (h *Handler) handleListAwards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.memberRepo.GetByID(ctx, memberID); err != nil {
		respondDomainError(w, err)
		return
	}

	awards, err := h.awardRepo.ListByMember(ctx, memberID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.AwardsListResponse{Awards: make([]dto.AwardResponse, len(awards))}
	for i, award := range awards {
		resp.Awards[i] = dto.ToAwardResponse(award)
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleGrantBadge grants a badge to a member. Staff only.
// @Summary Grant a badge
// @Description Grants the badge and awards its point value. A second grant of
// @Description the same badge fails with 409 and awards nothing.
// @Tags members
// @Produce json
// @Param id path string true "Member ID"
// @Param badgeID path string true "Badge ID"
// @Success 201 {object} dto.AwardResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /members/{id}/badges/{badgeID} [post]
func (h *Handler) handleGrantBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	memberID, ok := extractID(w, r, "id")
	if !ok {
		return
	}
	badgeID, ok := extractID(w, r, "badgeID")
	if !ok {
		return
	}

	award, err := h.ledger.GrantBadge(ctx, actor, memberID, badgeID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToAwardResponse(award))
}

// handleAdjustPoints applies a manual point adjustment. Admin only.
// @Summary Adjust points
// @Description Applies a positive or negative delta. Balances are clamped at
// @Description zero and every adjustment leaves an audit row.
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body dto.AdjustPointsRequest true "Adjustment"
// @Success 201 {object} dto.AwardResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /members/{id}/points [post]
func (h *Handler) handleAdjustPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	memberID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	var req dto.AdjustPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Delta == 0 {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "delta must not be zero")
		return
	}

	award, err := h.ledger.AdjustPoints(ctx, actor, memberID, req.Delta, req.Note)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToAwardResponse(award))
}

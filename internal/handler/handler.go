package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/handler/dto"
	"github.com/clubpulse/clubpulse/internal/middleware"
	"github.com/clubpulse/clubpulse/internal/repository"
	"github.com/clubpulse/clubpulse/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool               *pgxpool.Pool
	eventService       *service.EventService
	registrationSvc    *service.RegistrationService
	taskService        *service.TaskService
	leaderboardService *service.LeaderboardService
	ledger             *service.Ledger
	memberRepo         *repository.MemberRepository
	regRepo            *repository.RegistrationRepository
	taskRepo           *repository.TaskRepository
	awardRepo          *repository.AwardRepository
	badgeRepo          *repository.BadgeRepository
	authMiddleware     *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, pointsCfg config.Points) *Handler {
	// Create repositories
	memberRepo := repository.NewMemberRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	awardRepo := repository.NewAwardRepository(pool)
	badgeRepo := repository.NewBadgeRepository(pool)

	// Create services
	ledger := service.NewLedger(pool, memberRepo, awardRepo, badgeRepo, pointsCfg)
	eventService := service.NewEventService(eventRepo)
	registrationSvc := service.NewRegistrationService(pool, regRepo, eventRepo, memberRepo, ledger)
	taskService := service.NewTaskService(pool, taskRepo, memberRepo, ledger)
	leaderboardService := service.NewLeaderboardService(memberRepo)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(memberRepo)

	return &Handler{
		pool:               pool,
		eventService:       eventService,
		registrationSvc:    registrationSvc,
		taskService:        taskService,
		leaderboardService: leaderboardService,
		ledger:             ledger,
		memberRepo:         memberRepo,
		regRepo:            regRepo,
		taskRepo:           taskRepo,
		awardRepo:          awardRepo,
		badgeRepo:          badgeRepo,
		authMiddleware:     authMiddleware,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Public read endpoints
	mux.HandleFunc("GET /api/v1/events", h.handleListEvents)
	mux.HandleFunc("GET /api/v1/events/{id}", h.handleGetEvent)
	mux.HandleFunc("GET /api/v1/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("GET /api/v1/rank/{memberID}", h.handleRank)

	// Event and registration routes with authentication
	mux.Handle("POST /api/v1/events", h.auth(h.handleCreateEvent))
	mux.Handle("GET /api/v1/events/{id}/registrations", h.auth(h.handleListEventRegistrations))
	mux.Handle("POST /api/v1/events/{id}/registrations", h.auth(h.handleRegister))
	mux.Handle("PUT /api/v1/registrations/{id}/cancel", h.auth(h.handleCancelRegistration))
	mux.Handle("PUT /api/v1/registrations/{id}/confirm", h.auth(h.handleConfirmRegistration))
	mux.Handle("PUT /api/v1/registrations/{id}/attended", h.auth(h.handleMarkAttended))
	mux.Handle("PUT /api/v1/registrations/{id}/feedback", h.auth(h.handleFeedback))

	// Task routes with authentication
	mux.Handle("POST /api/v1/departments", h.auth(h.handleCreateDepartment))
	mux.Handle("GET /api/v1/tasks", h.auth(h.handleListTasks))
	mux.Handle("POST /api/v1/tasks", h.auth(h.handleCreateTask))
	mux.Handle("GET /api/v1/tasks/{id}", h.auth(h.handleGetTask))
	mux.Handle("PUT /api/v1/tasks/{id}/start", h.auth(h.handleStartTask))
	mux.Handle("PUT /api/v1/tasks/{id}/review", h.auth(h.handleReviewTask))
	mux.Handle("PUT /api/v1/tasks/{id}/complete", h.auth(h.handleCompleteTask))
	mux.Handle("PUT /api/v1/tasks/{id}/cancel", h.auth(h.handleCancelTask))
	mux.Handle("POST /api/v1/tasks/{id}/comments", h.auth(h.handleCommentTask))
	mux.Handle("GET /api/v1/tasks/{id}/comments", h.auth(h.handleListComments))
	mux.Handle("PUT /api/v1/tasks/{id}/progress", h.auth(h.handleSetProgress))

	// Member routes with authentication
	mux.Handle("GET /api/v1/members/me", h.auth(h.handleProfile))
	mux.Handle("GET /api/v1/members/me/registrations", h.auth(h.handleMyRegistrations))
	mux.Handle("GET /api/v1/members/{id}/awards", h.auth(h.handleListAwards))
	mux.Handle("POST /api/v1/members/{id}/badges/{badgeID}", h.auth(h.handleGrantBadge))
	mux.Handle("POST /api/v1/members/{id}/points", h.auth(h.handleAdjustPoints))
}

// auth wraps a handler func with the authentication middleware.
func (h *Handler) auth(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error and writes the error response.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID extracts and validates a UUID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := r.PathValue(param)
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", param+" is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", param+" must be a valid UUID")
		return "", false
	}

	return id, true
}

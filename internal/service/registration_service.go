package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/repository"
)

// RegistrationService drives the registration state machine. It is the only
// component that grants and releases event seats, and it triggers the
// attendance award through the points ledger.
type RegistrationService struct {
	pool       *pgxpool.Pool
	regRepo    *repository.RegistrationRepository
	eventRepo  *repository.EventRepository
	memberRepo *repository.MemberRepository
	ledger     *Ledger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	pool *pgxpool.Pool,
	regRepo *repository.RegistrationRepository,
	eventRepo *repository.EventRepository,
	memberRepo *repository.MemberRepository,
	ledger *Ledger,
) *RegistrationService {
	return &RegistrationService{
		pool:       pool,
		regRepo:    regRepo,
		eventRepo:  eventRepo,
		memberRepo: memberRepo,
		ledger:     ledger,
	}
}

// getActiveMember fetches a member by ID and verifies it is active.
func (s *RegistrationService) getActiveMember(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, domain.ErrMemberInactive
	}
	return member, nil
}

// Register claims a seat on the event for the member. The registration row
// and the seat reservation are written in one transaction: either both land
// or neither does. The partial unique index rejects a duplicate active
// registration, the conditional seat increment rejects an oversell.
func (s *RegistrationService) Register(
	ctx context.Context,
	memberID string,
	eventID string,
	method domain.RegistrationMethod,
) (*domain.Registration, error) {
	if method == "" {
		method = domain.RegistrationMethodInternal
	}
	if !method.IsValid() {
		return nil, domain.ErrInvalidMethod
	}

	if _, err := s.getActiveMember(ctx, memberID); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	reg := &domain.Registration{
		EventID:  eventID,
		MemberID: memberID,
		Method:   method,
		Status:   domain.RegistrationStatusRegistered,
	}
	if _, err := s.regRepo.Create(ctx, tx, reg); err != nil {
		return nil, err
	}

	if err := s.eventRepo.ReserveSeat(ctx, tx, eventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("member registered for event",
		"registration_id", reg.ID,
		"event_id", eventID,
		"member_id", memberID,
		"method", method,
	)

	return reg, nil
}

// Cancel transitions a registration to cancelled and releases its seat.
// Permitted for the owning member or staff. Idempotent: cancelling an
// already-cancelled registration succeeds without touching the seat ledger
// again. The tombstone row is retained for audit.
func (s *RegistrationService) Cancel(ctx context.Context, regID string, actor *domain.Member) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	reg, err := s.regRepo.GetByIDForUpdate(ctx, tx, regID)
	if err != nil {
		return err
	}

	if err := capCancelRegistration.Check(actor, reg.MemberID, nil); err != nil {
		return err
	}

	if reg.Status == domain.RegistrationStatusCancelled {
		return nil
	}

	updated, err := s.regRepo.UpdateStatus(ctx, tx, regID,
		[]domain.RegistrationStatus{
			domain.RegistrationStatusRegistered,
			domain.RegistrationStatusConfirmed,
		},
		domain.RegistrationStatusCancelled, false,
	)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: registration %s is %s and cannot be cancelled",
			domain.ErrInvalidTransition, regID, reg.Status)
	}

	if err := s.eventRepo.ReleaseSeat(ctx, tx, reg.EventID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("registration cancelled",
		"registration_id", regID,
		"event_id", reg.EventID,
		"member_id", reg.MemberID,
		"actor_id", actor.ID,
	)

	return nil
}

// Confirm transitions a registration from registered to confirmed.
// Staff only. Confirming an already-confirmed registration is a no-op.
func (s *RegistrationService) Confirm(ctx context.Context, regID string, actor *domain.Member) (*domain.Registration, error) {
	if err := capConfirmRegistration.Check(actor, "", nil); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	reg, err := s.regRepo.GetByIDForUpdate(ctx, tx, regID)
	if err != nil {
		return nil, err
	}

	if reg.Status == domain.RegistrationStatusConfirmed {
		return reg, nil
	}

	updated, err := s.regRepo.UpdateStatus(ctx, tx, regID,
		[]domain.RegistrationStatus{domain.RegistrationStatusRegistered},
		domain.RegistrationStatusConfirmed, false,
	)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: registration %s is %s and cannot be confirmed",
			domain.ErrInvalidTransition, regID, reg.Status)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	reg.Status = domain.RegistrationStatusConfirmed
	return reg, nil
}

// MarkAttended transitions a registration to attended, stamps the check-in
// time, and awards the configured attendance points. Staff only. Idempotent:
// the conditional status update fires at most once per registration, so a
// retried call can never double-award.
func (s *RegistrationService) MarkAttended(ctx context.Context, regID string, actor *domain.Member) (*domain.Registration, error) {
	if err := capMarkAttendance.Check(actor, "", nil); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	reg, err := s.regRepo.GetByIDForUpdate(ctx, tx, regID)
	if err != nil {
		return nil, err
	}

	if reg.Status == domain.RegistrationStatusAttended {
		return reg, nil
	}

	updated, err := s.regRepo.UpdateStatus(ctx, tx, regID,
		[]domain.RegistrationStatus{
			domain.RegistrationStatusRegistered,
			domain.RegistrationStatusConfirmed,
		},
		domain.RegistrationStatusAttended, true,
	)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: registration %s is %s and cannot be marked attended",
			domain.ErrInvalidTransition, regID, reg.Status)
	}

	if _, err := s.ledger.Award(ctx, tx, reg.MemberID,
		s.ledger.AttendancePoints(), domain.AwardReasonAttendance, &regID, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("attendance marked",
		"registration_id", regID,
		"event_id", reg.EventID,
		"member_id", reg.MemberID,
		"actor_id", actor.ID,
	)

	return s.regRepo.GetByID(ctx, regID)
}

// AddFeedback stores the owning member's rating and feedback text. Allowed
// in any lifecycle state; no capacity or point side effects.
func (s *RegistrationService) AddFeedback(
	ctx context.Context,
	regID string,
	actor *domain.Member,
	rating int,
	feedback string,
) (*domain.Registration, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	reg, err := s.regRepo.GetByID(ctx, regID)
	if err != nil {
		return nil, err
	}

	if err := capAddFeedback.Check(actor, reg.MemberID, nil); err != nil {
		return nil, err
	}

	if err := s.regRepo.SetFeedback(ctx, regID, rating, feedback); err != nil {
		return nil, err
	}

	return s.regRepo.GetByID(ctx, regID)
}

// MarkNoShows sweeps registrations still holding a seat on events that have
// ended and transitions them to no-show. No points are awarded; the seat is
// not released because the event is over. Returns the number of
// registrations updated.
func (s *RegistrationService) MarkNoShows(ctx context.Context) (int, error) {
	regs, err := s.regRepo.FindLapsed(ctx)
	if err != nil {
		return 0, fmt.Errorf("find lapsed registrations: %w", err)
	}

	if len(regs) == 0 {
		slog.Info("no lapsed registrations found")
		return 0, nil
	}

	count := 0
	var errs []error
	for _, reg := range regs {
		if err := s.markNoShow(ctx, reg); err != nil {
			slog.Error("failed to mark no-show",
				"registration_id", reg.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("registration %s: %w", reg.ID, err))
			continue
		}
		count++
	}

	slog.Info("no-show sweep finished",
		"total", len(regs),
		"updated", count,
		"failed", len(errs),
	)

	if len(errs) > 0 {
		return count, fmt.Errorf("marked %d/%d registrations, %d failures: %v",
			count, len(regs), len(errs), errs)
	}

	return count, nil
}

func (s *RegistrationService) markNoShow(ctx context.Context, reg *domain.Registration) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	updated, err := s.regRepo.UpdateStatus(ctx, tx, reg.ID,
		[]domain.RegistrationStatus{
			domain.RegistrationStatusRegistered,
			domain.RegistrationStatusConfirmed,
		},
		domain.RegistrationStatusNoShow, false,
	)
	if err != nil {
		return err
	}
	if !updated {
		// Transitioned concurrently since the sweep query ran.
		return nil
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ReconcileSeats recomputes every event's occupied counter from its active
// registrations and repairs drift. Returns the number of events whose
// counter had to be repaired.
func (s *RegistrationService) ReconcileSeats(ctx context.Context) (int, error) {
	ids, err := s.eventRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}

	repaired := 0
	for _, id := range ids {
		before, after, err := s.eventRepo.RecountOccupied(ctx, id)
		if err != nil {
			return repaired, fmt.Errorf("recount event %s: %w", id, err)
		}
		if before != after {
			repaired++
		}
	}

	slog.Info("seat reconciliation finished",
		"events", len(ids),
		"repaired", repaired,
	)

	return repaired, nil
}

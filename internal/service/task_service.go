package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/repository"
)

// TaskService drives the task state machine. Completing a task invokes the
// points ledger once per assignee.
type TaskService struct {
	pool       *pgxpool.Pool
	taskRepo   *repository.TaskRepository
	memberRepo *repository.MemberRepository
	ledger     *Ledger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	memberRepo *repository.MemberRepository,
	ledger *Ledger,
) *TaskService {
	return &TaskService{
		pool:       pool,
		taskRepo:   taskRepo,
		memberRepo: memberRepo,
		ledger:     ledger,
	}
}

// CreateTaskParams holds the inputs for CreateTask.
type CreateTaskParams struct {
	DepartmentID string
	Title        string
	Description  string
	AssigneeIDs  []string
	Priority     domain.TaskPriority
	DueAt        *time.Time
	Points       int
}

// CreateTask creates a task in todo status. Admin only.
func (s *TaskService) CreateTask(ctx context.Context, actor *domain.Member, params CreateTaskParams) (*domain.Task, error) {
	if err := capCreateTask.Check(actor, "", nil); err != nil {
		return nil, err
	}

	if params.Priority == "" {
		params.Priority = domain.TaskPriorityMedium
	}
	if !params.Priority.IsValid() {
		return nil, domain.ErrInvalidPriority
	}

	if _, err := s.taskRepo.GetDepartment(ctx, params.DepartmentID); err != nil {
		return nil, err
	}

	for _, memberID := range params.AssigneeIDs {
		member, err := s.memberRepo.GetByID(ctx, memberID)
		if err != nil {
			return nil, fmt.Errorf("assignee %s: %w", memberID, err)
		}
		if !member.IsActive {
			return nil, fmt.Errorf("assignee %s: %w", memberID, domain.ErrMemberInactive)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task := &domain.Task{
		DepartmentID: params.DepartmentID,
		CreatorID:    actor.ID,
		Title:        params.Title,
		Description:  params.Description,
		AssigneeIDs:  params.AssigneeIDs,
		Priority:     params.Priority,
		Status:       domain.TaskStatusTodo,
		DueAt:        params.DueAt,
		Points:       params.Points,
	}
	if _, err := s.taskRepo.Create(ctx, tx, task); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task created",
		"task_id", task.ID,
		"department_id", task.DepartmentID,
		"creator_id", actor.ID,
		"assignees", len(task.AssigneeIDs),
	)

	return task, nil
}

// CreateDepartment creates a department. Admin only.
func (s *TaskService) CreateDepartment(ctx context.Context, actor *domain.Member, name string) (*domain.Department, error) {
	if err := capCreateTask.Check(actor, "", nil); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, errValidation("department name is required")
	}

	dept := &domain.Department{Name: name}
	if err := s.taskRepo.CreateDepartment(ctx, dept); err != nil {
		return nil, err
	}

	return dept, nil
}

// transition moves a task between statuses under a row lock, guarded by the
// mutate capability.
func (s *TaskService) transition(
	ctx context.Context,
	taskID string,
	actor *domain.Member,
	from []domain.TaskStatus,
	to domain.TaskStatus,
) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := capMutateTask.Check(actor, "", task.AssigneeIDs); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, tx, taskID, from, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: task %s is %s, cannot transition to %s",
			domain.ErrInvalidTransition, taskID, task.Status, to)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task status changed",
		"task_id", taskID,
		"actor_id", actor.ID,
		"old_status", task.Status,
		"new_status", to,
	)

	task.Status = to
	return task, nil
}

// Start transitions a task from todo to in-progress. Assignee or staff only.
func (s *TaskService) Start(ctx context.Context, taskID string, actor *domain.Member) (*domain.Task, error) {
	return s.transition(ctx, taskID, actor,
		[]domain.TaskStatus{domain.TaskStatusTodo},
		domain.TaskStatusInProgress,
	)
}

// SubmitForReview transitions a task from in-progress to review.
func (s *TaskService) SubmitForReview(ctx context.Context, taskID string, actor *domain.Member) (*domain.Task, error) {
	return s.transition(ctx, taskID, actor,
		[]domain.TaskStatus{domain.TaskStatusInProgress},
		domain.TaskStatusReview,
	)
}

// Complete transitions a task to completed and awards the task's point value
// to every assignee exactly once. Idempotent: completing an already-completed
// task returns it unchanged with no further awards, because the conditional
// status update fires at most once for the row.
func (s *TaskService) Complete(ctx context.Context, taskID string, actor *domain.Member) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := capMutateTask.Check(actor, "", task.AssigneeIDs); err != nil {
		return nil, err
	}

	if task.Status == domain.TaskStatusCompleted {
		return task, nil
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, tx, taskID,
		[]domain.TaskStatus{domain.TaskStatusInProgress, domain.TaskStatusReview},
		domain.TaskStatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: task %s is %s and cannot be completed",
			domain.ErrInvalidTransition, taskID, task.Status)
	}

	for _, memberID := range task.AssigneeIDs {
		if _, err := s.ledger.Award(ctx, tx, memberID,
			task.Points, domain.AwardReasonTaskCompletion, &taskID, task.Title); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task completed",
		"task_id", taskID,
		"actor_id", actor.ID,
		"assignees_awarded", len(task.AssigneeIDs),
		"points", task.Points,
	)

	return s.taskRepo.GetByID(ctx, taskID)
}

// Cancel transitions a task to cancelled from any non-terminal state.
// Cancelling an already-cancelled task is a no-op.
func (s *TaskService) Cancel(ctx context.Context, taskID string, actor *domain.Member) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := capMutateTask.Check(actor, "", task.AssigneeIDs); err != nil {
		return nil, err
	}

	if task.Status == domain.TaskStatusCancelled {
		return task, nil
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, tx, taskID,
		[]domain.TaskStatus{
			domain.TaskStatusTodo,
			domain.TaskStatusInProgress,
			domain.TaskStatusReview,
		},
		domain.TaskStatusCancelled,
	)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: task %s is %s and cannot be cancelled",
			domain.ErrInvalidTransition, taskID, task.Status)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	task.Status = domain.TaskStatusCancelled
	return task, nil
}

// Comment appends a comment to a task. Allowed in any state for any active
// member; comments never affect the lifecycle.
func (s *TaskService) Comment(ctx context.Context, taskID string, actor *domain.Member, body string) (*domain.TaskComment, error) {
	if body == "" {
		return nil, errValidation("comment body is required")
	}

	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	comment := &domain.TaskComment{
		TaskID:   taskID,
		AuthorID: actor.ID,
		Body:     body,
	}
	if err := s.taskRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// SetProgress updates the progress percentage of a non-terminal task.
// Assignee or staff only. The write runs under the task's row lock with a
// status condition, so it cannot overwrite the 100% stamped by a concurrent
// completion.
func (s *TaskService) SetProgress(ctx context.Context, taskID string, actor *domain.Member, progress int) (*domain.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, errValidation("progress must be between 0 and 100")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := capMutateTask.Check(actor, "", task.AssigneeIDs); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.UpdateProgress(ctx, tx, taskID, progress)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: task %s is %s", domain.ErrInvalidTransition, taskID, task.Status)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	task.Progress = progress
	return task, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "department_id", "creator_id", "title", "description",
	"priority", "status", "due_at", "points", "progress", "completed_at",
	"created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct. Assignees are loaded
// separately from task_assignees.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.DepartmentID,
		&task.CreatorID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.DueAt,
		&task.Points,
		&task.Progress,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// Create inserts a task and its assignee rows within a transaction.
func (r *TaskRepository) Create(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusTodo
	}

	query, args, err := psql.
		Insert("tasks").
		Columns("department_id", "creator_id", "title", "description",
			"priority", "status", "due_at", "points", "progress").
		Values(task.DepartmentID, task.CreatorID, task.Title, task.Description,
			task.Priority, task.Status, task.DueAt, task.Points, task.Progress).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	for _, memberID := range task.AssigneeIDs {
		insertQuery, insertArgs, err := psql.
			Insert("task_assignees").
			Columns("task_id", "member_id").
			Values(task.ID, memberID).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build assignee insert for task %s: %w", task.ID, err)
		}
		if _, err := tx.Exec(ctx, insertQuery, insertArgs...); err != nil {
			return nil, fmt.Errorf("insert task assignee: %w", err)
		}
	}

	return task, nil
}

// GetByID retrieves a task by ID with its assignees.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	task, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	task.AssigneeIDs, err = r.getAssignees(ctx, r.pool, taskID)
	if err != nil {
		return nil, err
	}

	return task, nil
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within
// transaction), assignees included.
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	task, err := scanTask(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	task.AssigneeIDs, err = r.getAssignees(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	return task, nil
}

// querier covers both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *TaskRepository) getAssignees(ctx context.Context, q querier, taskID string) ([]string, error) {
	query, args, err := psql.
		Select("member_id").
		From("task_assignees").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("member_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build assignee query for task %s: %w", taskID, err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task assignees: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return ids, nil
}

// UpdateStatus conditionally transitions a task from one of the given
// statuses. Returns false with no error when the row was not in any of them,
// which lets callers treat duplicate completion calls as no-ops instead of
// double-awarding points.
func (r *TaskRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	from []domain.TaskStatus,
	to domain.TaskStatus,
) (bool, error) {
	qb := psql.
		Update("tasks").
		Set("status", to).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     taskID,
			"status": from,
		})
	if to == domain.TaskStatusCompleted {
		qb = qb.Set("completed_at", sq.Expr("NOW()")).Set("progress", 100)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return false, fmt.Errorf("build UpdateStatus query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update task status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateProgress sets the progress percentage of a non-terminal task.
// Returns false with no error when the task is already completed or
// cancelled, so a completed task's 100% can never be overwritten.
func (r *TaskRepository) UpdateProgress(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	progress int,
) (bool, error) {
	query, args, err := psql.
		Update("tasks").
		Set("progress", progress).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID}).
		Where(sq.NotEq{"status": []domain.TaskStatus{
			domain.TaskStatusCompleted,
			domain.TaskStatusCancelled,
		}}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build UpdateProgress query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update task progress: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// AddComment appends a comment to a task.
func (r *TaskRepository) AddComment(ctx context.Context, comment *domain.TaskComment) error {
	query, args, err := psql.
		Insert("task_comments").
		Columns("task_id", "author_id", "body").
		Values(comment.TaskID, comment.AuthorID, comment.Body).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build AddComment query for task %s: %w", comment.TaskID, err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("add task comment: %w", err)
	}

	return nil
}

// ListComments returns a task's comments oldest first.
func (r *TaskRepository) ListComments(ctx context.Context, taskID string) ([]*domain.TaskComment, error) {
	query, args, err := psql.
		Select("id", "task_id", "author_id", "body", "created_at").
		From("task_comments").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListComments query for task %s: %w", taskID, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.TaskComment
	for rows.Next() {
		var c domain.TaskComment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return comments, nil
}

// GetDepartment retrieves a department by ID.
func (r *TaskRepository) GetDepartment(ctx context.Context, departmentID string) (*domain.Department, error) {
	query, args, err := psql.
		Select("id", "name", "created_at").
		From("departments").
		Where(sq.Eq{"id": departmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetDepartment query: %w", err)
	}

	var dept domain.Department
	err = r.pool.QueryRow(ctx, query, args...).Scan(&dept.ID, &dept.Name, &dept.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("query department: %w", err)
	}

	return &dept, nil
}

// CreateDepartment inserts a department.
func (r *TaskRepository) CreateDepartment(ctx context.Context, dept *domain.Department) error {
	query, args, err := psql.
		Insert("departments").
		Columns("name").
		Values(dept.Name).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build CreateDepartment query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&dept.ID, &dept.CreatedAt)
	if err != nil {
		return fmt.Errorf("create department: %w", err)
	}

	return nil
}

package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	DepartmentID *string  // Optional: filter by department
	Statuses     []string // Optional: filter by status
	AssigneeID   *string  // Optional: filter by assignee
	Priorities   []string // Optional: filter by priority
	Overdue      bool     // Optional: show only tasks past their due date
	Limit        int      // Required: page size
	Offset       int      // Required: page offset
}

// priorityOrder sorts urgent first when no explicit sort is requested.
const priorityOrder = "CASE priority WHEN 'urgent' THEN 1 WHEN 'high' THEN 2 WHEN 'medium' THEN 3 WHEN 'low' THEN 4 END"

// List retrieves tasks with filters and pagination, assignees included.
// Returns the page of tasks and the total matching count.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, int, error) {
	applyFilters := func(qb sq.SelectBuilder) sq.SelectBuilder {
		if filters.DepartmentID != nil {
			qb = qb.Where(sq.Eq{"department_id": *filters.DepartmentID})
		}
		if len(filters.Statuses) > 0 {
			qb = qb.Where(sq.Eq{"status": filters.Statuses})
		}
		if filters.AssigneeID != nil {
			qb = qb.Where(sq.Expr(
				"id IN (SELECT task_id FROM task_assignees WHERE member_id = ?)",
				*filters.AssigneeID,
			))
		}
		if len(filters.Priorities) > 0 {
			qb = qb.Where(sq.Eq{"priority": filters.Priorities})
		}
		if filters.Overdue {
			qb = qb.Where("due_at < NOW()").
				Where(sq.Eq{"status": []domain.TaskStatus{
					domain.TaskStatusTodo,
					domain.TaskStatusInProgress,
					domain.TaskStatusReview,
				}})
		}
		return qb
	}

	qb := applyFilters(psql.Select(taskColumns...).From("tasks")).
		OrderBy(priorityOrder+" ASC", "created_at ASC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	for _, task := range tasks {
		task.AssigneeIDs, err = r.getAssignees(ctx, r.pool, task.ID)
		if err != nil {
			return nil, 0, err
		}
	}

	countQuery, countArgs, err := applyFilters(psql.Select("COUNT(*)").From("tasks")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}

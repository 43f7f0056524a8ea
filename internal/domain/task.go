package domain

import "time"

// TaskStatus represents the status of a task in the state machine.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsTerminal returns true if the status is terminal (no transitions allowed).
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// CanComplete returns true if a task in this status may transition to completed.
func (s TaskStatus) CanComplete() bool {
	return s == TaskStatusInProgress || s == TaskStatusReview
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview,
		TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

// Department groups tasks by the organizational unit responsible for them.
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Task represents a unit of departmental work assigned to one or more members.
// On completion every assignee receives the task's point value exactly once.
type Task struct {
	ID           string
	DepartmentID string
	CreatorID    string
	Title        string
	Description  string
	AssigneeIDs  []string
	Priority     TaskPriority
	Status       TaskStatus
	DueAt        *time.Time
	Points       int
	Progress     int
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAssignedTo checks if the given member is listed as an assignee.
func (t *Task) IsAssignedTo(memberID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// IsCreatedBy checks if the task was created by the given member.
func (t *Task) IsCreatedBy(memberID string) bool {
	return t.CreatorID == memberID
}

// TaskComment is an append-only comment on a task.
type TaskComment struct {
	ID        string
	TaskID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

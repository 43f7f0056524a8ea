package dto

import "time"

// CreateEventRequest represents the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// RegisterRequest represents the request body for POST /events/:id/registrations.
type RegisterRequest struct {
	Method string `json:"method,omitempty"`
}

// FeedbackRequest represents the request body for PUT /registrations/:id/feedback.
type FeedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	DepartmentID string     `json:"department_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	AssigneeIDs  []string   `json:"assignee_ids"`
	Priority     string     `json:"priority,omitempty"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	Points       int        `json:"points"`
}

// CommentTaskRequest represents the request body for POST /tasks/:id/comments.
type CommentTaskRequest struct {
	Body string `json:"body"`
}

// ProgressRequest represents the request body for PUT /tasks/:id/progress.
type ProgressRequest struct {
	Progress int `json:"progress"`
}

// AdjustPointsRequest represents the request body for POST /members/:id/points.
type AdjustPointsRequest struct {
	Delta int    `json:"delta"`
	Note  string `json:"note,omitempty"`
}

// CreateDepartmentRequest represents the request body for POST /departments.
type CreateDepartmentRequest struct {
	Name string `json:"name"`
}

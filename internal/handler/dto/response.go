package dto

import (
	"time"

	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/repository"
)

// EventResponse represents an event with its seat ledger state.
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrganizerID string    `json:"organizer_id"`
	Capacity    int       `json:"capacity"`
	Occupied    int       `json:"occupied"`
	Status      string    `json:"status"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegistrationResponse represents a registration.
type RegistrationResponse struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	MemberID    string     `json:"member_id"`
	Method      string     `json:"method"`
	Status      string     `json:"status"`
	CheckedInAt *time.Time `json:"checked_in_at"`
	Rating      *int       `json:"rating"`
	Feedback    *string    `json:"feedback"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskResponse represents a task with its assignees.
type TaskResponse struct {
	ID           string     `json:"id"`
	DepartmentID string     `json:"department_id"`
	CreatorID    string     `json:"creator_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AssigneeIDs  []string   `json:"assignee_ids"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	DueAt        *time.Time `json:"due_at"`
	Points       int        `json:"points"`
	Progress     int        `json:"progress"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// CommentResponse represents a task comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AwardResponse represents a recorded point award.
type AwardResponse struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	SourceID  *string   `json:"source_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntryResponse represents one row of the leaderboard.
type LeaderboardEntryResponse struct {
	Rank       int    `json:"rank"`
	MemberID   string `json:"member_id"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Level      int    `json:"level"`
	BadgeCount int    `json:"badge_count"`
}

// LeaderboardResponse represents the response for GET /leaderboard.
type LeaderboardResponse struct {
	Entries []LeaderboardEntryResponse `json:"entries"`
}

// RankResponse represents the response for GET /rank/:memberID.
type RankResponse struct {
	MemberID string `json:"member_id"`
	Rank     int    `json:"rank"`
}

// EventsListResponse represents the response for GET /events.
type EventsListResponse struct {
	Events []EventResponse `json:"events"`
}

// RegistrationsListResponse wraps a list of registrations.
type RegistrationsListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
}

// CommentsListResponse represents the response for GET /tasks/:id/comments.
type CommentsListResponse struct {
	Comments []CommentResponse `json:"comments"`
}

// AwardsListResponse represents the response for GET /members/:id/awards.
type AwardsListResponse struct {
	Awards []AwardResponse `json:"awards"`
}

// BadgeResponse represents a badge from the catalog.
type BadgeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// DepartmentResponse represents a department.
type DepartmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse represents the response for GET /members/me: the member's
// gamification state plus the lists derived from registrations and tasks.
type ProfileResponse struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Role             string          `json:"role"`
	Points           int             `json:"points"`
	Level            int             `json:"level"`
	Badges           []BadgeResponse `json:"badges"`
	AttendedEventIDs []string        `json:"attended_event_ids"`
	CompletedTaskIDs []string        `json:"completed_task_ids"`
}

// ToEventResponse converts domain.Event to EventResponse.
func ToEventResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		OrganizerID: event.OrganizerID,
		Capacity:    event.Capacity,
		Occupied:    event.Occupied,
		Status:      string(event.Status),
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		CreatedAt:   event.CreatedAt,
	}
}

// ToRegistrationResponse converts domain.Registration to RegistrationResponse.
func ToRegistrationResponse(reg *domain.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:          reg.ID,
		EventID:     reg.EventID,
		MemberID:    reg.MemberID,
		Method:      string(reg.Method),
		Status:      string(reg.Status),
		CheckedInAt: reg.CheckedInAt,
		Rating:      reg.Rating,
		Feedback:    reg.Feedback,
		CreatedAt:   reg.CreatedAt,
		UpdatedAt:   reg.UpdatedAt,
	}
}

// ToTaskResponse converts domain.Task to TaskResponse.
func ToTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           task.ID,
		DepartmentID: task.DepartmentID,
		CreatorID:    task.CreatorID,
		Title:        task.Title,
		Description:  task.Description,
		AssigneeIDs:  task.AssigneeIDs,
		Priority:     string(task.Priority),
		Status:       string(task.Status),
		DueAt:        task.DueAt,
		Points:       task.Points,
		Progress:     task.Progress,
		CompletedAt:  task.CompletedAt,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// ToCommentResponse converts domain.TaskComment to CommentResponse.
func ToCommentResponse(comment *domain.TaskComment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

// ToAwardResponse converts domain.PointAward to AwardResponse.
func ToAwardResponse(award *domain.PointAward) AwardResponse {
	return AwardResponse{
		ID:        award.ID,
		MemberID:  award.MemberID,
		Delta:     award.Delta,
		Reason:    string(award.Reason),
		SourceID:  award.SourceID,
		Note:      award.Note,
		CreatedAt: award.CreatedAt,
	}
}

// ToBadgeResponse converts domain.Badge to BadgeResponse.
func ToBadgeResponse(badge *domain.Badge) BadgeResponse {
	return BadgeResponse{
		ID:          badge.ID,
		Name:        badge.Name,
		Description: badge.Description,
		Points:      badge.Points,
	}
}

// ToDepartmentResponse converts domain.Department to DepartmentResponse.
func ToDepartmentResponse(dept *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        dept.ID,
		Name:      dept.Name,
		CreatedAt: dept.CreatedAt,
	}
}

// ToLeaderboardResponse converts leaderboard entries, assigning ranks in
// order with equal point totals sharing the same rank.
func ToLeaderboardResponse(entries []repository.LeaderboardEntry) LeaderboardResponse {
	resp := LeaderboardResponse{Entries: make([]LeaderboardEntryResponse, len(entries))}
	rank := 0
	prevPoints := -1
	for i, e := range entries {
		if e.Points != prevPoints {
			rank = i + 1
			prevPoints = e.Points
		}
		resp.Entries[i] = LeaderboardEntryResponse{
			Rank:       rank,
			MemberID:   e.MemberID,
			Name:       e.Name,
			Points:     e.Points,
			Level:      e.Level,
			BadgeCount: e.BadgeCount,
		}
	}
	return resp
}

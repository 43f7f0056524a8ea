package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/handler/dto"
	"github.com/clubpulse/clubpulse/internal/middleware"
	"github.com/clubpulse/clubpulse/internal/repository"
	"github.com/clubpulse/clubpulse/internal/service"
)

const (
	defaultTaskPageSize = 50
	maxTaskPageSize     = 200
)

// handleCreateDepartment creates a department. Admin only.
// @Summary Create a department
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateDepartmentRequest true "Department creation request"
// @Success 201 {object} dto.DepartmentResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /departments [post]
func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	dept, err := h.taskService.CreateDepartment(ctx, member, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToDepartmentResponse(dept))
}

// handleCreateTask creates a new task in todo status.
// @Summary Create a new task
// @Description Creates a departmental task with one or more assignees. Admin only.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		return
	}
	if req.DepartmentID == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "department_id is required")
		return
	}
	if req.Points < 0 {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "points must not be negative")
		return
	}

	task, err := h.taskService.CreateTask(ctx, member, service.CreateTaskParams{
		DepartmentID: req.DepartmentID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		AssigneeIDs:  req.AssigneeIDs,
		Priority:     domain.TaskPriority(req.Priority),
		DueAt:        req.DueAt,
		Points:       req.Points,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// handleListTasks lists tasks with filters and pagination.
// @Summary List tasks
// @Description Filters: department_id, status (comma-separated), assignee_id,
// @Description priority (comma-separated), overdue=true, limit, offset.
// @Tags tasks
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filters := repository.TaskListFilters{
		Limit:  defaultTaskPageSize,
		Offset: 0,
	}

	if v := query.Get("department_id"); v != "" {
		filters.DepartmentID = &v
	}
	if v := query.Get("assignee_id"); v != "" {
		filters.AssigneeID = &v
	}
	if v := query.Get("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if !domain.TaskStatus(s).IsValid() {
				respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
					"invalid status filter: "+s)
				return
			}
			filters.Statuses = append(filters.Statuses, s)
		}
	}
	if v := query.Get("priority"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if !domain.TaskPriority(p).IsValid() {
				respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
					"invalid priority filter: "+p)
				return
			}
			filters.Priorities = append(filters.Priorities, p)
		}
	}
	filters.Overdue = query.Get("overdue") == "true"

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxTaskPageSize {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
				"limit must be between 1 and "+strconv.Itoa(maxTaskPageSize))
			return
		}
		filters.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
				"offset must not be negative")
			return
		}
		filters.Offset = offset
	}

	tasks, total, err := h.taskRepo.List(ctx, filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.TasksListResponse{
		Tasks:  make([]dto.TaskResponse, len(tasks)),
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}
	for i, task := range tasks {
		resp.Tasks[i] = dto.ToTaskResponse(task)
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleGetTask retrieves a single task with its assignees.
// @Summary Get task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetByID(r.Context(), taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// runTransition runs one of the task lifecycle transitions and responds with
// the updated task.
func (h *Handler) runTransition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, taskID string, actor *domain.Member) (*domain.Task, error),
) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	task, err := fn(ctx, taskID, member)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleStartTask transitions a task from todo to in-progress.
// @Summary Start a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/start [put]
func (h *Handler) handleStartTask(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.taskService.Start)
}

// handleReviewTask transitions a task from in-progress to review.
// @Summary Submit a task for review
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/review [put]
func (h *Handler) handleReviewTask(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.taskService.SubmitForReview)
}

// handleCompleteTask completes a task and awards its points to every assignee.
// @Summary Complete a task
// @Description Idempotent: completing an already-completed task returns it
// @Description unchanged without further awards.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/complete [put]
func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.taskService.Complete)
}

// handleCancelTask cancels a task from any non-terminal state.
// @Summary Cancel a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/cancel [put]
func (h *Handler) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.taskService.Cancel)
}

// handleCommentTask appends a comment to a task.
// @Summary Comment on a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.CommentTaskRequest true "Comment body"
// @Success 201 {object} dto.CommentResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/comments [post]
func (h *Handler) handleCommentTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	var req dto.CommentTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	comment, err := h.taskService.Comment(ctx, taskID, member, req.Body)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToCommentResponse(comment))
}

// handleListComments lists a task's comments in creation order.
// @Summary List task comments
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.CommentsListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/comments [get]
func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.taskRepo.GetByID(ctx, taskID); err != nil {
		respondDomainError(w, err)
		return
	}

	comments, err := h.taskRepo.ListComments(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.CommentsListResponse{Comments: make([]dto.CommentResponse, len(comments))}
	for i, comment := range comments {
		resp.Comments[i] = dto.ToCommentResponse(comment)
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleSetProgress updates the progress percentage of a task.
// @Summary Set task progress
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.ProgressRequest true "Progress percentage"
// @Success 200 {object} dto.TaskResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/progress [put]
func (h *Handler) handleSetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	task, err := h.taskService.SetProgress(ctx, taskID, member, req.Progress)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

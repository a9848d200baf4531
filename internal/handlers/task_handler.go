package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smart-task-manager/internal/models"
	"smart-task-manager/internal/service"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	ProjectID   string  `json:"projectId" binding:"required"`
	AssigneeID  *string `json:"assigneeId"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
	DueDate     string  `json:"dueDate"`
	Position    *int    `json:"position"`
}

// UpdateTaskRequest represents the request payload for updating a task.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	DueDate     *string `json:"dueDate"`
	Position    *int    `json:"position"`
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status string `json:"status" form:"status"`
}

type UpdateTaskPriorityRequest struct {
	Priority string `json:"priority" form:"priority"`
}

// AssignTaskRequest assigns a task; a null or missing userId unassigns it.
type AssignTaskRequest struct {
	UserID *string `json:"userId" form:"userId"`
}

// TaskResponse is a task with the assignee's username filled in.
type TaskResponse struct {
	models.Task
	AssigneeUsername string `json:"assigneeUsername,omitempty"`
}

func (r CreateTaskRequest) input() (service.CreateTaskInput, error) {
	in := service.CreateTaskInput{
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Position:    r.Position,
		AssigneeID:  r.AssigneeID,
	}
	var err error
	if r.Status != "" {
		if in.Status, err = models.ParseStatus(r.Status); err != nil {
			return in, err
		}
	}
	if r.Priority != "" {
		if in.Priority, err = models.ParsePriority(r.Priority); err != nil {
			return in, err
		}
	}
	if in.DueDate, err = parseDueDate(r.DueDate); err != nil {
		return in, err
	}
	return in, nil
}

func (r UpdateTaskRequest) input() (service.UpdateTaskInput, error) {
	in := service.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Position:    r.Position,
	}
	if r.Status != nil {
		s, err := models.ParseStatus(*r.Status)
		if err != nil {
			return in, err
		}
		in.Status = &s
	}
	if r.Priority != nil {
		p, err := models.ParsePriority(*r.Priority)
		if err != nil {
			return in, err
		}
		in.Priority = &p
	}
	if r.DueDate != nil {
		due, err := parseDueDate(*r.DueDate)
		if err != nil {
			return in, err
		}
		in.DueDate = due
	}
	return in, nil
}

// respondTask enriches the assignee and writes the task.
func (h *Handler) respondTask(c *gin.Context, status int, task *models.Task) {
	resp := TaskResponse{Task: *task}
	if task.AssigneeID != nil {
		if u, err := h.users.Get(c.Request.Context(), *task.AssigneeID); err == nil {
			resp.AssigneeUsername = u.Username
		}
	}
	c.JSON(status, resp)
}

// respondTasks enriches assignees from a single user listing.
func (h *Handler) respondTasks(c *gin.Context, tasks []models.Task) []TaskResponse {
	usernames := map[string]string{}
	if users, err := h.users.List(c.Request.Context()); err == nil {
		for _, u := range users {
			usernames[u.ID] = u.Username
		}
	}
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp := TaskResponse{Task: t}
		if t.AssigneeID != nil {
			resp.AssigneeUsername = usernames[*t.AssigneeID]
		}
		out = append(out, resp)
	}
	return out
}

/*
*
GetTasks handles GET /api/tasks
Returns all tasks (team-wide) for authenticated users.
Optional query params: projectId, assigneeId, status, q (title search),
page, limit and sort.
*/
func (h *Handler) GetTasks(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	p := parsePage(c)
	q := service.TaskQuery{
		ProjectID:   c.Query("projectId"),
		AssigneeID:  c.Query("assigneeId"),
		Title:       c.Query("q"),
		Limit:       p.Limit,
		Offset:      (p.Page - 1) * p.Limit,
		OldestFirst: p.Sort == "asc",
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			h.badRequest(c, err.Error())
			return
		}
		q.Status = status
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": h.respondTasks(c, tasks),
		"count": len(tasks), // number of items in this page
		"total": total,      // total tasks (all pages) for current filter
		"page":  p.Page,
		"limit": p.Limit,
		"sort":  p.Sort,
	})
}

// GetTasksByStatus handles GET /api/tasks/status/:status
func (h *Handler) GetTasksByStatus(c *gin.Context) {
	status, err := models.ParseStatus(c.Param("status"))
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}
	tasks, err := h.tasks.ListByStatus(c.Request.Context(), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.respondTasks(c, tasks))
}

// GetTasksByUser handles GET /api/tasks/user/:userId (tasks assigned to the user)
func (h *Handler) GetTasksByUser(c *gin.Context) {
	tasks, err := h.tasks.ListByAssignee(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.respondTasks(c, tasks))
}

// GetProjectTasks handles GET /api/projects/:id/tasks
func (h *Handler) GetProjectTasks(c *gin.Context) {
	tasks, err := h.tasks.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.respondTasks(c, tasks))
}

// GetOverdueTasks handles GET /api/tasks/overdue
func (h *Handler) GetOverdueTasks(c *gin.Context) {
	tasks, err := h.tasks.Overdue(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.respondTasks(c, tasks))
}

/*
*
CreateTask handles POST /api/tasks
Creates a new task. AI suggestions are attached when the classifier answers.
*/
func (h *Handler) CreateTask(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondTask(c, http.StatusCreated, task)
}

// GetTaskByID handles GET /api/tasks/:id
func (h *Handler) GetTaskByID(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondTask(c, http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/:id
// Only the fields present in the body are changed.
func (h *Handler) UpdateTask(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondTask(c, http.StatusOK, task)
}

// bindOptional accepts the payload either as JSON or as query parameters.
func bindOptional(c *gin.Context, dst any) error {
	if c.Request.ContentLength > 0 {
		return c.ShouldBindJSON(dst)
	}
	return c.ShouldBindQuery(dst)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondTask(c, http.StatusOK, task)
}

// AssignTask handles PATCH /api/tasks/:id/assign
func (h *Handler) AssignTask(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	var req AssignTaskRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if req.UserID != nil && strings.TrimSpace(*req.UserID) == "" {
		req.UserID = nil
	}

	task, err := h.tasks.Assign(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondTask(c, http.StatusOK, task)
}

// UpdateTaskPriority handles PATCH /api/tasks/:id/priority
func (h *Handler) UpdateTaskPriority(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	var req UpdateTaskPriorityRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.UpdatePriority(c.Request.Context(), c.Param("id"), priority)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondTask(c, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	taskID := c.Param("id")
	if err := h.tasks.Delete(c.Request.Context(), taskID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// GetStatsByUser handles GET /api/stats/:userid
// Returns counts of tasks by status where the assignee matches :userid
func (h *Handler) GetStatsByUser(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	targetUserID := c.Param("userid")
	if strings.TrimSpace(targetUserID) == "" {
		h.badRequest(c, "userid is required")
		return
	}

	stats, err := h.tasks.Stats(c.Request.Context(), targetUserID)
	if err != nil {
		h.fail(c, fmt.Errorf("compute stats: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"todo":       stats.ByStatus[models.StatusTodo],
		"inProgress": stats.ByStatus[models.StatusInProgress],
		"done":       stats.ByStatus[models.StatusDone],
		"blocked":    stats.ByStatus[models.StatusBlocked],
		"cancelled":  stats.ByStatus[models.StatusCancelled],
		"total":      stats.Total,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smart-task-manager/internal/auth"
	"smart-task-manager/internal/middleware"
	"smart-task-manager/internal/realtime"
	"smart-task-manager/internal/service"
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Tasks      *service.TaskService
	Projects   *service.ProjectService
	Users      *service.UserService
	Classifier service.Classifier
	Tokens     *auth.TokenManager
	Hub        *realtime.Hub
	Log        zerolog.Logger
}

// Handler serves the REST and websocket API.
type Handler struct {
	tasks      *service.TaskService
	projects   *service.ProjectService
	users      *service.UserService
	classifier service.Classifier
	tokens     *auth.TokenManager
	hub        *realtime.Hub
	log        zerolog.Logger
	now        func() time.Time
}

func New(d Deps) *Handler {
	return &Handler{
		tasks:      d.Tasks,
		projects:   d.Projects,
		users:      d.Users,
		classifier: d.Classifier,
		tokens:     d.Tokens,
		hub:        d.Hub,
		log:        d.Log,
		now:        time.Now,
	}
}

// ErrorDetails is the body of every error response.
type ErrorDetails struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
	Status    int       `json:"status"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as ErrorDetails. Internal errors are logged and their text
// is not sent to the client.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		_ = c.Error(err)
		message = "internal server error"
	}
	h.abort(c, status, message)
}

func (h *Handler) abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorDetails{
		Timestamp: h.now().UTC(),
		Message:   message,
		Details:   "uri=" + c.Request.URL.Path,
		Status:    status,
	})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	h.abort(c, http.StatusBadRequest, message)
}

// currentUser returns the authenticated user id, writing 401 when absent.
func (h *Handler) currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		h.abort(c, http.StatusUnauthorized, "User ID not found in token")
		return "", false
	}
	return userID, true
}

func parseDateFlexible(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	layouts := []string{
		"2006-01-02",  // ISO date
		"2 Jan 2006",  // e.g., 30 Oct 2025
		time.RFC3339,  // full RFC3339
		"02 Jan 2006", // zero-padded day
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDueDate treats an empty string as "no date".
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, ok := parseDateFlexible(raw)
	if !ok {
		return nil, errors.New("dueDate must be a date such as 2025-10-30")
	}
	return &t, nil
}

type page struct {
	Page  int
	Limit int
	Sort  string
}

// parsePage reads page (default 1), limit (default 5, max 100) and sort
// (asc|desc on created_at, default desc).
func parsePage(c *gin.Context) page {
	p := page{Sort: strings.ToLower(c.DefaultQuery("sort", "desc"))}

	var err error
	if p.Page, err = strconv.Atoi(c.DefaultQuery("page", "1")); err != nil || p.Page < 1 {
		p.Page = 1
	}
	if p.Limit, err = strconv.Atoi(c.DefaultQuery("limit", "5")); err != nil || p.Limit < 1 {
		p.Limit = 5
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Sort != "asc" {
		p.Sort = "desc"
	}
	return p
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart-task-manager/internal/models"
	"smart-task-manager/internal/service"
)

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// UserRequest is used for create and full update. Password may be empty on update.
type UserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (r UserRequest) input() service.UserInput {
	return service.UserInput{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Password: r.Password,
	}
}

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	user, err := h.users.Create(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// GetAllUsers returns all users (protected)
// GET /api/users
func (h *Handler) GetAllUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	// Map to safe response payload
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// GetUserByUsername handles GET /api/users/:username
func (h *Handler) GetUserByUsername(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateUser handles PUT /api/users/:username
func (h *Handler) UpdateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("username"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// DeleteUser handles DELETE /api/users/:username. The user is deactivated,
// not removed.
func (h *Handler) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.users.Delete(c.Request.Context(), username); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

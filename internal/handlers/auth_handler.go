package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-task-manager/internal/models"
	"smart-task-manager/internal/service"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents a successful login or registration
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresIn int64        `json:"expiresIn"`
	User      UserResponse `json:"user"`
}

func (h *Handler) issue(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
		User:      newUserResponse(user),
	})
}

// Register handles POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request. Username, email, full name and password are required.")
		return
	}

	user, err := h.users.Create(c.Request.Context(), service.UserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issue(c, http.StatusCreated, user)
}

// Login handles POST /api/auth/login (and the legacy POST /api/login)
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request. Username and password are required.")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issue(c, http.StatusOK, user)
}

// Me handles GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

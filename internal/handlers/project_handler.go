package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-task-manager/internal/service"
)

// CreateProjectRequest names the owner by username; empty means the caller.
type CreateProjectRequest struct {
	Name          string `json:"name"`
	OwnerUsername string `json:"ownerUsername"`
}

// CreateProject handles POST /api/projects
func (h *Handler) CreateProject(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	project, err := h.projects.Create(c.Request.Context(), service.CreateProjectInput{
		Name:          req.Name,
		OwnerUsername: req.OwnerUsername,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProjects handles GET /api/projects. Optional query param: ownerId.
func (h *Handler) GetProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), c.Query("ownerId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProjectByID handles GET /api/projects/:id
func (h *Handler) GetProjectByID(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetProjectUsers handles GET /api/projects/:id/users (owner and assignees)
func (h *Handler) GetProjectUsers(c *gin.Context) {
	members, err := h.projects.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := make([]UserResponse, 0, len(members))
	for i := range members {
		resp = append(resp, newUserResponse(&members[i]))
	}
	c.JSON(http.StatusOK, resp)
}

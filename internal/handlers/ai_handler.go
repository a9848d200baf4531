package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClassifyRequest is the payload of POST /api/ai/classify-task
type ClassifyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ClassifyTask runs the classifier for a title and description without
// creating a task. An unavailable backend yields an empty suggestion, not an
// error.
func (h *Handler) ClassifyTask(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.badRequest(c, "title is required")
		return
	}
	c.JSON(http.StatusOK, h.classifier.Classify(c.Request.Context(), req.Title, req.Description))
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkadam-18/LVDI-2D/internal/model"
	"github.com/vkadam-18/LVDI-2D/internal/service"
)

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	assistant *service.AssistantService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(assistant *service.AssistantService) *FeedbackHandler {
	return &FeedbackHandler{
		assistant: assistant,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	err := h.assistant.LogFeedback(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrAskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	response := model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	}

	c.JSON(http.StatusOK, response)
}

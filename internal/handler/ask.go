package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vkadam-18/LVDI-2D/internal/model"
	"github.com/vkadam-18/LVDI-2D/internal/service"
)

// AskHandler handles question-answering HTTP requests
type AskHandler struct {
	assistant *service.AssistantService
	logger    *zap.Logger
}

// NewAskHandler creates a new ask handler
func NewAskHandler(assistant *service.AssistantService, logger *zap.Logger) *AskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(c *gin.Context) {
	var req model.AskRequest
	if !bindQuery(c, &req) {
		return
	}

	response, err := h.assistant.Ask(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// AskStream handles POST /api/v1/ask/stream - SSE streaming ask
func (h *AskHandler) AskStream(c *gin.Context) {
	var req model.AskRequest
	if !bindQuery(c, &req) {
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	response, err := h.assistant.AskStream(c.Request.Context(), &req, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		status := errorStatus(err)
		h.logFailure(status, err)
		sendSSE(c, "error", map[string]any{"error": err.Error(), "status": status})
		flusher.Flush()
		return
	}

	sendSSE(c, "result", response)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// Intent handles POST /api/v1/intent: the rule-based reading only
func (h *AskHandler) Intent(c *gin.Context) {
	var req model.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, service.DetectIntent(req.Query))
}

// Catalog handles GET /api/v1/versions/:version/tables
func (h *AskHandler) Catalog(c *gin.Context) {
	catalog, err := h.assistant.Catalog(c.Request.Context(), c.Param("version"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, catalog)
}

func bindQuery(c *gin.Context, req *model.AskRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return false
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must not be empty"})
		return false
	}
	return true
}

// errorStatus maps service errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownVersion):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAskNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrModelDisabled):
		return http.StatusServiceUnavailable
	case service.IsModelOutputError(err), errors.Is(err, service.ErrModelRequest):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *AskHandler) writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	h.logFailure(status, err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *AskHandler) logFailure(status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("Ask failed", zap.Int("status", status), zap.Error(err))
		return
	}
	h.logger.Info("Ask rejected", zap.Int("status", status), zap.Error(err))
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}

package handler

import (
	"net/http"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/interfaces/http/dto"
	"github.com/dinehub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// requestIDContextKey is where the RequestID middleware stores the ID
	requestIDContextKey = "request_id"
	requestIDHeader     = "X-Request-ID"
)

// commandResult wraps a dispatch response with the entity version the
// command produced
type commandResult struct {
	Result  any `json:"result,omitempty"`
	Version int `json:"version"`
}

// BaseHandler routes bound commands to the actor runtime and translates the
// outcome into HTTP responses
type BaseHandler struct {
	dispatcher actor.Dispatcher
	logger     *zap.Logger
}

// NewBaseHandler creates a base handler around the dispatcher
func NewBaseHandler(dispatcher actor.Dispatcher, logger *zap.Logger) BaseHandler {
	return BaseHandler{dispatcher: dispatcher, logger: logger}
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDContextKey); id != "" {
		return id
	}
	return c.GetHeader(requestIDHeader)
}

// tenantID reads the tenant resolved by the tenant middleware
func tenantID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(middleware.TenantIDKey)
	if raw == "" {
		raw = c.GetHeader(middleware.TenantHeaderKey)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			"UNAUTHORIZED", "Tenant context is required", getRequestID(c)))
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses an :id style path parameter; responds 400 when malformed
func pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			"VALIDATION_ERROR", "Path parameter "+param+" must be a UUID", getRequestID(c)))
		return uuid.Nil, false
	}
	return id, true
}

// bind binds the JSON body into cmd; responds 400 on failure with per-field
// details when the validator produced them
func bind(c *gin.Context, cmd any) bool {
	if err := c.ShouldBindJSON(cmd); err != nil {
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, getRequestID(c)))
		return false
	}
	return true
}

// execute dispatches a command to one actor and writes the outcome
func (h BaseHandler) execute(c *gin.Context, actorType string, entityID uuid.UUID, cmd actor.Command, status int) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	h.executeForTenant(c, tenant, actorType, entityID, cmd, status)
}

// executeForTenant is execute with an explicit tenant, for handlers that
// already resolved it
func (h BaseHandler) executeForTenant(c *gin.Context, tenant uuid.UUID, actorType string, entityID uuid.UUID, cmd actor.Command, status int) {
	key := actor.NewKey(tenant, actorType, entityID)
	resp, version, err := h.dispatcher.Dispatch(c.Request.Context(), key, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, dto.NewSuccessResponse(commandResult{Result: resp, Version: version}))
}

// respondError maps a dispatch error onto an HTTP response
func (h BaseHandler) respondError(c *gin.Context, err error) {
	status := dto.HTTPStatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Command dispatch failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "An unexpected error occurred"
	}
	c.JSON(status, dto.NewErrorResponse(dto.ErrorCodeForError(err), message, getRequestID(c)))
}

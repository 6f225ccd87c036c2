package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/dto"
	"github.com/seatsurge/ticketd/internal/service"
	"github.com/seatsurge/ticketd/pkg/response"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/codes"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.register")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Register(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.login")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

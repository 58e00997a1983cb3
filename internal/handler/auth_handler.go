package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
	"github.com/noah-isme/uep-attendance-analytics/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, models.UserInfo{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
	"github.com/yukikurage/crm-timesheet-api/internal/middleware"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	tokenTTL    time.Duration
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. tokenTTL is reported to clients as expires_in.
func NewAuthHandler(authService *services.AuthService, tokenTTL time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokenTTL:    tokenTTL,
		log:         log,
	}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered",
		"user":    dto.ToUserDTO(*user),
	})
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.log.Info("user logged in", zap.Uint64("user_id", result.User.ID))
	c.JSON(http.StatusOK, dto.ToLoginResponse(result, int64(h.tokenTTL/time.Second)))
}

// Me returns the verified claim of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, exists := middleware.GetClaims(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": dto.ToClaimDTO(claims),
	})
}

// ChangePassword replaces the caller's password and clears the temporary flag.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type ChangePasswordRequest struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.authService.ChangePassword(services.ChangePasswordInput{
		UserID:      actor.UserID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "password changed",
	})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrUserExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, services.ErrAccountDisabled):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		respondInternal(c, h.log, err)
	}
}

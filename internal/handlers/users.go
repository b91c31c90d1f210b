package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"go.uber.org/zap"
)

// UserHandler serves user administration.
type UserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

// ListUsers returns every user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondInternal(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// ListAssignable returns the active users tasks can be assigned to.
func (h *UserHandler) ListAssignable(c *gin.Context) {
	users, err := h.userService.ListAssignable()
	if err != nil {
		respondInternal(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignableUserDTOs(users))
}

// CreateUser creates an account with a temporary password.
func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, password, err := h.userService.CreateUser(services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatedUserResponse{
		Message:      "User created",
		User:         dto.ToUserDTO(*user),
		TempPassword: password,
	})
}

// ResetPassword issues a new temporary password.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	password, err := h.userService.ResetPassword(id)
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"new_password": password,
	})
}

// DisableUser deactivates an account.
func (h *UserHandler) DisableUser(c *gin.Context) {
	h.setActive(c, false)
}

// EnableUser reactivates an account.
func (h *UserHandler) EnableUser(c *gin.Context) {
	h.setActive(c, true)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.SetActive(id, active)
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	message := "disabled"
	if active {
		message = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"user":    dto.ToUserDTO(*user),
	})
}

// DeleteUser removes an account that no longer owns tasks.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "deleted",
	})
}

func (h *UserHandler) respondUserError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrUserHasTasks):
		apierrors.Conflict(c, err.Error())
	default:
		respondInternal(c, h.log, err)
	}
}

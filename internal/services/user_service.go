package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/repository"
	"github.com/yukikurage/crm-timesheet-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUserHasTasks = errors.New("user still has assigned tasks")

	ErrUserFieldsRequired = newValidationError("username and email are required")
)

// UserService handles administrative user management.
type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// ListUsers returns every user.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListAssignable returns the users tasks can be assigned to.
func (s *UserService) ListAssignable() ([]models.User, error) {
	users, err := s.userRepo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUserInput holds the fields an administrator supplies for a new user.
type CreateUserInput struct {
	Username string
	Email    string
	Role     string
}

// CreateUser creates a user with a random temporary password and returns it in clear text once.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, string, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, "", ErrUserFieldsRequired
	}

	role := models.RoleUser
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := models.ParseRole(input.Role)
		if !ok {
			return nil, "", ErrInvalidRole
		}
		role = parsed
	}

	password, hash, err := newTempPassword()
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		IsActive:       true,
		IsTempPassword: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return user, password, nil
}

// ResetPassword assigns a new temporary password.
func (s *UserService) ResetPassword(id uint64) (string, error) {
	user, err := s.findUser(id)
	if err != nil {
		return "", err
	}

	password, hash, err := newTempPassword()
	if err != nil {
		return "", err
	}

	now := s.now()
	user.PasswordHash = hash
	user.IsTempPassword = true
	user.CredentialsValidSince = &now

	if err := s.userRepo.Update(user); err != nil {
		return "", fmt.Errorf("failed to reset password: %w", err)
	}
	return password, nil
}

// SetActive enables or disables a user. Disabling also invalidates issued claims
// when revocation is turned on.
func (s *UserService) SetActive(id uint64, active bool) (*models.User, error) {
	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if !active {
		now := s.now()
		user.CredentialsValidSince = &now
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user and their timesheet entries.
func (s *UserService) DeleteUser(id uint64) error {
	if err := s.userRepo.Delete(id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrUserHasTasks):
			return ErrUserHasTasks
		default:
			return fmt.Errorf("failed to delete user: %w", err)
		}
	}
	return nil
}

func (s *UserService) findUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func newTempPassword() (string, string, error) {
	password, err := utils.GenerateTempPassword(constants.TempPasswordLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return "", "", err
	}
	return password, hash, nil
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists           = errors.New("username or email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrUserNotFound         = errors.New("user not found")
	ErrSessionRevoked       = errors.New("session is no longer valid")
	ErrFailedToHashPassword = errors.New("failed to hash password")

	ErrRegisterFieldsRequired = newValidationError("username, email and password are required")
	ErrLoginFieldsRequired    = newValidationError("email and password are required")
	ErrPasswordFieldsRequired = newValidationError("old_password and new_password are required")
	ErrPasswordTooShort       = newValidationError("password must be at least %d characters", constants.MinPasswordLength)
	ErrInvalidRole            = newValidationError("role must be one of Admin, HR, User")
	ErrWrongPassword          = newValidationError("old password is incorrect")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Register creates a new user.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, ErrRegisterFieldsRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := models.RoleUser
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := models.ParseRole(input.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		role = parsed
	}

	if err := s.ensureIdentityAvailable(username, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a signed claim together with the user it was issued for.
type LoginResult struct {
	Token  string
	Claims *Claims
	User   *models.User
}

// Login verifies credentials and issues a session claim.
// Unknown email and wrong password fail identically.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrLoginFieldsRequired
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Claims: claims, User: user}, nil
}

// ChangePasswordInput holds the old and new password of the caller.
type ChangePasswordInput struct {
	UserID      uint64
	OldPassword string
	NewPassword string
}

// ChangePassword replaces the caller's password and clears the temporary flag.
func (s *AuthService) ChangePassword(input ChangePasswordInput) error {
	if input.OldPassword == "" || input.NewPassword == "" {
		return ErrPasswordFieldsRequired
	}
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.GetUser(input.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	now := s.now()
	user.PasswordHash = hash
	user.IsTempPassword = false
	user.CredentialsValidSince = &now

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// CheckSession rejects claims whose user is gone or disabled, or that were
// issued before the user's credentials last changed.
func (s *AuthService) CheckSession(claims *Claims) error {
	user, err := s.userRepo.FindByID(claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionRevoked
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return ErrSessionRevoked
	}
	if user.CredentialsValidSince != nil && claims.IssuedAt != nil {
		// iat has millisecond precision
		if claims.IssuedAt.Time.Before(user.CredentialsValidSince.Truncate(time.Millisecond)) {
			return ErrSessionRevoked
		}
	}

	return nil
}

func (s *AuthService) ensureIdentityAvailable(username, email string) error {
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hash), nil
}

package dto

import (
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             uint64      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	IsActive       bool        `json:"is_active"`
	IsTempPassword bool        `json:"is_temp_password"`
}

// AssignableUserDTO is the reduced shape offered to task assignment pickers
type AssignableUserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginUserDTO is the user block of a login response
type LoginUserDTO struct {
	ID             uint64      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	IsTempPassword bool        `json:"is_temp_password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	User      LoginUserDTO `json:"user"`
}

// ClaimDTO mirrors the verified claim for /me
type ClaimDTO struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Issuer    string `json:"iss,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// CreatedUserResponse carries the one-time temporary password of an admin-created user
type CreatedUserResponse struct {
	Message      string  `json:"message"`
	User         UserDTO `json:"user"`
	TempPassword string  `json:"temp_password"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		IsActive:       user.IsActive,
		IsTempPassword: user.IsTempPassword,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}

// ToAssignableUserDTOs converts users to the assignment picker shape
func ToAssignableUserDTOs(users []models.User) []AssignableUserDTO {
	items := make([]AssignableUserDTO, len(users))
	for i, user := range users {
		items[i] = AssignableUserDTO{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		}
	}
	return items
}

// ToLoginResponse converts a login result, expiresIn being in seconds
func ToLoginResponse(result *services.LoginResult, expiresIn int64) LoginResponse {
	return LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
		User: LoginUserDTO{
			ID:             result.User.ID,
			Username:       result.User.Username,
			Email:          result.User.Email,
			Role:           result.User.Role,
			IsTempPassword: result.User.IsTempPassword,
		},
	}
}

// ToClaimDTO converts verified claims
func ToClaimDTO(claims *services.Claims) ClaimDTO {
	dto := ClaimDTO{
		ID:       claims.ID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
		Issuer:   claims.Issuer,
	}
	if claims.IssuedAt != nil {
		dto.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		dto.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return dto
}

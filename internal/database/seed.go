package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminSeed describes the bootstrap administrator account.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// SeedAdmin creates the bootstrap administrator unless a user with its email exists.
// It reports whether a user was created.
func SeedAdmin(db *gorm.DB, seed AdminSeed, log *zap.Logger) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))

	var existing models.User
	err := db.Where("LOWER(email) = ?", email).First(&existing).Error
	if err == nil {
		log.Info("admin already exists, skip seeding", zap.String("email", email))
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:       strings.ToLower(strings.TrimSpace(seed.Username)),
		Email:          email,
		PasswordHash:   string(hash),
		Role:           models.RoleAdmin,
		IsActive:       true,
		IsTempPassword: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info("admin seeded", zap.String("email", email))
	return true, nil
}

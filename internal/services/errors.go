package services

import (
	"fmt"

	"github.com/yukikurage/crm-timesheet-api/internal/models"
)

// ValidationError marks input the caller can fix. Handlers map it to 400.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) *ValidationError {
	if len(args) == 0 {
		return &ValidationError{Message: format}
	}
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID   uint64
	Username string
	Role     models.Role
}

// Privileged reports whether the actor may act on other users' records.
func (a Actor) Privileged() bool {
	return a.Role.IsPrivileged()
}

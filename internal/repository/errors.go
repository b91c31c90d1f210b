package repository

import "errors"

var (
	// ErrNotFound is returned by write operations whose target row does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrUserHasTasks is returned when deleting a user who is still the assignee of tasks.
	ErrUserHasTasks = errors.New("repository: user still has assigned tasks")
)

package constants

// Pagination
const (
	MinPage         = 1
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Context keys
const (
	ContextKeyClaims = "claims"
)

// Password policy
const (
	MinPasswordLength  = 6
	TempPasswordLength = 8
)

// Tasks
const (
	TaskCodeFormat      = "TS-%04d"
	DefaultTaskPriority = "Medium"
	MaxAIGeneratedTasks = 20
)

// Timesheet
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

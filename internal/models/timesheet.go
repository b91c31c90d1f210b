package models

import "time"

// TimesheetEntry is one block of work logged by a user. WorkDate is stored as
// YYYY-MM-DD and StartTime/EndTime as HH:MM:SS so they sort lexically on every driver.
type TimesheetEntry struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	TaskID    *uint64   `gorm:"index" json:"task_id"`
	WorkDate  *string   `gorm:"type:varchar(10);index" json:"work_date"`
	StartTime *string   `gorm:"type:varchar(8)" json:"start_time"`
	EndTime   *string   `gorm:"type:varchar(8)" json:"end_time"`
	Hours     float64   `gorm:"not null" json:"hours"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (TimesheetEntry) TableName() string {
	return "timesheets"
}

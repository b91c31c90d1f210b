package services

import (
	"math"
	"strings"
	"time"

	"github.com/yukikurage/crm-timesheet-api/internal/constants"
)

const (
	strictClockLayout = "15:04"

	minBulkDuration = 5 * time.Minute
	maxBulkDuration = 16 * time.Hour
)

// flexibleClockLayouts are tried in order on upper-cased input.
var flexibleClockLayouts = []string{"15:04", "3:04 PM", "15:04:05"}

var (
	ErrRangeFormat       = newValidationError("invalid time/date format")
	ErrEndBeforeStart    = newValidationError("end_time must be after start_time")
	ErrHoursNotNumber    = newValidationError("hours must be a number")
	ErrHoursNotPositive  = newValidationError("hours must be > 0")
	ErrWorkDateFormat    = newValidationError("work_date must be YYYY-MM-DD")
	ErrClockFormat       = newValidationError("time must be HH:MM or hh:mm AM/PM")
	ErrClockRequired     = newValidationError("time is required")
	ErrDurationTooShort  = newValidationError("duration too short (<5min)")
	ErrDurationTooLong   = newValidationError("duration too long (>16h)")
	ErrHoursModeRequired = newValidationError("hours or (work_date+start_time+end_time) is required")
)

// workRange is a normalized work interval with its derived hours.
type workRange struct {
	WorkDate  string
	StartTime string
	EndTime   string
	Hours     float64
}

// strictRange parses HH:MM clocks on a single day. End must be after start;
// hours are whole elapsed minutes over 60, rounded to 2 decimals.
func strictRange(workDate, startTime, endTime string) (workRange, error) {
	day, err := time.Parse(constants.DateLayout, strings.TrimSpace(workDate))
	if err != nil {
		return workRange{}, ErrRangeFormat
	}
	start, err := time.Parse(strictClockLayout, strings.TrimSpace(startTime))
	if err != nil {
		return workRange{}, ErrRangeFormat
	}
	end, err := time.Parse(strictClockLayout, strings.TrimSpace(endTime))
	if err != nil {
		return workRange{}, ErrRangeFormat
	}

	if !end.After(start) {
		return workRange{}, ErrEndBeforeStart
	}

	minutes := int(end.Sub(start) / time.Minute)
	return workRange{
		WorkDate:  day.Format(constants.DateLayout),
		StartTime: start.Format(constants.ClockLayout),
		EndTime:   end.Format(constants.ClockLayout),
		Hours:     roundHours(float64(minutes) / 60),
	}, nil
}

// flexibleRange accepts 24-hour clocks with or without seconds and 12-hour
// clocks. An end at or before start crosses midnight.
func flexibleRange(workDate, startTime, endTime string) (workRange, error) {
	day, err := time.Parse(constants.DateLayout, strings.TrimSpace(workDate))
	if err != nil {
		return workRange{}, ErrWorkDateFormat
	}
	start, err := parseFlexibleClock(startTime)
	if err != nil {
		return workRange{}, err
	}
	end, err := parseFlexibleClock(endTime)
	if err != nil {
		return workRange{}, err
	}

	duration := end.Sub(start)
	if duration <= 0 {
		duration += 24 * time.Hour
	}
	if duration < minBulkDuration {
		return workRange{}, ErrDurationTooShort
	}
	if duration > maxBulkDuration {
		return workRange{}, ErrDurationTooLong
	}

	return workRange{
		WorkDate:  day.Format(constants.DateLayout),
		StartTime: start.Format(constants.ClockLayout),
		EndTime:   end.Format(constants.ClockLayout),
		Hours:     roundHours(duration.Hours()),
	}, nil
}

func parseFlexibleClock(value string) (time.Time, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return time.Time{}, ErrClockRequired
	}

	for _, layout := range flexibleClockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrClockFormat
}

// directHours validates a stated hours value.
func directHours(value any) (float64, error) {
	hours, ok := numberValue(value)
	if !ok {
		return 0, ErrHoursNotNumber
	}
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, ErrHoursNotPositive
	}
	return hours, nil
}

func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

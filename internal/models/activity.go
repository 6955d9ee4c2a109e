package models

import (
	"fmt"
	"time"
)

// ActivityType labels what an employee is doing during a session
type ActivityType string

const (
	ActivityWork     ActivityType = "work"
	ActivityBreak    ActivityType = "break"
	ActivityLunch    ActivityType = "lunch"
	ActivityBathroom ActivityType = "bathroom"
	ActivityMeeting  ActivityType = "meeting"
)

// ActivityTypes lists every activity type in display order
func ActivityTypes() []ActivityType {
	return []ActivityType{
		ActivityWork,
		ActivityBreak,
		ActivityLunch,
		ActivityBathroom,
		ActivityMeeting,
	}
}

// Valid reports whether t is a known activity type
func (t ActivityType) Valid() bool {
	_, err := t.TotalColumn()
	return err == nil
}

// TotalColumn returns the time_records accumulator column for t.
// This switch is the only place an activity type becomes a column name.
func (t ActivityType) TotalColumn() (string, error) {
	switch t {
	case ActivityWork:
		return "total_work_time", nil
	case ActivityBreak:
		return "total_break_time", nil
	case ActivityLunch:
		return "total_lunch_time", nil
	case ActivityBathroom:
		return "total_bathroom_time", nil
	case ActivityMeeting:
		return "total_meeting_time", nil
	}
	return "", fmt.Errorf("unknown activity type %q", string(t))
}

// Label returns the human readable name of t
func (t ActivityType) Label() string {
	switch t {
	case ActivityWork:
		return "Working"
	case ActivityBreak:
		return "On break"
	case ActivityLunch:
		return "At lunch"
	case ActivityBathroom:
		return "Bathroom"
	case ActivityMeeting:
		return "In a meeting"
	case "":
		return "Idle"
	}
	return string(t)
}

// ActivityLog is one contiguous interval of a session tagged with a single activity
type ActivityLog struct {
	ID           uint         `gorm:"primarykey" json:"id"`
	RecordID     uint         `gorm:"not null;index" json:"record_id"` // owning session
	ActivityType ActivityType `gorm:"type:varchar(20);not null" json:"activity_type"`
	StartTime    time.Time    `gorm:"not null" json:"start_time"`
	EndTime      *time.Time   `gorm:"index" json:"end_time"`
	Duration     int64        `gorm:"not null;default:0" json:"duration"` // seconds, set at close
}

// IsOpen reports whether the log has not been closed yet
func (l ActivityLog) IsOpen() bool {
	return l.EndTime == nil
}

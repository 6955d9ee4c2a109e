package models

import (
	"time"
)

// DateLayout is the format of Session.Date and of every date exchanged with callers
const DateLayout = "2006-01-02"

// Session is one user's login-to-logout work period for a calendar date
type Session struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"not null;index:idx_time_records_user_date" json:"user_id"`
	LoginTime  time.Time  `gorm:"not null" json:"login_time"`
	LogoutTime *time.Time `json:"logout_time"`
	Date       string     `gorm:"type:varchar(10);not null;index:idx_time_records_user_date" json:"date"`

	// Accumulated seconds per activity type, folded in when an activity closes
	TotalWorkTime     int64 `gorm:"not null;default:0" json:"total_work_time"`
	TotalBreakTime    int64 `gorm:"not null;default:0" json:"total_break_time"`
	TotalLunchTime    int64 `gorm:"not null;default:0" json:"total_lunch_time"`
	TotalBathroomTime int64 `gorm:"not null;default:0" json:"total_bathroom_time"`
	TotalMeetingTime  int64 `gorm:"not null;default:0" json:"total_meeting_time"`

	// Relationships
	User User          `gorm:"foreignKey:UserID" json:"-"`
	Logs []ActivityLog `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the historical table name
func (Session) TableName() string {
	return "time_records"
}

// IsOpen reports whether the session has not been ended
func (s Session) IsOpen() bool {
	return s.LogoutTime == nil
}

// Total returns the accumulated seconds for activity type t
func (s Session) Total(t ActivityType) int64 {
	switch t {
	case ActivityWork:
		return s.TotalWorkTime
	case ActivityBreak:
		return s.TotalBreakTime
	case ActivityLunch:
		return s.TotalLunchTime
	case ActivityBathroom:
		return s.TotalBathroomTime
	case ActivityMeeting:
		return s.TotalMeetingTime
	}
	return 0
}

// SumTotals adds up every accumulator
func (s Session) SumTotals() int64 {
	var sum int64
	for _, t := range ActivityTypes() {
		sum += s.Total(t)
	}
	return sum
}

// ElapsedSeconds is the wall-clock time since login, up to logout for a closed session
func (s Session) ElapsedSeconds(now time.Time) int64 {
	end := now
	if s.LogoutTime != nil {
		end = *s.LogoutTime
	}
	return TruncSeconds(end.Sub(s.LoginTime))
}

// TruncSeconds converts d to whole seconds, dropping any fraction.
// Negative durations (clock stepped backwards) count as zero.
func TruncSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

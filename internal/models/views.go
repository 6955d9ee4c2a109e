package models

import (
	"time"
)

// SessionView is a session joined with its owner and current activity,
// as shown on the admin monitor and in reports
type SessionView struct {
	SessionID       uint         `json:"session_id"`
	UserID          uint         `json:"user_id"`
	Username        string       `json:"username"`
	FullName        string       `json:"full_name"`
	Date            string       `json:"date"`
	LoginTime       time.Time    `json:"login_time"`
	LogoutTime      *time.Time   `json:"logout_time"`
	CurrentActivity ActivityType `json:"current_activity,omitempty"`

	TotalWorkTime     int64 `json:"total_work_time"`
	TotalBreakTime    int64 `json:"total_break_time"`
	TotalLunchTime    int64 `json:"total_lunch_time"`
	TotalBathroomTime int64 `json:"total_bathroom_time"`
	TotalMeetingTime  int64 `json:"total_meeting_time"`
}

// NewSessionView builds the view for s; s.User must be loaded
func NewSessionView(s Session, current ActivityType) SessionView {
	return SessionView{
		SessionID:         s.ID,
		UserID:            s.UserID,
		Username:          s.User.Username,
		FullName:          s.User.FullName,
		Date:              s.Date,
		LoginTime:         s.LoginTime,
		LogoutTime:        s.LogoutTime,
		CurrentActivity:   current,
		TotalWorkTime:     s.TotalWorkTime,
		TotalBreakTime:    s.TotalBreakTime,
		TotalLunchTime:    s.TotalLunchTime,
		TotalBathroomTime: s.TotalBathroomTime,
		TotalMeetingTime:  s.TotalMeetingTime,
	}
}

// Stats is the live summary of one session
type Stats struct {
	SessionID         uint         `json:"session_id"`
	LoginTime         time.Time    `json:"login_time"`
	LogoutTime        *time.Time   `json:"logout_time"`
	CurrentActivity   ActivityType `json:"current_activity,omitempty"`
	ActivitySince     *time.Time   `json:"activity_since,omitempty"`
	TotalWorkTime     int64        `json:"total_work_time"`
	TotalBreakTime    int64        `json:"total_break_time"`
	TotalLunchTime    int64        `json:"total_lunch_time"`
	TotalBathroomTime int64        `json:"total_bathroom_time"`
	TotalMeetingTime  int64        `json:"total_meeting_time"`

	// Wall-clock seconds since login. Not the sum of the accumulators:
	// the open activity has not been folded in yet.
	TotalTime int64 `json:"total_time"`
}

package entity

import "time"

// AttendanceRecord is one row per (user, date). Repeated events for the same
// user and date merge into the existing row rather than appending.
type AttendanceRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_user_date;size:64"`
	Date      string    `json:"date" gorm:"uniqueIndex:idx_user_date;size:10"` // YYYY-MM-DD
	UserName  string    `json:"user_name" gorm:"size:191"`
	CheckIn   string    `json:"check_in" gorm:"size:32"`  // slack ts of the check-in message
	CheckOut  string    `json:"check_out" gorm:"size:32"` // slack ts of the check-out message, empty until seen
	ChannelID string    `json:"channel_id" gorm:"size:64"`
	UpdatedAt time.Time `json:"updated_at"`
}

package entity

import "time"

// Identity is a Slack account the relay may act as. AccessToken is the
// user-scoped token captured when the account owner authorizes the app.
type Identity struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	SlackUserID string    `json:"slack_user_id" gorm:"uniqueIndex;size:64"`
	DisplayName string    `json:"display_name" gorm:"size:191"`
	Avatar      string    `json:"avatar" gorm:"size:512"`
	AccessToken string    `json:"-" gorm:"size:512"`
	CreatedAt   time.Time `json:"created_at"`
}

type EnrollIdentityRequest struct {
	SlackUserID string `json:"slack_user_id" binding:"required"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	AccessToken string `json:"access_token" binding:"required"`
}

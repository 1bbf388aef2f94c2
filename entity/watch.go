package entity

import "gorm.io/gorm"

// WatchedChannel marks a Slack channel whose messages feed attendance
// ingestion. The deployment designates two of these (check-in, check-out).
type WatchedChannel struct {
	gorm.Model
	ChannelID string `json:"channel_id" gorm:"uniqueIndex;size:64"`
	Label     string `json:"label" gorm:"size:191"`
	// Purpose is "in" or "out"; it decides which side of the record an
	// event in this channel fills.
	Purpose string `json:"purpose" gorm:"size:8"`
}

type CreateWatchRequest struct {
	ChannelID string `json:"channel_id" binding:"required"`
	Label     string `json:"label"`
	Purpose   string `json:"purpose" binding:"required,oneof=in out"`
}

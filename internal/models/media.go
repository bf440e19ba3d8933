package models

import "time"

// ApprovedMedia is written once per fingerprint when a reviewer approves it.
type ApprovedMedia struct {
	URL               string `gorm:"primaryKey;index:idx_approved_url"`
	OriginalMessageID string `gorm:"not null"`
	PendingMessageID  string `gorm:"not null"`
	ApproverID        string
	ApprovedAt        time.Time `gorm:"not null"`
}

func (ApprovedMedia) TableName() string {
	return "approved_media"
}

// UserApprovalStat counts approved items per original author.
type UserApprovalStat struct {
	UserID              string `gorm:"primaryKey"`
	ApprovedUploadCount int64  `gorm:"default:0"`
}

func (UserApprovalStat) TableName() string {
	return "user_approval_stats"
}

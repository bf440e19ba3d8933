package repositories

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"media-approve/internal/models"
	"media-approve/pkg/botErrors"
)

const approvedCacheSize = 4096

// MediaRepository owns approved_media and user_approval_stats.
type MediaRepository struct {
	db       *gorm.DB
	approved *lru.Cache[string, struct{}]
	now      func() time.Time
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	cache, _ := lru.New[string, struct{}](approvedCacheSize)
	return &MediaRepository{db: db, approved: cache, now: time.Now}
}

// IsApproved reports whether url was ever approved. Storage errors read as false.
func (r *MediaRepository) IsApproved(ctx context.Context, url string) bool {
	// approval is never retracted, so positive answers stay valid
	if r.approved.Contains(url) {
		return true
	}

	var count int64
	err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM approved_media WHERE url = ?`, url).Scan(&count).Error
	if err != nil {
		log.WithError(err).WithField("url", url).Error("approved lookup failed")
		return false
	}
	if count > 0 {
		r.approved.Add(url, struct{}{})
		return true
	}
	return false
}

// RecordApproval inserts url once. A duplicate is a no-op; other failures are
// logged and returned wrapped in ErrStorage.
func (r *MediaRepository) RecordApproval(ctx context.Context, url, sourceMessageID, reviewMessageID, approverID string) error {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO approved_media (url, original_message_id, pending_message_id, approver_id, approved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
	`, url, sourceMessageID, reviewMessageID, approverID, r.now().UTC()).Error
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"url":            url,
			"review_message": reviewMessageID,
		}).Error("recording approval failed")
		return fmt.Errorf("%w: record approval: %v", botErrors.ErrStorage, err)
	}
	r.approved.Add(url, struct{}{})
	return nil
}

// IncrementStat adds count to the author's approved total, creating the row on first use.
func (r *MediaRepository) IncrementStat(ctx context.Context, userID string, count int) error {
	if count <= 0 || userID == "" {
		return nil
	}
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO user_approval_stats (user_id, approved_upload_count)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET approved_upload_count = user_approval_stats.approved_upload_count + excluded.approved_upload_count
	`, userID, count).Error
	if err != nil {
		log.WithError(err).WithField("user", userID).Error("incrementing approval stat failed")
		return fmt.Errorf("%w: increment stat: %v", botErrors.ErrStorage, err)
	}
	return nil
}

func (r *MediaRepository) Stat(ctx context.Context, userID string) (int64, error) {
	var stat models.UserApprovalStat
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&stat).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", botErrors.ErrStorage, err)
	}
	return stat.ApprovedUploadCount, nil
}

// TopAuthors lists authors by approved count, highest first.
func (r *MediaRepository) TopAuthors(ctx context.Context, limit int) ([]models.UserApprovalStat, error) {
	if limit <= 0 {
		limit = 10
	}
	var stats []models.UserApprovalStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT user_id, approved_upload_count
		FROM user_approval_stats
		ORDER BY approved_upload_count DESC, user_id
		LIMIT ?
	`, limit).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", botErrors.ErrStorage, err)
	}
	return stats, nil
}

func (r *MediaRepository) ApprovedCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ApprovedMedia{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", botErrors.ErrStorage, err)
	}
	return count, nil
}

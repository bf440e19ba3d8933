package services

import (
	"context"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/pkg/botErrors"
)

const DefaultMaxFiles = 10

// ApprovalChecker answers fingerprint lookups.
type ApprovalChecker interface {
	IsApproved(ctx context.Context, url string) bool
}

// Validator filters a source message down to submittable media. It never writes.
type Validator struct {
	approved ApprovalChecker
	maxFiles int
}

func NewValidator(approved ApprovalChecker, maxFiles int) *Validator {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Validator{approved: approved, maxFiles: maxFiles}
}

func (v *Validator) Validate(ctx context.Context, msg chat.Message) ([]models.AttachmentDescriptor, error) {
	if len(msg.Attachments) == 0 {
		return nil, &botErrors.ValidationError{Reason: botErrors.NoAttachments}
	}

	var eligible []models.AttachmentDescriptor
	for _, a := range msg.Attachments {
		d := models.NewAttachment(a.URL, a.Filename, a.ContentType)
		if d.IsMedia() && d.URL != "" {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return nil, &botErrors.ValidationError{Reason: botErrors.NoEligibleMedia}
	}

	fresh := make([]models.AttachmentDescriptor, 0, len(eligible))
	skipped := 0
	for _, d := range eligible {
		if v.approved.IsApproved(ctx, d.URL) {
			skipped++
			continue
		}
		fresh = append(fresh, d)
	}
	if len(fresh) == 0 {
		return nil, &botErrors.ValidationError{Reason: botErrors.AllAlreadyApproved, Skipped: skipped}
	}

	if len(fresh) > v.maxFiles {
		fresh = fresh[:v.maxFiles]
	}
	return fresh, nil
}

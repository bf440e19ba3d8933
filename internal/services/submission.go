package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
	"media-approve/internal/metrics"
	"media-approve/internal/models"
	"media-approve/internal/services/review"
	"media-approve/internal/utils"
	"media-approve/pkg/botErrors"
)

// Cooldown rate limits submitters.
type Cooldown interface {
	Acquire(ctx context.Context, userID string) (bool, time.Duration, error)
	Release(ctx context.Context, userID string) error
}

type SubmissionConfig struct {
	SubmitterGroupID string
	ReviewChatID     string
	MirrorEnabled    bool
}

type SubmitRequest struct {
	Submitter chat.User
	Source    chat.Message
}

type SubmitResult struct {
	ReviewMessageID string
	Files           int
}

// SubmissionService turns a source message into a pending review message.
type SubmissionService struct {
	cfg       SubmissionConfig
	directory chat.Directory
	cooldown  Cooldown
	validator *Validator
	codec     *review.Codec
	sender    chat.Sender
}

func NewSubmissionService(cfg SubmissionConfig, directory chat.Directory, cooldown Cooldown, validator *Validator, codec *review.Codec, sender chat.Sender) *SubmissionService {
	return &SubmissionService{
		cfg:       cfg,
		directory: directory,
		cooldown:  cooldown,
		validator: validator,
		codec:     codec,
		sender:    sender,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	logger := log.WithFields(log.Fields{
		"submitter": req.Submitter.ID,
		"source":    req.Source.ID,
		"chat":      req.Source.ChatID,
	})

	ok, err := s.directory.IsMember(ctx, s.cfg.SubmitterGroupID, req.Submitter.ID)
	if err != nil {
		logger.WithError(err).Error("submitter membership lookup failed")
		return nil, fmt.Errorf("%w: membership lookup failed", botErrors.ErrNoAccess)
	}
	if !ok {
		metrics.Submissions.WithLabelValues("no_access").Inc()
		return nil, botErrors.ErrNoAccess
	}

	if s.cooldown != nil {
		free, left, err := s.cooldown.Acquire(ctx, req.Submitter.ID)
		if err != nil {
			logger.WithError(err).Warn("cooldown check failed, letting submission through")
		} else if !free {
			metrics.Submissions.WithLabelValues("cooldown").Inc()
			return nil, &botErrors.CooldownError{Remaining: utils.FormatRemaining(left)}
		}
	}

	if req.Source.ID == "" {
		return nil, botErrors.ErrNoSource
	}

	files, err := s.validator.Validate(ctx, req.Source)
	if err != nil {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		logger.WithError(err).Info("submission refused")
		return nil, err
	}

	sub := models.PendingSubmission{
		SourceMessageID:    req.Source.ID,
		SourceChatID:       req.Source.ChatID,
		SourceChatTitle:    req.Source.ChatTitle,
		SourceLink:         req.Source.Link,
		SubmitterID:        req.Submitter.ID,
		OriginalAuthorID:   req.Source.AuthorID,
		OriginalAuthorName: req.Source.AuthorName,
		TicketNumber:       utils.TicketNumber(req.Source.ChatTitle),
		Attachments:        files,
	}

	controls := chat.PendingControls(s.cfg.MirrorEnabled)
	id, err := s.sender.Send(ctx, s.cfg.ReviewChatID, s.codec.Encode(sub, review.Pending), &controls)
	if err != nil {
		metrics.Submissions.WithLabelValues("delivery_failed").Inc()
		logger.WithError(err).Error("posting review message failed")
		if s.cooldown != nil {
			_ = s.cooldown.Release(ctx, req.Submitter.ID)
		}
		return nil, fmt.Errorf("%w: %v", botErrors.ErrDelivery, err)
	}

	metrics.Submissions.WithLabelValues("ok").Inc()
	logger.WithFields(log.Fields{"review_message": id, "files": len(files)}).Info("submission posted for review")
	return &SubmitResult{ReviewMessageID: id, Files: len(files)}, nil
}

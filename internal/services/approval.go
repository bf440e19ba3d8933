package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"media-approve/internal/chat"
	"media-approve/internal/logging"
	"media-approve/internal/metrics"
	"media-approve/internal/models"
	"media-approve/internal/services/gallery"
	"media-approve/internal/services/review"
	"media-approve/pkg/botErrors"
)

// Recorder is the write side of the approval store.
type Recorder interface {
	RecordApproval(ctx context.Context, url, sourceMessageID, reviewMessageID, approverID string) error
	IncrementStat(ctx context.Context, userID string, count int) error
}

type Uploader interface {
	Upload(ctx context.Context, item gallery.Item) gallery.Result
}

// Ledger remembers which review messages were already resolved.
type Ledger interface {
	MarkResolved(ctx context.Context, ref chat.MessageRef, status models.ReviewStatus) error
	Resolution(ctx context.Context, ref chat.MessageRef) (models.ReviewStatus, error)
}

type ReviewConfig struct {
	ReviewerGroupID string
	AlbumID         string
	MirrorEnabled   bool
	DenyReasonMin   int
	DenyReasonMax   int
}

// Interaction is one click (or dialog answer) on a review message.
type Interaction struct {
	ID    string
	Actor chat.User
	Ref   chat.MessageRef
	// Text is the current body of the review message.
	Text string
}

type ItemOutcome struct {
	Descriptor   models.AttachmentDescriptor
	RecordErr    error
	Attempted    bool
	Uploaded     bool
	UploadDetail string
	UploadErr    error
}

type ApprovalOutcome struct {
	Submission models.PendingSubmission
	// Declared is the file count shown on the review message. It exceeds
	// len(Items) when the attachment block was cut off.
	Declared        int
	Items           []ItemOutcome
	Recorded        int
	Mirrored        bool
	GallerySkipped  bool
	UploadAttempted int
	UploadSucceeded int
	StatErr         error
	RewriteErr      error
}

// UploadSummary is "S/A uploaded (F fail)"; empty when nothing was mirrored.
func (o *ApprovalOutcome) UploadSummary() string {
	if !o.Mirrored {
		return ""
	}
	return fmt.Sprintf("%d/%d uploaded (%d fail)", o.UploadSucceeded, o.UploadAttempted, o.UploadAttempted-o.UploadSucceeded)
}

// Report is the private notice for the approving reviewer.
func (o *ApprovalOutcome) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Approved %d item(s).", o.Recorded)
	if o.Declared > len(o.Items) {
		fmt.Fprintf(&sb, "\nOnly %d of %d files were listed on the review message; approve the rest from the original message.", len(o.Items), o.Declared)
	}
	if s := o.UploadSummary(); s != "" {
		sb.WriteString("\nGallery: " + s)
	} else if o.GallerySkipped {
		sb.WriteString("\nGallery: skipped")
	}
	for _, item := range o.Items {
		switch {
		case item.RecordErr != nil:
			fmt.Fprintf(&sb, "\n- %s: not recorded (storage error)", item.Descriptor.Filename)
		case item.Attempted && !item.Uploaded:
			fmt.Fprintf(&sb, "\n- %s: %s", item.Descriptor.Filename, item.UploadDetail)
		}
	}
	if o.StatErr != nil {
		sb.WriteString("\n(Warning: Failed to update author statistics.)")
	}
	if o.RewriteErr != nil {
		sb.WriteString("\n(Warning: Failed to update original message.)")
	}
	return sb.String()
}

type DenialOutcome struct {
	Submission models.PendingSubmission
	Reason     string
}

// ReviewService drives a review message from Pending to Approved or Denied.
type ReviewService struct {
	cfg       ReviewConfig
	codec     *review.Codec
	store     Recorder
	uploader  Uploader
	directory chat.Directory
	sender    chat.Sender
	ledger    Ledger
	now       func() time.Time

	inflight sync.Map
}

func NewReviewService(cfg ReviewConfig, codec *review.Codec, store Recorder, uploader Uploader, directory chat.Directory, sender chat.Sender, ledger Ledger) *ReviewService {
	if cfg.DenyReasonMin <= 0 {
		cfg.DenyReasonMin = 5
	}
	if cfg.DenyReasonMax < cfg.DenyReasonMin {
		cfg.DenyReasonMax = 1000
	}
	return &ReviewService{
		cfg:       cfg,
		codec:     codec,
		store:     store,
		uploader:  uploader,
		directory: directory,
		sender:    sender,
		ledger:    ledger,
		now:       time.Now,
	}
}

func (s *ReviewService) MirrorEnabled() bool {
	return s.cfg.MirrorEnabled
}

func (s *ReviewService) Approve(ctx context.Context, in Interaction, mirror bool) (*ApprovalOutcome, error) {
	logger := s.logger(in).WithField("mirror", mirror)

	if err := s.authorize(ctx, in.Actor); err != nil {
		metrics.Transitions.WithLabelValues("approved", "denied_access").Inc()
		return nil, err
	}
	release, err := s.acquire(in.Ref)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.pendingState(ctx, in)
	if err != nil {
		metrics.Transitions.WithLabelValues("approved", "rejected").Inc()
		return nil, err
	}
	sub := state.Submission
	if len(sub.Attachments) == 0 {
		return nil, fmt.Errorf("%w: no readable attachment lines", botErrors.ErrParse)
	}

	out := &ApprovalOutcome{
		Submission: sub,
		Declared:   review.FilesCount(in.Text),
		Items:      make([]ItemOutcome, len(sub.Attachments)),
	}
	for i, a := range sub.Attachments {
		out.Items[i].Descriptor = a
		if err := s.store.RecordApproval(ctx, a.URL, sub.SourceMessageID, in.Ref.MessageID, in.Actor.ID); err != nil {
			out.Items[i].RecordErr = err
			continue
		}
		out.Recorded++
	}
	metrics.ApprovedItems.Add(float64(out.Recorded))

	out.Mirrored = mirror && s.cfg.MirrorEnabled
	out.GallerySkipped = !mirror && s.cfg.MirrorEnabled
	if out.Mirrored {
		s.mirror(ctx, sub, out)
	}

	if out.Recorded > 0 && sub.OriginalAuthorID != "" {
		out.StatErr = s.store.IncrementStat(ctx, sub.OriginalAuthorID, out.Recorded)
	}

	res := review.Resolution{
		Status:         models.StatusApproved,
		ActorID:        in.Actor.ID,
		At:             s.now(),
		GallerySkipped: out.GallerySkipped,
		GallerySummary: out.UploadSummary(),
	}
	if out.GallerySkipped {
		res.GallerySummary = "Skipped"
	}
	if err := s.sender.Edit(ctx, in.Ref, s.codec.Encode(sub, res), &chat.Controls{}); err != nil {
		logger.WithError(err).Error("rewriting approved review message failed")
		out.RewriteErr = fmt.Errorf("%w: %v", botErrors.ErrDelivery, err)
	}
	s.markResolved(ctx, in, models.StatusApproved)

	metrics.Transitions.WithLabelValues("approved", "ok").Inc()
	logger.WithFields(log.Fields{
		"recorded": out.Recorded,
		"uploaded": out.UploadSucceeded,
		"attempts": out.UploadAttempted,
	}).Info("review approved")
	return out, nil
}

// mirror fans out one upload per recorded item and waits for all of them.
func (s *ReviewService) mirror(ctx context.Context, sub models.PendingSubmission, out *ApprovalOutcome) {
	var g errgroup.Group
	for i := range out.Items {
		item := &out.Items[i]
		if item.RecordErr != nil {
			continue
		}
		item.Attempted = true
		out.UploadAttempted++

		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("file", item.Descriptor.Filename).Errorf("gallery upload panicked: %v", r)
					item.Uploaded = false
					item.UploadDetail = "Gallery Upload Error"
					item.UploadErr = fmt.Errorf("upload panic: %v", r)
				}
			}()
			res := s.uploader.Upload(ctx, gallery.Item{
				URL:          item.Descriptor.URL,
				Filename:     item.Descriptor.Filename,
				ContentType:  item.Descriptor.ContentType,
				AlbumID:      s.cfg.AlbumID,
				TicketNumber: sub.TicketNumber,
				AuthorName:   sub.OriginalAuthorName,
			})
			item.Uploaded, item.UploadDetail, item.UploadErr = res.OK, res.Detail, res.Err
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range out.Items {
		if item.Attempted && item.Uploaded {
			out.UploadSucceeded++
		}
	}
}

// CheckDeny runs the guards of a denial without changing anything, so the
// reason dialog is only opened for a message that can still be denied.
func (s *ReviewService) CheckDeny(ctx context.Context, in Interaction) error {
	if err := s.authorize(ctx, in.Actor); err != nil {
		return err
	}
	_, err := s.pendingState(ctx, in)
	return err
}

func (s *ReviewService) Deny(ctx context.Context, in Interaction, reason string) (*DenialOutcome, error) {
	logger := s.logger(in)

	if err := s.authorize(ctx, in.Actor); err != nil {
		metrics.Transitions.WithLabelValues("denied", "denied_access").Inc()
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if err := s.checkReason(reason); err != nil {
		return nil, err
	}
	release, err := s.acquire(in.Ref)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.pendingState(ctx, in)
	if err != nil {
		metrics.Transitions.WithLabelValues("denied", "rejected").Inc()
		return nil, err
	}

	text := s.codec.Encode(state.Submission, review.Resolution{
		Status:  models.StatusDenied,
		ActorID: in.Actor.ID,
		At:      s.now(),
		Reason:  reason,
	})
	if err := s.sender.Edit(ctx, in.Ref, text, &chat.Controls{}); err != nil {
		logger.WithError(err).Error("rewriting denied review message failed")
		return nil, fmt.Errorf("%w: %v", botErrors.ErrDelivery, err)
	}
	s.markResolved(ctx, in, models.StatusDenied)

	metrics.Transitions.WithLabelValues("denied", "ok").Inc()
	logger.Info("review denied")
	return &DenialOutcome{Submission: state.Submission, Reason: reason}, nil
}

func (s *ReviewService) checkReason(reason string) error {
	n := utf8.RuneCountInString(reason)
	if n < s.cfg.DenyReasonMin {
		return fmt.Errorf("%w: need at least %d characters", botErrors.ErrReasonTooShort, s.cfg.DenyReasonMin)
	}
	if n > s.cfg.DenyReasonMax {
		return fmt.Errorf("%w: at most %d characters", botErrors.ErrReasonTooLong, s.cfg.DenyReasonMax)
	}
	return nil
}

func (s *ReviewService) authorize(ctx context.Context, actor chat.User) error {
	ok, err := s.directory.IsMember(ctx, s.cfg.ReviewerGroupID, actor.ID)
	if err != nil {
		log.WithError(err).WithField("user", actor.ID).Error("reviewer membership lookup failed")
		return fmt.Errorf("%w: membership lookup failed", botErrors.ErrNoAccess)
	}
	if !ok {
		return botErrors.ErrNoAccess
	}
	return nil
}

// acquire keeps two decisions on the same review message from running at once.
func (s *ReviewService) acquire(ref chat.MessageRef) (func(), error) {
	key := ref.ChatID + ":" + ref.MessageID
	if _, busy := s.inflight.LoadOrStore(key, struct{}{}); busy {
		return nil, botErrors.ErrReviewInProgress
	}
	return func() { s.inflight.Delete(key) }, nil
}

// pendingState decodes the message and checks that it is still unresolved.
func (s *ReviewService) pendingState(ctx context.Context, in Interaction) (*models.ReviewState, error) {
	state, err := s.codec.Decode(in.Text)
	if err != nil {
		s.logger(in).WithError(err).Error("review message could not be decoded")
		return nil, err
	}
	if !review.IsPending(in.Text) || state.Status != models.StatusPending {
		return nil, botErrors.ErrAlreadyProcessed
	}
	if s.ledger != nil {
		status, err := s.ledger.Resolution(ctx, in.Ref)
		if err != nil {
			s.logger(in).WithError(err).Warn("resolution ledger lookup failed")
		} else if status != "" {
			return nil, fmt.Errorf("%w: already %s", botErrors.ErrAlreadyProcessed, strings.ToLower(string(status)))
		}
	}
	return state, nil
}

func (s *ReviewService) markResolved(ctx context.Context, in Interaction, status models.ReviewStatus) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.MarkResolved(ctx, in.Ref, status); err != nil {
		s.logger(in).WithError(err).Warn("writing resolution ledger failed")
	}
}

func (s *ReviewService) logger(in Interaction) *log.Entry {
	return logging.Review(in.Ref.ChatID, in.Ref.MessageID).WithFields(log.Fields{
		"interaction": in.ID,
		"actor":       in.Actor.ID,
	})
}

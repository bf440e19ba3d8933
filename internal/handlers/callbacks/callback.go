package callbacks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/internal/repositories"
	"media-approve/internal/services"
	"media-approve/internal/services/commands"
	"media-approve/pkg/botErrors"
)

// Reviews is the approval state machine as seen by button handlers.
type Reviews interface {
	Approve(ctx context.Context, in services.Interaction, mirror bool) (*services.ApprovalOutcome, error)
	CheckDeny(ctx context.Context, in services.Interaction) error
	Deny(ctx context.Context, in services.Interaction, reason string) (*services.DenialOutcome, error)
}

// Dialogs holds open deny dialogs, one per reviewer.
type Dialogs interface {
	Open(ctx context.Context, reviewerID string, d repositories.DenyDialog) error
	Get(ctx context.Context, reviewerID string) (*repositories.DenyDialog, error)
	Take(ctx context.Context, reviewerID string) (*repositories.DenyDialog, error)
	Close(ctx context.Context, reviewerID string) error
}

// Notifier tells submitters about decisions. Delivery failures are logged by the implementation.
type Notifier interface {
	SendApproved(ctx context.Context, sub models.PendingSubmission, reviewerID string, recorded int)
	SendDenied(ctx context.Context, sub models.PendingSubmission, reviewerID, reason string)
}

type Config struct {
	DenyReasonMin int
	DenyReasonMax int
	DialogTTL     string
}

// Handler processes CALLBACK_QUERY events and the reason dialog that follows a denial.
type Handler struct {
	cfg      Config
	reviews  Reviews
	dialogs  Dialogs
	sender   chat.Sender
	answerer chat.Answerer
	notifier Notifier
}

func NewHandler(cfg Config, reviews Reviews, dialogs Dialogs, sender chat.Sender, answerer chat.Answerer, notifier Notifier) *Handler {
	return &Handler{
		cfg:      cfg,
		reviews:  reviews,
		dialogs:  dialogs,
		sender:   sender,
		answerer: answerer,
		notifier: notifier,
	}
}

func (h *Handler) Handle(ctx context.Context, cb chat.Callback) {
	control := chat.ParseControl(cb.Data)
	logger := log.WithFields(log.Fields{
		"user":    cb.From.ID,
		"control": control.String(),
		"chat":    cb.Ref.ChatID,
		"message": cb.Ref.MessageID,
	})
	logger.Debug("callback received")

	switch control {
	case chat.ControlApprove:
		h.handleApprove(ctx, cb, true)
	case chat.ControlApproveSkipGallery:
		h.handleApprove(ctx, cb, false)
	case chat.ControlDeny:
		h.handleDeny(ctx, cb)
	case chat.ControlDenyCancel:
		h.handleDenyCancel(ctx, cb)
	case chat.ControlNoop:
		h.answer(ctx, cb, commands.Disabled)
	default:
		logger.Warn("unknown callback data")
		h.answer(ctx, cb, "")
	}
}

func (h *Handler) answer(ctx context.Context, cb chat.Callback, text string) {
	if err := h.answerer.Answer(ctx, cb.QueryID, text); err != nil {
		log.WithError(err).WithField("query", cb.QueryID).Warn("callback answer failed")
	}
}

func (h *Handler) notify(ctx context.Context, userID, text string) {
	if err := h.sender.Notify(ctx, userID, text); err != nil {
		log.WithError(err).WithField("user", userID).Error("private reply failed")
	}
}

func interaction(actor chat.User, ref chat.MessageRef, text string) services.Interaction {
	return services.Interaction{ID: uuid.NewString(), Actor: actor, Ref: ref, Text: text}
}

func isUserError(err error) bool {
	var verr *botErrors.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, botErrors.ErrNoAccess) ||
		errors.Is(err, botErrors.ErrAlreadyProcessed) ||
		errors.Is(err, botErrors.ErrReasonTooShort) ||
		errors.Is(err, botErrors.ErrReasonTooLong)
}

package callbacks

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
	"media-approve/internal/repositories"
	"media-approve/internal/services/commands"
	"media-approve/pkg/botErrors"
)

// handleDeny checks the request can still be denied and asks the reviewer for a reason.
func (h *Handler) handleDeny(ctx context.Context, cb chat.Callback) {
	if err := h.reviews.CheckDeny(ctx, interaction(cb.From, cb.Ref, cb.Text)); err != nil {
		h.answer(ctx, cb, commands.ErrorText(err))
		return
	}
	if err := h.dialogs.Open(ctx, cb.From.ID, repositories.DenyDialog{Ref: cb.Ref, Text: cb.Text}); err != nil {
		log.WithError(err).WithField("user", cb.From.ID).Error("opening deny dialog failed")
		h.answer(ctx, cb, commands.ErrorText(fmt.Errorf("%w: %v", botErrors.ErrStorage, err)))
		return
	}
	h.answer(ctx, cb, "")
	prompt := commands.DenyPrompt(h.cfg.DenyReasonMin, h.cfg.DenyReasonMax, h.cfg.DialogTTL)
	if _, err := h.sender.Send(ctx, cb.From.ID, prompt, &chat.Controls{DenyCancel: true}); err != nil {
		log.WithError(err).WithField("user", cb.From.ID).Error("sending deny prompt failed")
	}
}

func (h *Handler) handleDenyCancel(ctx context.Context, cb chat.Callback) {
	if _, err := h.dialogs.Take(ctx, cb.From.ID); errors.Is(err, botErrors.ErrNoDialog) {
		h.answer(ctx, cb, commands.NoDenyDialog)
		return
	} else if err != nil {
		log.WithError(err).WithField("user", cb.From.ID).Warn("closing deny dialog failed")
	}
	h.answer(ctx, cb, commands.DenyCancelled)
	if cb.Ref.MessageID != "" {
		if err := h.sender.Edit(ctx, cb.Ref, commands.DenyCancelled, &chat.Controls{}); err != nil {
			log.WithError(err).Debug("rewriting deny prompt failed")
		}
	}
}

// CompleteDeny treats text as the reason for the reviewer's open deny dialog.
// It reports false when the reviewer has no open dialog.
func (h *Handler) CompleteDeny(ctx context.Context, reviewer chat.User, text string) bool {
	d, err := h.dialogs.Get(ctx, reviewer.ID)
	if errors.Is(err, botErrors.ErrNoDialog) {
		return false
	}
	if err != nil {
		log.WithError(err).WithField("user", reviewer.ID).Error("reading deny dialog failed")
		return false
	}

	out, err := h.reviews.Deny(ctx, interaction(reviewer, d.Ref, d.Text), text)
	if errors.Is(err, botErrors.ErrReasonTooShort) || errors.Is(err, botErrors.ErrReasonTooLong) {
		h.notify(ctx, reviewer.ID, commands.ErrorText(err))
		return true
	}
	if cerr := h.dialogs.Close(ctx, reviewer.ID); cerr != nil {
		log.WithError(cerr).WithField("user", reviewer.ID).Warn("closing deny dialog failed")
	}
	if err != nil {
		if !isUserError(err) {
			log.WithError(err).WithField("message", d.Ref.MessageID).Error("denial failed")
		}
		h.notify(ctx, reviewer.ID, commands.ErrorText(err))
		return true
	}

	h.notify(ctx, reviewer.ID, commands.Denied(out.Reason))
	h.notifier.SendDenied(ctx, out.Submission, reviewer.ID, out.Reason)
	return true
}

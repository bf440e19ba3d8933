package callbacks

import (
	"context"

	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
	"media-approve/internal/services/commands"
)

// handleApprove acknowledges the press right away; mirroring may take minutes,
// so the result goes to the reviewer as a private message.
func (h *Handler) handleApprove(ctx context.Context, cb chat.Callback, mirror bool) {
	h.answer(ctx, cb, commands.Approving)

	out, err := h.reviews.Approve(ctx, interaction(cb.From, cb.Ref, cb.Text), mirror)
	if err != nil {
		if !isUserError(err) {
			log.WithError(err).WithField("message", cb.Ref.MessageID).Error("approval failed")
		}
		h.notify(ctx, cb.From.ID, commands.ErrorText(err))
		return
	}
	h.notify(ctx, cb.From.ID, out.Report())
	h.notifier.SendApproved(ctx, out.Submission, cb.From.ID, out.Recorded)
}

// Package notifier tells submitters how their request ended.
package notifier

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/internal/utils"
)

type Notifier struct {
	sender chat.Sender
}

func New(sender chat.Sender) *Notifier {
	return &Notifier{sender: sender}
}

// SendApproved tells the submitter that a reviewer approved their files.
func (n *Notifier) SendApproved(ctx context.Context, sub models.PendingSubmission, reviewerID string, recorded int) {
	if sub.SubmitterID == "" || sub.SubmitterID == reviewerID {
		return
	}
	text := fmt.Sprintf("✅ %s approved your submission (%d file(s))", utils.CreateUserLink(reviewerID), recorded)
	if sub.TicketNumber != "" && sub.TicketNumber != "unknown" {
		text += fmt.Sprintf(" from ticket #%s", sub.TicketNumber)
	}
	n.send(ctx, sub.SubmitterID, text+".")
}

// SendDenied tells the submitter why their request was denied.
func (n *Notifier) SendDenied(ctx context.Context, sub models.PendingSubmission, reviewerID, reason string) {
	if sub.SubmitterID == "" || sub.SubmitterID == reviewerID {
		return
	}
	text := fmt.Sprintf("❌ %s denied your submission.\nReason: %s", utils.CreateUserLink(reviewerID), reason)
	n.send(ctx, sub.SubmitterID, text)
}

func (n *Notifier) send(ctx context.Context, userID, text string) {
	if err := n.sender.Notify(ctx, userID, text); err != nil {
		log.WithError(err).WithField("user", userID).Warn("submitter notice failed")
	}
}

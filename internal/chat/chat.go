// Package chat is the boundary between the approval pipeline and the messenger.
package chat

import (
	"context"
	"strings"
)

type Attachment struct {
	URL         string
	Filename    string
	ContentType string
}

// Message is a source message somebody wants to submit.
type Message struct {
	ID          string
	ChatID      string
	ChatTitle   string
	AuthorID    string
	AuthorName  string
	Link        string
	Text        string
	Attachments []Attachment
}

type MessageRef struct {
	ChatID    string
	MessageID string
}

type User struct {
	ID   string
	Name string
}

// Incoming is a message addressed to the bot.
type Incoming struct {
	From    User
	ChatID  string
	Private bool
	Text    string
	// Message is the incoming message itself, with its own attachments.
	Message Message
	// Reply is the replied-to or forwarded message, if any.
	Reply *Message
}

// Callback is a button press.
type Callback struct {
	QueryID string
	From    User
	Data    string
	Ref     MessageRef
	// Text is the body of the message carrying the button.
	Text string
}

// Controls holds the enabled state of the bot's buttons. All false means no keyboard.
type Controls struct {
	Approve            bool
	ApproveSkipGallery bool
	Deny               bool
	DenyCancel         bool
}

func (c Controls) Any() bool {
	return c.Approve || c.ApproveSkipGallery || c.Deny || c.DenyCancel
}

// PendingControls is the button set of an unresolved review message.
func PendingControls(mirrorEnabled bool) Controls {
	return Controls{Approve: true, ApproveSkipGallery: mirrorEnabled, Deny: true}
}

// Control is the closed set of interactive controls the bot renders.
type Control int

const (
	ControlUnknown Control = iota
	ControlApprove
	ControlApproveSkipGallery
	ControlDeny
	ControlDenyCancel
	ControlNoop
)

const (
	DataApprove            = "/review_approve"
	DataApproveSkipGallery = "/review_approve_skip"
	DataDeny               = "/review_deny"
	DataDenyCancel         = "/review_deny_cancel"
	DataNoop               = "/review_noop"
)

var controlData = map[string]Control{
	DataApprove:            ControlApprove,
	DataApproveSkipGallery: ControlApproveSkipGallery,
	DataDeny:               ControlDeny,
	DataDenyCancel:         ControlDenyCancel,
	DataNoop:               ControlNoop,
}

func ParseControl(data string) Control {
	if c, ok := controlData[strings.TrimSpace(data)]; ok {
		return c
	}
	return ControlUnknown
}

func (c Control) String() string {
	switch c {
	case ControlApprove:
		return "approve"
	case ControlApproveSkipGallery:
		return "approve_skip_gallery"
	case ControlDeny:
		return "deny"
	case ControlDenyCancel:
		return "deny_cancel"
	case ControlNoop:
		return "noop"
	}
	return "unknown"
}

// Sender delivers and rewrites messages.
type Sender interface {
	Send(ctx context.Context, chatID, text string, controls *Controls) (string, error)
	Edit(ctx context.Context, ref MessageRef, text string, controls *Controls) error
	// Notify sends a private notice to a single user.
	Notify(ctx context.Context, userID, text string) error
}

// Directory resolves permission-group membership.
type Directory interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// Answerer acknowledges a button press with a short toast.
type Answerer interface {
	Answer(ctx context.Context, queryID, text string) error
}

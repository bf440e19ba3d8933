package models

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxURLLength         = 1000
	MaxFilenameLength    = 200
	MaxContentTypeLength = 100
	UnknownContentType   = "unknown"
	UnknownTicket        = "unknown"
)

type ReviewStatus string

const (
	StatusPending  ReviewStatus = "Pending"
	StatusApproved ReviewStatus = "Approved"
	StatusDenied   ReviewStatus = "Denied"
	// StatusUnknown is a resolved message whose outcome could not be read back.
	StatusUnknown ReviewStatus = "Unknown"
)

// AttachmentDescriptor describes one submitted file. Build it with NewAttachment.
type AttachmentDescriptor struct {
	URL         string
	Filename    string
	ContentType string
}

// NewAttachment bounds and cleans the fields so that they survive the review message encoding.
func NewAttachment(url, filename, contentType string) AttachmentDescriptor {
	filename = strings.NewReplacer("|", "_", "\n", "_", "\r", "_").Replace(filename)
	contentType = strings.NewReplacer("|", "_", "\n", "", "\r", "").Replace(strings.TrimSpace(contentType))
	url = strings.NewReplacer("\n", "", "\r", "").Replace(url)
	if contentType == "" {
		contentType = UnknownContentType
	}
	return AttachmentDescriptor{
		URL:         truncate(strings.TrimSpace(url), MaxURLLength),
		Filename:    truncate(filename, MaxFilenameLength),
		ContentType: truncate(contentType, MaxContentTypeLength),
	}
}

// IsMedia reports whether the descriptor is an image or a video.
func (a AttachmentDescriptor) IsMedia() bool {
	return strings.HasPrefix(a.ContentType, "image/") || strings.HasPrefix(a.ContentType, "video/")
}

// PendingSubmission is the whole payload of a review message.
type PendingSubmission struct {
	SourceMessageID    string
	SourceChatID       string
	SourceChatTitle    string
	SourceLink         string
	SubmitterID        string
	OriginalAuthorID   string
	OriginalAuthorName string
	TicketNumber       string
	Attachments        []AttachmentDescriptor
}

// Normalize strips characters the visible section cannot carry.
func (s PendingSubmission) Normalize() PendingSubmission {
	s.SourceChatTitle = CleanText(s.SourceChatTitle)
	s.OriginalAuthorName = CleanText(s.OriginalAuthorName)
	s.TicketNumber = CleanText(s.TicketNumber)
	if s.TicketNumber == "" {
		s.TicketNumber = UnknownTicket
	}
	if f := strings.Fields(s.SourceLink); len(f) > 0 {
		s.SourceLink = f[0]
	} else {
		s.SourceLink = ""
	}
	return s
}

// ReviewState is decoded from a review message on every interaction.
type ReviewState struct {
	Status     ReviewStatus
	Submission PendingSubmission
}

// CleanText removes backticks and line breaks from identity text.
func CleanText(s string) string {
	s = strings.NewReplacer("`", "'", "\n", " ", "\r", " ").Replace(s)
	return strings.TrimSpace(s)
}

// truncate keeps at most max characters.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Package review encodes a pending submission into the text of its review message
// and reads it back on every interaction.
package review

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"media-approve/internal/models"
	"media-approve/internal/utils"
	"media-approve/pkg/botErrors"
)

const (
	DefaultFooterLimit = 2048
	TruncationMarker   = "...(details trimmed)"

	// PendingToken is present in the title and status of an unresolved review only.
	PendingToken = "Pending"

	TitlePending  = "📥 Media Approval Request (Pending)"
	TitleApproved = "✅ Media Approved"
	TitleDenied   = "❌ Media Denied"

	StatusSection  = "Status"
	GallerySection = "Gallery Status"
	IDsSection     = "IDs"

	statusPendingText = "⏳ Pending Approval"
)

const (
	keyOriginalMsg = "OriginalMsg"
	keySourceChat  = "SourceChat"
	keySubmitter   = "Submitter"
	keyAuthor      = "Author"
)

const (
	labelSubmitter   = "Submitted by"
	labelAuthor      = "Original Author"
	labelAuthorName  = "Original Author Name"
	labelSourceChat  = "Source Chat"
	labelTicket      = "Ticket Number"
	labelOriginalMsg = "Original Message"
	labelFiles       = "Files Submitted"
)

// Resolution is the decision rendered into the status section.
type Resolution struct {
	Status         models.ReviewStatus
	ActorID        string
	At             time.Time
	Reason         string
	GallerySkipped bool
	// GallerySummary is shown as its own field when not empty.
	GallerySummary string
}

var Pending = Resolution{Status: models.StatusPending}

type Codec struct {
	FooterLimit int
}

func NewCodec(footerLimit int) *Codec {
	if footerLimit <= 0 {
		footerLimit = DefaultFooterLimit
	}
	return &Codec{FooterLimit: footerLimit}
}

func (c *Codec) Encode(sub models.PendingSubmission, res Resolution) string {
	return c.Build(sub, res).String()
}

// Build lays out the review body without rendering it.
func (c *Codec) Build(sub models.PendingSubmission, res Resolution) *Body {
	sub = sub.Normalize()

	origin := sub.SourceLink
	if origin == "" {
		origin = sub.SourceMessageID
	}

	b := &Body{
		Title: title(res.Status),
		Description: []string{
			fmt.Sprintf("%s: %s (`%s`)", labelSubmitter, utils.CreateUserLink(sub.SubmitterID), sub.SubmitterID),
			fmt.Sprintf("%s: %s (`%s`)", labelAuthor, utils.CreateUserLink(sub.OriginalAuthorID), sub.OriginalAuthorID),
			fmt.Sprintf("%s: `%s`", labelAuthorName, sub.OriginalAuthorName),
			fmt.Sprintf("%s: `%s`", labelSourceChat, sub.SourceChatTitle),
			fmt.Sprintf("%s: `%s`", labelTicket, sub.TicketNumber),
			fmt.Sprintf("%s: %s", labelOriginalMsg, origin),
			fmt.Sprintf("%s: %d", labelFiles, len(sub.Attachments)),
		},
	}

	b.SetField(StatusSection, statusText(res))
	if res.Status == models.StatusApproved && res.GallerySummary != "" {
		b.SetField(GallerySection, res.GallerySummary)
	}
	b.SetField(IDsSection, strings.Join([]string{
		keyOriginalMsg + ": " + sub.SourceMessageID,
		keySourceChat + ": " + sub.SourceChatID,
		keySubmitter + ": " + sub.SubmitterID,
		keyAuthor + ": " + sub.OriginalAuthorID,
	}, "\n"))
	b.Footer = c.footer(sub.Attachments)
	return b
}

func (c *Codec) footer(attachments []models.AttachmentDescriptor) string {
	limit := c.FooterLimit
	if limit <= 0 {
		limit = DefaultFooterLimit
	}
	lines := make([]string, 0, len(attachments))
	size := 0
	for _, a := range attachments {
		line := a.URL + "|" + a.Filename + "|" + a.ContentType
		n := utf8.RuneCountInString(line) + 1
		if size+n > limit {
			lines = append(lines, TruncationMarker)
			break
		}
		lines = append(lines, line)
		size += n
	}
	return strings.Join(lines, "\n")
}

func (c *Codec) Decode(text string) (*models.ReviewState, error) {
	b := ParseBody(text)

	ids, ok := b.Field(IDsSection)
	if !ok || strings.TrimSpace(ids) == "" {
		return nil, fmt.Errorf("%w: identifier block is missing", botErrors.ErrParse)
	}
	if strings.TrimSpace(b.Footer) == "" {
		return nil, fmt.Errorf("%w: attachment block is missing", botErrors.ErrParse)
	}

	sub := models.PendingSubmission{}
	for _, line := range strings.Split(ids, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case keyOriginalMsg:
			sub.SourceMessageID = value
		case keySourceChat:
			sub.SourceChatID = value
		case keySubmitter:
			sub.SubmitterID = value
		case keyAuthor:
			sub.OriginalAuthorID = value
		}
	}

	for _, line := range b.Description {
		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch label {
		case labelAuthorName:
			sub.OriginalAuthorName = unquote(value)
		case labelSourceChat:
			sub.SourceChatTitle = unquote(value)
		case labelTicket:
			sub.TicketNumber = unquote(value)
		case labelOriginalMsg:
			if value != sub.SourceMessageID {
				sub.SourceLink = value
			}
		}
	}
	if sub.TicketNumber == "" {
		sub.TicketNumber = models.UnknownTicket
	}

	for _, line := range strings.Split(b.Footer, "\n") {
		if line == TruncationMarker {
			break
		}
		a, ok := parseAttachment(line)
		if !ok {
			log.WithField("line", line).Warn("skipping unreadable attachment line")
			continue
		}
		sub.Attachments = append(sub.Attachments, a)
	}

	status, found := b.Field(StatusSection)
	return &models.ReviewState{
		Status:     decodeStatus(b.Title, status, found),
		Submission: sub,
	}, nil
}

// IsPending checks the liveness token in the title line only.
func IsPending(text string) bool {
	title, _, _ := strings.Cut(strings.TrimLeft(text, " \t\r\n"), "\n")
	return strings.Contains(title, PendingToken)
}

// decodeStatus reads the status field. A message without one counts as
// pending as long as its title still says so.
func decodeStatus(title, status string, found bool) models.ReviewStatus {
	if strings.Contains(title, PendingToken) && (!found || strings.TrimSpace(status) == "" || strings.Contains(status, PendingToken)) {
		return models.StatusPending
	}
	first, _, _ := strings.Cut(status, "\n")
	switch {
	case strings.Contains(first, string(models.StatusApproved)):
		return models.StatusApproved
	case strings.Contains(first, string(models.StatusDenied)):
		return models.StatusDenied
	}
	return models.StatusUnknown
}

// parseAttachment reads url|filename|contentType. Filenames never carry a pipe,
// so the two rightmost separators are authoritative.
func parseAttachment(line string) (models.AttachmentDescriptor, bool) {
	line = strings.TrimRight(line, " \t")
	last := strings.LastIndex(line, "|")
	if last < 0 {
		return models.AttachmentDescriptor{}, false
	}
	mid := strings.LastIndex(line[:last], "|")
	if mid < 0 {
		return models.AttachmentDescriptor{}, false
	}
	a := models.AttachmentDescriptor{
		URL:         line[:mid],
		Filename:    line[mid+1 : last],
		ContentType: line[last+1:],
	}
	if strings.TrimSpace(a.URL) == "" || strings.TrimSpace(a.ContentType) == "" {
		return models.AttachmentDescriptor{}, false
	}
	return a, true
}

func title(status models.ReviewStatus) string {
	switch status {
	case models.StatusApproved:
		return TitleApproved
	case models.StatusDenied:
		return TitleDenied
	}
	return TitlePending
}

func statusText(res Resolution) string {
	switch res.Status {
	case models.StatusApproved:
		s := fmt.Sprintf("✅ Approved by %s on %s", utils.CreateUserLink(res.ActorID), utils.FormatTimestamp(res.At))
		if res.GallerySkipped {
			s += " (Gallery Skipped)"
		}
		return s
	case models.StatusDenied:
		return fmt.Sprintf("❌ Denied by %s on %s\nReason: %s", utils.CreateUserLink(res.ActorID), utils.FormatTimestamp(res.At), res.Reason)
	}
	return statusPendingText
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
		return s[1 : len(s)-1]
	}
	return s
}

// FilesCount reads the declared attachment count, which may exceed what the
// metadata block still carries after truncation.
func FilesCount(text string) int {
	for _, line := range ParseBody(text).Description {
		label, value, found := strings.Cut(line, ":")
		if found && label == labelFiles {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err == nil {
				return n
			}
		}
	}
	return 0
}

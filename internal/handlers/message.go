package handlers

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/internal/services"
	"media-approve/internal/services/commands"
	"media-approve/internal/utils"
)

const topAuthors = 10

type Submitter interface {
	Submit(ctx context.Context, req services.SubmitRequest) (*services.SubmitResult, error)
}

// DenyCompleter consumes a reviewer's free text as a denial reason.
type DenyCompleter interface {
	CompleteDeny(ctx context.Context, reviewer chat.User, text string) bool
}

type Stats interface {
	Stat(ctx context.Context, userID string) (int64, error)
	TopAuthors(ctx context.Context, limit int) ([]models.UserApprovalStat, error)
}

type MessageConfig struct {
	CommunityID     string
	ReviewerGroupID string
	// Command is an extra submit command besides /upload and /submit.
	Command       string
	MirrorEnabled bool
	Cooldown      string
}

// MessageHandler handles NEW_MESSAGE events.
type MessageHandler struct {
	cfg         MessageConfig
	submissions Submitter
	dialogs     DenyCompleter
	stats       Stats
	directory   chat.Directory
	sender      chat.Sender
}

func NewMessageHandler(cfg MessageConfig, submissions Submitter, dialogs DenyCompleter, stats Stats, directory chat.Directory, sender chat.Sender) *MessageHandler {
	return &MessageHandler{
		cfg:         cfg,
		submissions: submissions,
		dialogs:     dialogs,
		stats:       stats,
		directory:   directory,
		sender:      sender,
	}
}

func (h *MessageHandler) Handle(ctx context.Context, in chat.Incoming) {
	text := strings.TrimSpace(strings.Trim(in.Text, "\u00A0"))
	userID := in.From.ID

	if h.cfg.CommunityID != "" && !utils.InCommunity(userID, h.cfg.CommunityID) {
		log.WithField("user", userID).Debug("ignoring message from outside the community")
		return
	}

	command, args := splitCommand(text)
	switch {
	case command == "/start" || command == "/help":
		h.reply(ctx, userID, commands.Help(h.cfg.MirrorEnabled, h.cfg.Cooldown))
	case h.isSubmitCommand(command):
		h.submit(ctx, in)
	case command == "/stats":
		h.showStats(ctx, userID, args)
	case in.Private && command == "":
		if h.dialogs.CompleteDeny(ctx, in.From, text) {
			return
		}
		h.reply(ctx, userID, commands.Unknown)
	case in.Private:
		h.reply(ctx, userID, commands.Unknown)
	}
}

func (h *MessageHandler) isSubmitCommand(command string) bool {
	switch command {
	case "/upload", "/submit":
		return true
	case "":
		return false
	}
	return command == h.cfg.Command
}

func (h *MessageHandler) submit(ctx context.Context, in chat.Incoming) {
	var source chat.Message
	switch {
	case in.Reply != nil:
		source = *in.Reply
	case len(in.Message.Attachments) > 0:
		source = in.Message
	default:
		h.reply(ctx, in.From.ID, commands.NoSource)
		return
	}

	res, err := h.submissions.Submit(ctx, services.SubmitRequest{Submitter: in.From, Source: source})
	if err != nil {
		h.reply(ctx, in.From.ID, commands.ErrorText(err))
		return
	}
	h.reply(ctx, in.From.ID, commands.Submitted(res.Files))
}

func (h *MessageHandler) showStats(ctx context.Context, userID string, args []string) {
	ok, err := h.directory.IsMember(ctx, h.cfg.ReviewerGroupID, userID)
	if err != nil || !ok {
		h.reply(ctx, userID, "You do not have permission to do this.")
		return
	}

	if len(args) > 0 {
		target := args[0]
		if id, ok := utils.ParseUserLink(target); ok {
			target = id
		}
		count, err := h.stats.Stat(ctx, target)
		if err != nil {
			log.WithError(err).Error("reading author stat failed")
			h.reply(ctx, userID, commands.ErrorText(err))
			return
		}
		h.reply(ctx, userID, commands.UserStat(target, count))
		return
	}

	top, err := h.stats.TopAuthors(ctx, topAuthors)
	if err != nil {
		log.WithError(err).Error("reading top authors failed")
		h.reply(ctx, userID, commands.ErrorText(err))
		return
	}
	h.reply(ctx, userID, commands.Stats(top))
}

func (h *MessageHandler) reply(ctx context.Context, userID, text string) {
	if err := h.sender.Notify(ctx, userID, text); err != nil {
		log.WithError(err).WithField("user", userID).Error("reply failed")
	}
}

// splitCommand returns the lower-cased leading /command and its arguments.
// Group mentions like /upload@bot are reduced to /upload.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", fields
	}
	command := strings.ToLower(fields[0])
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}
	return command, fields[1:]
}

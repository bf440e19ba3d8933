// Package vkbot adapts the VK Teams bot API to the chat boundary.
package vkbot

import (
	"context"
	"fmt"

	botgolang "github.com/mail-ru-im/bot-golang"
	log "github.com/sirupsen/logrus"

	"media-approve/internal/chat"
)

const privateChat = "private"

type Options struct {
	Token  string
	APIURL string
	Debug  bool
}

// Client implements chat.Sender, chat.Directory and chat.Answerer on top of a bot.
type Client struct {
	bot   *botgolang.Bot
	files *FileResolver
}

func New(opts Options) (*Client, error) {
	botOpts := []botgolang.BotOption{botgolang.BotDebug(opts.Debug)}
	if opts.APIURL != "" {
		botOpts = append(botOpts, botgolang.BotApiURL(opts.APIURL))
	}
	bot, err := botgolang.NewBot(opts.Token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect to bot: %w", err)
	}
	log.Info("bot connected")
	return &Client{bot: bot, files: NewFileResolver(opts.APIURL, opts.Token)}, nil
}

func (c *Client) Updates(ctx context.Context) <-chan botgolang.Event {
	return c.bot.GetUpdatesChannel(ctx)
}

func (c *Client) Send(_ context.Context, chatID, text string, controls *chat.Controls) (string, error) {
	msg := c.bot.NewTextMessage(chatID, text)
	if controls != nil && controls.Any() {
		msg.AttachInlineKeyboard(keyboard(*controls))
	}
	if err := msg.Send(); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// Edit rewrites a message. Empty controls drop the keyboard.
func (c *Client) Edit(_ context.Context, ref chat.MessageRef, text string, controls *chat.Controls) error {
	msg := c.bot.NewTextMessage(ref.ChatID, text)
	msg.ID = ref.MessageID
	if controls != nil {
		msg.AttachInlineKeyboard(keyboard(*controls))
	}
	return msg.Edit()
}

func (c *Client) Notify(ctx context.Context, userID, text string) error {
	_, err := c.Send(ctx, userID, text, nil)
	return err
}

func (c *Client) Answer(_ context.Context, queryID, text string) error {
	return c.bot.NewButtonResponse(queryID, "", text, false).Send()
}

// IsMember lists the group chat and looks for the user in it.
func (c *Client) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	members, err := c.bot.GetChatMembers(groupID)
	if err != nil {
		return false, fmt.Errorf("chat members of %s: %w", groupID, err)
	}
	for _, m := range members {
		if m.User.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// Incoming converts a NEW_MESSAGE payload, resolving attached files to download links.
func (c *Client) Incoming(ctx context.Context, p *botgolang.EventPayload) chat.Incoming {
	in := chat.Incoming{
		From:    user(p.From),
		ChatID:  p.Chat.ID,
		Private: p.Chat.Type == privateChat,
		Text:    p.Text,
		Message: chat.Message{
			ID:         p.MsgID,
			ChatID:     p.Chat.ID,
			ChatTitle:  p.Chat.Title,
			AuthorID:   p.From.ID,
			AuthorName: user(p.From).Name,
			Text:       p.Text,
		},
	}

	for _, part := range p.Parts {
		switch part.Type {
		case botgolang.FILE:
			in.Message.Attachments = append(in.Message.Attachments, c.resolve(ctx, part.Payload.FileID)...)
		case botgolang.REPLY, botgolang.FORWARD:
			if in.Reply != nil {
				continue
			}
			quoted := part.Payload.PartMessage
			in.Reply = &chat.Message{
				ID:          quoted.MsgID,
				ChatID:      p.Chat.ID,
				ChatTitle:   p.Chat.Title,
				AuthorID:    quoted.From.ID,
				AuthorName:  user(quoted.From).Name,
				Text:        quoted.Text,
				Attachments: c.resolve(ctx, FileIDs(quoted.Text)...),
			}
		}
	}
	return in
}

// Callback converts a CALLBACK_QUERY payload.
func (c *Client) Callback(p *botgolang.EventPayload) chat.Callback {
	query := p.CallbackQuery()
	msg := p.CallbackMessage()
	return chat.Callback{
		QueryID: query.QueryID,
		From:    user(p.From),
		Data:    query.CallbackData,
		Ref:     chat.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID},
		Text:    msg.Text,
	}
}

func (c *Client) resolve(ctx context.Context, fileIDs ...string) []chat.Attachment {
	var out []chat.Attachment
	for _, id := range fileIDs {
		a, err := c.files.Resolve(ctx, id)
		if err != nil {
			log.WithError(err).WithField("file", id).Warn("file info lookup failed")
			continue
		}
		out = append(out, a)
	}
	return out
}

func user(c botgolang.Contact) chat.User {
	name := c.FirstName
	if c.LastName != "" {
		name += " " + c.LastName
	}
	return chat.User{ID: c.ID, Name: name}
}

package app

import (
	"context"

	botgolang "github.com/mail-ru-im/bot-golang"
	log "github.com/sirupsen/logrus"
)

func (a *App) Updates(ctx context.Context, e botgolang.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("event", e.Type).Errorf("handler panicked: %v", r)
		}
	}()

	switch e.Type {
	case botgolang.NEW_MESSAGE:
		a.messages.Handle(ctx, a.bot.Incoming(ctx, &e.Payload))
	case botgolang.CALLBACK_QUERY:
		a.callbacks.Handle(ctx, a.bot.Callback(&e.Payload))
	}
}

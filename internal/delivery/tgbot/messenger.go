package tgbot

import (
	tele "gopkg.in/telebot.v3"

	"github.com/p2p60/intake-bot/internal/notify"
)

type botMessenger struct {
	bot *tele.Bot
}

// NewMessenger adapts the bot transport to the notifier's Messenger.
func NewMessenger(bot *tele.Bot) notify.Messenger {
	return &botMessenger{bot: bot}
}

func (m *botMessenger) SendTo(recipient int64, text string) error {
	_, err := m.bot.Send(&tele.User{ID: recipient}, text)
	return err
}

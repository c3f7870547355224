package tgbot

import (
	tele "gopkg.in/telebot.v3"

	"github.com/p2p60/intake-bot/internal/dialogue"
)

// menuKeyboard is the /start menu. The web-app button only appears when a
// form URL is configured.
func (h *BotHandler) menuKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, 7)
	if h.webAppURL != "" {
		rows = append(rows, menu.Row(menu.WebApp("Open the form", &tele.WebApp{URL: h.webAppURL})))
	}
	rows = append(rows,
		menu.Row(menu.Data("Start exchange", "start_exchange")),
		menu.Row(menu.Data("Current rates", "rate_info")),
		menu.Row(menu.Data("Connect exchange/wallet", "connect_start")),
		menu.Row(menu.Data("My connections", "my_connections")),
		menu.Row(menu.Data("How it works", "how_it_works")),
		menu.Row(menu.Data("Support", "support")),
	)
	menu.Inline(rows...)
	return menu
}

// promptMarkup renders an engine prompt as transport buttons: inline option
// buttons for choices, a contact-request reply keyboard for the phone step,
// nothing for free text.
func promptMarkup(prompt dialogue.Prompt) *tele.ReplyMarkup {
	if prompt.RequestContact {
		markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
		markup.Reply(markup.Row(markup.Contact("Share contact")))
		return markup
	}

	if prompt.Choice == "" || len(prompt.Options) == 0 {
		return nil
	}

	markup := &tele.ReplyMarkup{}
	row := make([]tele.Btn, 0, 2)
	rows := make([]tele.Row, 0, (len(prompt.Options)+1)/2)
	for _, option := range prompt.Options {
		row = append(row, markup.Data(option.Label, prompt.Choice, option.Key))
		if len(row) == 2 {
			rows = append(rows, markup.Row(row...))
			row = row[:0:0]
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}
	markup.Inline(rows...)
	return markup
}

func (h *BotHandler) sendPrompt(c tele.Context, prompt dialogue.Prompt) error {
	markup := promptMarkup(prompt)
	if markup == nil {
		return c.Send(prompt.Text)
	}
	return c.Send(prompt.Text, markup)
}

package tgbot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/p2p60/intake-bot/internal/config"
	"github.com/p2p60/intake-bot/internal/dialogue"
	"github.com/p2p60/intake-bot/internal/models"
	"github.com/p2p60/intake-bot/internal/repositories"
	"github.com/p2p60/intake-bot/internal/services"
	"github.com/p2p60/intake-bot/internal/utils"
)

func RegisterHandlers(
	bot *tele.Bot,
	admin tele.MiddlewareFunc,
	engine *dialogue.Engine,
	sessions *dialogue.Store,
	intakeService *services.IntakeService,
	requestRepo *repositories.RequestRepo,
	connectionRepo *repositories.ConnectionRepo,
	ratesService *services.RatesService,
	texts config.Texts,
	webAppURL string,
	exportDir string,
) {
	handler := &BotHandler{
		engine:      engine,
		sessions:    sessions,
		intake:      intakeService,
		requests:    requestRepo,
		connections: connectionRepo,
		rates:       ratesService,
		dateRanges:  utils.NewDateRangeParser(),
		texts:       texts,
		webAppURL:   webAppURL,
		exportDir:   exportDir,
	}

	bot.Handle("/start", handler.Start)
	bot.Handle("/cancel", handler.Cancel)
	bot.Handle("/connections", handler.ListConnections)

	operators := bot.Group()
	operators.Use(admin)
	operators.Handle("/stats", handler.Stats)
	operators.Handle("/export", handler.Export)

	bot.Handle(&tele.Btn{Unique: "start_exchange"}, handler.StartExchange)
	bot.Handle(&tele.Btn{Unique: "rate_info"}, handler.RateInfo)
	bot.Handle(&tele.Btn{Unique: "how_it_works"}, handler.HowItWorks)
	bot.Handle(&tele.Btn{Unique: "support"}, handler.Support)
	bot.Handle(&tele.Btn{Unique: "connect_start"}, handler.StartConnect)
	bot.Handle(&tele.Btn{Unique: "my_connections"}, handler.ListConnections)

	for _, unique := range []string{
		"direction", "from", "to", "payment", "city", "urgency", "confirm",
		"connect_kind", "exchange", "network", "connect_confirm",
	} {
		bot.Handle(&tele.Btn{Unique: unique}, handler.Choice)
	}

	bot.Handle(tele.OnText, handler.Text)
	bot.Handle(tele.OnContact, handler.Contact)
	bot.Handle(tele.OnWebApp, handler.WebAppSubmission)
}

type BotHandler struct {
	engine      *dialogue.Engine
	sessions    *dialogue.Store
	intake      *services.IntakeService
	requests    *repositories.RequestRepo
	connections *repositories.ConnectionRepo
	rates       *services.RatesService
	dateRanges  *utils.DateRangeParser
	texts       config.Texts
	webAppURL   string
	exportDir   string
}

func (h *BotHandler) Start(c tele.Context) error {
	ctx := requestContext(c)
	h.sessions.Clear(c.Sender().ID)
	ratesText := h.rates.RatesText(ctx)
	return c.Send(h.texts.Intro+"\n\n"+ratesText, h.menuKeyboard())
}

func (h *BotHandler) Cancel(c tele.Context) error {
	h.sessions.Clear(c.Sender().ID)
	return c.Send("Ok, cancelled. Send /start to begin again.")
}

func (h *BotHandler) StartExchange(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	session := h.sessions.Get(c.Sender().ID)
	return h.sendPrompt(c, h.engine.StartExchange(session))
}

func (h *BotHandler) StartConnect(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	session := h.sessions.Get(c.Sender().ID)
	return h.sendPrompt(c, h.engine.StartConnect(session))
}

func (h *BotHandler) RateInfo(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	ctx := requestContext(c)
	return c.Send(h.rates.RatesText(ctx) + "\n\n" + h.texts.RateInfo)
}

func (h *BotHandler) HowItWorks(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send(h.texts.HowItWorks)
}

func (h *BotHandler) Support(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send(h.texts.Support)
}

// Choice handles every inline option press. The engine validates the key
// against the state's option set, so stale buttons from an earlier prompt
// simply re-prompt.
func (h *BotHandler) Choice(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	key := c.Data()
	if args := c.Args(); len(args) > 0 {
		key = args[0]
	}
	session := h.sessions.Get(c.Sender().ID)
	result := h.engine.Advance(session, dialogue.Input{Kind: dialogue.InputChoice, Value: key})
	return h.handleResult(c, result)
}

func (h *BotHandler) Text(c tele.Context) error {
	session := h.sessions.Get(c.Sender().ID)
	_, prevState, _ := session.Snapshot()
	result := h.engine.Advance(session, dialogue.Input{Kind: dialogue.InputText, Value: c.Text()})
	if result.Kind == dialogue.ResultPrompt && prevState == dialogue.StateContact {
		// The contact step showed a reply keyboard; drop it before the summary.
		if err := c.Send("Thanks!", &tele.ReplyMarkup{RemoveKeyboard: true}); err != nil {
			return err
		}
	}
	return h.handleResult(c, result)
}

func (h *BotHandler) Contact(c tele.Context) error {
	contact := c.Message().Contact
	if contact == nil {
		return nil
	}
	session := h.sessions.Get(c.Sender().ID)
	result := h.engine.Advance(session, dialogue.Input{Kind: dialogue.InputContact, Value: contact.PhoneNumber})
	if result.Kind == dialogue.ResultPrompt {
		if err := c.Send("Thanks!", &tele.ReplyMarkup{RemoveKeyboard: true}); err != nil {
			return err
		}
	}
	return h.handleResult(c, result)
}

// WebAppSubmission accepts the all-at-once structured form, bypassing the
// dialogue. A payload without a readable phone is rejected outright.
func (h *BotHandler) WebAppSubmission(c tele.Context) error {
	webAppData := c.Message().WebAppData
	if webAppData == nil {
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(webAppData.Data), &payload); err != nil {
		return c.Send("Couldn't read the form data. Please try again.")
	}

	answers, err := h.engine.SubmitDirect(payload)
	if err != nil {
		return c.Send("Can't see a phone number. Check the form and try again.")
	}
	return h.finalizeExchange(c, answers)
}

func (h *BotHandler) handleResult(c tele.Context, result dialogue.Result) error {
	switch result.Kind {
	case dialogue.ResultPrompt:
		return h.sendPrompt(c, *result.Prompt)
	case dialogue.ResultInvalid:
		return c.Send(result.ErrorText)
	case dialogue.ResultComplete:
		if result.Flow == dialogue.FlowConnect {
			return h.finalizeConnection(c, result.Answers)
		}
		return h.finalizeExchange(c, result.Answers)
	case dialogue.ResultCancelled:
		h.sessions.Clear(c.Sender().ID)
		return c.Send("Connection cancelled. You can start over with /start.")
	default:
		return nil
	}
}

func (h *BotHandler) finalizeExchange(c tele.Context, answers map[string]any) error {
	ctx := requestContext(c)
	identity := senderIdentity(c)

	req, isDuplicate, err := h.intake.Finalize(ctx, identity, answers)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to finalize request", "error", err)
		return c.Send("Something went wrong saving your request. Please try again.")
	}
	h.sessions.Clear(c.Sender().ID)

	if isDuplicate {
		return c.Send(h.texts.Duplicate)
	}
	return c.Send(fmt.Sprintf("%s\n\nYour request number: #%d", h.texts.ThankYou, req.ID))
}

func (h *BotHandler) finalizeConnection(c tele.Context, answers map[string]any) error {
	ctx := requestContext(c)
	identity := senderIdentity(c)

	connection := models.Connection{
		TgUserID:     identity.TgUserID(),
		TgUsername:   identity.TgUsername(),
		Kind:         models.ConnectionKind(answerString(answers, "kind")),
		ExchangeName: answerString(answers, "exchange_name"),
		Network:      answerString(answers, "network"),
		Identifier:   answerString(answers, "identifier"),
	}

	if _, err := h.connections.SaveConnection(connection); err != nil {
		slog.ErrorContext(ctx, "Failed to save connection", "error", err)
		return c.Send("Something went wrong saving the connection. Please try again.")
	}
	h.sessions.Clear(c.Sender().ID)
	return c.Send("Connection saved. You can continue with the exchange.")
}

func (h *BotHandler) ListConnections(c tele.Context) error {
	if c.Callback() != nil {
		if err := c.Respond(); err != nil {
			return err
		}
	}

	ctx := requestContext(c)
	rows, err := h.connections.ListConnections(strconv.FormatInt(c.Sender().ID, 10))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list connections", "error", err)
		return c.Send("Couldn't load your connections. Please try again.")
	}
	if len(rows) == 0 {
		return c.Send("No connections yet.")
	}

	text := "Your connections"
	for _, row := range rows {
		kind := "Wallet"
		if row.Kind == models.ConnectionExchange {
			kind = "Exchange"
		}
		text += fmt.Sprintf(
			"\n%s: %s • %s • %s",
			kind,
			orDash(row.ExchangeName),
			orDash(row.Network),
			utils.MaskIdentifier(row.Identifier),
		)
	}
	return c.Send(text)
}

func (h *BotHandler) Stats(c tele.Context) error {
	ctx := requestContext(c)
	stats, err := h.intake.Stats()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load stats", "error", err)
		return c.Send("Couldn't load the stats. Please try again.")
	}
	return c.Send(fmt.Sprintf("Request stats:\nTotal: %d\nHigh priority: %d", stats.Total, stats.HighPriority))
}

func (h *BotHandler) Export(c tele.Context) error {
	ctx := requestContext(c)

	start, end, err := h.dateRanges.ParseRange(c.Args(), time.Now())
	if err != nil {
		return c.Send("Usage: /export YYYY-MM-DD YYYY-MM-DD")
	}

	path, err := services.ExportCSV(h.requests, start, end, h.exportDir)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export requests", "error", err)
		return c.Send("Export failed. Please try again.")
	}

	document := &tele.Document{File: tele.FromDisk(path), FileName: filepath.Base(path)}
	return c.Send(document)
}

func requestContext(c tele.Context) context.Context {
	if ctx, ok := c.Get("requestContext").(context.Context); ok {
		return ctx
	}
	return context.Background()
}

func senderIdentity(c tele.Context) models.Identity {
	sender := c.Sender()
	if sender == nil {
		return models.Identity{}
	}
	return models.Identity{UserID: sender.ID, Username: sender.Username}
}

func answerString(answers map[string]any, key string) string {
	value, _ := answers[key].(string)
	return value
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

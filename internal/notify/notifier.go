package notify

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/p2p60/intake-bot/internal/models"
)

// Messenger delivers a plain-text message to one chat recipient. Implemented
// over the bot transport; kept as an interface so tests can observe sends.
type Messenger interface {
	SendTo(recipient int64, text string) error
}

type Config struct {
	OperatorIDs      []int64
	CRMWebhookURL    string
	SheetsWebhookURL string
	CSVPath          string
	Timeout          time.Duration
}

// Notifier fans a finalized request out to every configured sink. Sinks are
// independent: one failing webhook, recipient or file write never blocks the
// others, and no sink failure surfaces to the end user.
type Notifier struct {
	messenger Messenger
	cfg       Config
	client    *http.Client
	csvMu     sync.Mutex
}

func NewNotifier(messenger Messenger, cfg Config) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Notifier{
		messenger: messenger,
		cfg:       cfg,
		client:    &http.Client{},
	}
}

// WebhookPayload is the wire format shared by the CRM and spreadsheet sinks.
type WebhookPayload struct {
	CreatedAt     string   `json:"created_at"`
	Direction     string   `json:"direction"`
	FromCurrency  string   `json:"from_currency"`
	ToCurrency    string   `json:"to_currency"`
	Amount        string   `json:"amount"`
	PaymentMethod string   `json:"payment_method"`
	City          string   `json:"city"`
	Urgency       string   `json:"urgency"`
	Phone         string   `json:"phone"`
	Priority      string   `json:"priority"`
	TgUserID      string   `json:"tg_user_id"`
	TgUsername    string   `json:"tg_username"`
}

// Dispatch delivers the request to all sinks in parallel and waits for every
// attempt to finish or time out. Duplicate submissions only alert operators;
// external webhooks and the append log are skipped because the ledger row is
// already on file.
func (n *Notifier) Dispatch(ctx context.Context, req models.ExchangeRequest, isDuplicate bool) {
	payload := buildPayload(req)
	summary := FormatRequestMessage(req)

	var wg sync.WaitGroup

	if !isDuplicate {
		for _, url := range []string{n.cfg.CRMWebhookURL, n.cfg.SheetsWebhookURL} {
			if url == "" {
				continue
			}
			wg.Add(1)
			go func(url string) {
				defer wg.Done()
				n.postWebhook(ctx, url, payload)
			}(url)
		}

		if n.cfg.CSVPath != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := n.appendCSV(payload); err != nil {
					slog.Error("CSV append failed", "path", n.cfg.CSVPath, "error", err)
				}
			}()
		}
	}

	for _, operatorID := range n.cfg.OperatorIDs {
		wg.Add(1)
		go func(operatorID int64) {
			defer wg.Done()
			if err := n.messenger.SendTo(operatorID, summary); err != nil {
				slog.Error("Failed to notify operator", "operator_id", operatorID, "error", err)
			}
		}(operatorID)
	}

	wg.Wait()
}

// FormatRequestMessage renders the operator alert, including the full
// unmasked contact.
func FormatRequestMessage(req models.ExchangeRequest) string {
	telegram := req.TgUsername
	if telegram == "" {
		telegram = req.TgUserID
	}
	return fmt.Sprintf(
		"⚡️ New P2P request\nPriority: %s\nDirection: %s\nYou give: %s\nYou receive: %s\nAmount: %s\nMethod: %s\nLocation: %s\nUrgency: %s\nContact: %s\nTelegram: %s",
		req.Priority.Label(),
		orDash(req.DirectionLabel),
		orDash(req.FromCurrency),
		orDash(req.ToCurrency),
		orDash(req.AmountText),
		orDash(req.PaymentMethod),
		orDash(req.City),
		orDash(req.UrgencyLabel),
		orDash(req.Phone),
		orDash(telegram),
	)
}

func (n *Notifier) postWebhook(ctx context.Context, url string, payload WebhookPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Webhook payload marshal failed", "url", url, "error", err)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("Webhook request build failed", "url", url, "error", err)
		return
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := n.client.Do(request)
	if err != nil {
		slog.Error("Webhook push failed", "url", url, "error", err)
		return
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, 500))
		slog.Error("Webhook push failed", "url", url, "status", response.StatusCode, "body", string(snippet))
	}
}

var csvHeader = []string{
	"created_at", "direction", "from_currency", "to_currency", "amount",
	"payment_method", "city", "urgency", "phone", "priority",
	"tg_user_id", "tg_username",
}

// appendCSV writes one row to the local append-only log, adding the header
// only when the file does not exist yet.
func (n *Notifier) appendCSV(payload WebhookPayload) error {
	n.csvMu.Lock()
	defer n.csvMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(n.cfg.CSVPath), 0o755); err != nil {
		return fmt.Errorf("creating csv directory: %w", err)
	}

	_, statErr := os.Stat(n.cfg.CSVPath)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(n.cfg.CSVPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening csv log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("writing csv header: %w", err)
		}
	}
	row := []string{
		payload.CreatedAt, payload.Direction, payload.FromCurrency,
		payload.ToCurrency, payload.Amount, payload.PaymentMethod,
		payload.City, payload.Urgency, payload.Phone, payload.Priority,
		payload.TgUserID, payload.TgUsername,
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

func buildPayload(req models.ExchangeRequest) WebhookPayload {
	return WebhookPayload{
		CreatedAt:     req.CreatedAt.Format("2006-01-02 15:04:05"),
		Direction:     req.DirectionLabel,
		FromCurrency:  req.FromCurrency,
		ToCurrency:    req.ToCurrency,
		Amount:        req.AmountText,
		PaymentMethod: req.PaymentMethod,
		City:          req.City,
		Urgency:       req.UrgencyLabel,
		Phone:         req.Phone,
		Priority:      string(req.Priority),
		TgUserID:      req.TgUserID,
		TgUsername:    req.TgUsername,
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

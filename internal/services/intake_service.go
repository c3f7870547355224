package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/p2p60/intake-bot/internal/models"
	"github.com/p2p60/intake-bot/internal/notify"
	"github.com/p2p60/intake-bot/internal/repositories"
)

type RequestLedger interface {
	SaveRequest(req models.ExchangeRequest) (int64, bool, error)
	Stats() (repositories.Stats, error)
}

// IntakeService owns the finalize path: it turns a completed answer set into
// a persisted, classified request and fans it out to the configured sinks.
type IntakeService struct {
	ledger     RequestLedger
	notifier   *notify.Notifier
	highAmount float64
}

func NewIntakeService(ledger RequestLedger, notifier *notify.Notifier, highAmount float64) *IntakeService {
	return &IntakeService{ledger: ledger, notifier: notifier, highAmount: highAmount}
}

// Finalize persists a completed request and dispatches notifications. The
// ledger write is the only fatal step: a duplicate is a normal outcome, and
// sink failures never surface. Returns the stored request and whether it was
// already on file.
func (s *IntakeService) Finalize(ctx context.Context, identity models.Identity, answers map[string]any) (models.ExchangeRequest, bool, error) {
	req := buildRequest(identity, answers)
	req.Priority = Classify(req.UrgencyKey, req.AmountValue, s.highAmount)

	rawPayload, err := json.Marshal(rawSnapshot(req, answers))
	if err != nil {
		return models.ExchangeRequest{}, false, fmt.Errorf("failed to snapshot request payload: %w", err)
	}
	req.RawPayload = string(rawPayload)

	id, isDuplicate, err := s.ledger.SaveRequest(req)
	if err != nil {
		return models.ExchangeRequest{}, false, fmt.Errorf("failed to save request: %w", err)
	}
	req.ID = id
	if isDuplicate {
		req.DuplicateCount++
	}

	// Duplicates skip external webhooks but still alert operators so staff
	// see the repeat contact.
	s.notifier.Dispatch(ctx, req, isDuplicate)

	return req, isDuplicate, nil
}

// Stats proxies the ledger aggregates for the operator command.
func (s *IntakeService) Stats() (repositories.Stats, error) {
	return s.ledger.Stats()
}

func buildRequest(identity models.Identity, answers map[string]any) models.ExchangeRequest {
	req := models.ExchangeRequest{
		CreatedAt:      time.Now().UTC(),
		TgUserID:       identity.TgUserID(),
		TgUsername:     identity.TgUsername(),
		DirectionKey:   stringAnswer(answers, "direction_key"),
		DirectionLabel: stringAnswer(answers, "direction_label"),
		FromCurrency:   stringAnswer(answers, "from_currency"),
		ToCurrency:     stringAnswer(answers, "to_currency"),
		AmountText:     stringAnswer(answers, "amount_text"),
		PaymentMethod:  stringAnswer(answers, "payment_method"),
		City:           stringAnswer(answers, "city"),
		UrgencyKey:     stringAnswer(answers, "urgency_key"),
		UrgencyLabel:   stringAnswer(answers, "urgency_label"),
		Phone:          stringAnswer(answers, "phone"),
	}
	if value, ok := answers["amount_value"].(float64); ok {
		req.AmountValue = &value
	}
	return req
}

func rawSnapshot(req models.ExchangeRequest, answers map[string]any) map[string]any {
	snapshot := make(map[string]any, len(answers)+4)
	for key, value := range answers {
		snapshot[key] = value
	}
	snapshot["submission_id"] = uuid.New().String()
	snapshot["created_at"] = req.CreatedAt.Format("2006-01-02 15:04:05")
	snapshot["tg_user_id"] = req.TgUserID
	snapshot["tg_username"] = req.TgUsername
	return snapshot
}

func stringAnswer(answers map[string]any, key string) string {
	value, _ := answers[key].(string)
	return value
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p60/intake-bot/internal/models"
	"github.com/p2p60/intake-bot/internal/notify"
	"github.com/p2p60/intake-bot/internal/repositories"
)

type fakeLedger struct {
	saved       []models.ExchangeRequest
	nextID      int64
	isDuplicate bool
	err         error
}

func (f *fakeLedger) SaveRequest(req models.ExchangeRequest) (int64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	f.saved = append(f.saved, req)
	return f.nextID, f.isDuplicate, nil
}

func (f *fakeLedger) Stats() (repositories.Stats, error) {
	return repositories.Stats{Total: int64(len(f.saved))}, nil
}

type nopMessenger struct{}

func (nopMessenger) SendTo(int64, string) error { return nil }

func testIntakeService(ledger *fakeLedger) *IntakeService {
	notifier := notify.NewNotifier(nopMessenger{}, notify.Config{})
	return NewIntakeService(ledger, notifier, 5000)
}

func completedAnswers() map[string]any {
	return map[string]any{
		"direction_key":   "exchange",
		"direction_label": "Exchange",
		"from_currency":   "USD",
		"to_currency":     "USDT",
		"amount_value":    6000.0,
		"amount_text":     "6000",
		"payment_method":  "Cash",
		"city":            "Lisbon",
		"urgency_key":     "flexible",
		"urgency_label":   "1-3 days",
		"phone":           "79261234567",
	}
}

func TestFinalize_PersistsClassifiedRequest(t *testing.T) {
	ledger := &fakeLedger{nextID: 42}
	service := testIntakeService(ledger)
	identity := models.Identity{UserID: 100500, Username: "trader"}

	req, isDuplicate, err := service.Finalize(context.Background(), identity, completedAnswers())
	require.NoError(t, err)
	assert.False(t, isDuplicate)
	assert.Equal(t, int64(42), req.ID)

	require.Len(t, ledger.saved, 1)
	stored := ledger.saved[0]
	assert.Equal(t, "100500", stored.TgUserID)
	assert.Equal(t, "@trader", stored.TgUsername)
	assert.Equal(t, "79261234567", stored.Phone)
	// 6000 over the 5000 threshold upgrades a flexible request.
	assert.Equal(t, models.PriorityHigh, stored.Priority)
	require.NotNil(t, stored.AmountValue)
	assert.Equal(t, 6000.0, *stored.AmountValue)
}

func TestFinalize_RawPayloadSnapshot(t *testing.T) {
	ledger := &fakeLedger{nextID: 1}
	service := testIntakeService(ledger)

	_, _, err := service.Finalize(context.Background(), models.Identity{UserID: 7}, completedAnswers())
	require.NoError(t, err)

	var snapshot map[string]any
	require.NoError(t, json.Unmarshal([]byte(ledger.saved[0].RawPayload), &snapshot))
	assert.Equal(t, "exchange", snapshot["direction_key"])
	assert.Equal(t, "7", snapshot["tg_user_id"])
	assert.NotEmpty(t, snapshot["submission_id"])
	assert.NotEmpty(t, snapshot["created_at"])
}

func TestFinalize_DuplicateReported(t *testing.T) {
	ledger := &fakeLedger{nextID: 11, isDuplicate: true}
	service := testIntakeService(ledger)

	req, isDuplicate, err := service.Finalize(context.Background(), models.Identity{UserID: 7}, completedAnswers())
	require.NoError(t, err)
	assert.True(t, isDuplicate)
	assert.Equal(t, int64(1), req.DuplicateCount)
}

func TestFinalize_LedgerErrorSurfaces(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("disk full")}
	service := testIntakeService(ledger)

	_, _, err := service.Finalize(context.Background(), models.Identity{UserID: 7}, completedAnswers())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStatsProxy(t *testing.T) {
	ledger := &fakeLedger{nextID: 1}
	service := testIntakeService(ledger)

	_, _, err := service.Finalize(context.Background(), models.Identity{UserID: 7}, completedAnswers())
	require.NoError(t, err)

	stats, err := service.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
}

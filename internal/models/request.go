package models

import (
	"strconv"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// Label renders the priority for operator-facing messages. Unknown values
// pass through unchanged.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityNormal:
		return "Standard"
	default:
		return string(p)
	}
}

// ExchangeRequest is one persisted intake request. Phone is the dedup key:
// the ledger keeps at most one row per normalized phone.
type ExchangeRequest struct {
	ID             int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	TgUserID       string
	TgUsername     string
	DirectionKey   string
	DirectionLabel string
	FromCurrency   string
	ToCurrency     string
	AmountText     string
	AmountValue    *float64
	PaymentMethod  string
	City           string
	UrgencyKey     string
	UrgencyLabel   string
	Phone          string
	Priority       Priority
	DuplicateCount int64
	RawPayload     string
}

// Identity is the transport-side identity attached to a submission.
type Identity struct {
	UserID   int64
	Username string
}

func (i Identity) TgUserID() string {
	if i.UserID == 0 {
		return ""
	}
	return strconv.FormatInt(i.UserID, 10)
}

func (i Identity) TgUsername() string {
	if i.Username == "" {
		return ""
	}
	return "@" + i.Username
}

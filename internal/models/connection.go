package models

import "time"

type ConnectionKind string

const (
	ConnectionExchange ConnectionKind = "exchange"
	ConnectionWallet   ConnectionKind = "wallet"
)

// Connection links a user to an external exchange account or wallet. Only
// public data (UID, address) is stored, never API keys.
type Connection struct {
	ID           int64
	CreatedAt    time.Time
	TgUserID     string
	TgUsername   string
	Kind         ConnectionKind
	ExchangeName string
	Network      string
	Identifier   string
}

package services

import "github.com/p2p60/intake-bot/internal/models"

// highUrgencyKeys are the two most time-sensitive tiers.
var highUrgencyKeys = map[string]bool{
	"immediate": true,
	"same_day":  true,
}

// Classify derives a request's priority from its urgency and amount. Pure
// and total: the same inputs always produce the same tier.
func Classify(urgencyKey string, amountValue *float64, highAmount float64) models.Priority {
	if highUrgencyKeys[urgencyKey] {
		return models.PriorityHigh
	}
	if amountValue != nil && *amountValue >= highAmount {
		return models.PriorityHigh
	}
	return models.PriorityNormal
}

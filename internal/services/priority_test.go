package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/p2p60/intake-bot/internal/models"
)

func TestClassify_UrgencyWins(t *testing.T) {
	small := 1.0
	assert.Equal(t, models.PriorityHigh, Classify("immediate", &small, 5000))
	assert.Equal(t, models.PriorityHigh, Classify("same_day", nil, 5000))
}

func TestClassify_AmountThreshold(t *testing.T) {
	below := 4999.0
	atThreshold := 5000.0

	assert.Equal(t, models.PriorityNormal, Classify("", &below, 5000))
	assert.Equal(t, models.PriorityHigh, Classify("", &atThreshold, 5000))
}

func TestClassify_Normal(t *testing.T) {
	assert.Equal(t, models.PriorityNormal, Classify("", nil, 5000))
	assert.Equal(t, models.PriorityNormal, Classify("flexible", nil, 5000))
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "High", models.PriorityHigh.Label())
	assert.Equal(t, "Standard", models.PriorityNormal.Label())
	assert.Equal(t, "odd", models.Priority("odd").Label())
}

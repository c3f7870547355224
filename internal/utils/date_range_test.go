package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange_Defaults(t *testing.T) {
	parser := NewDateRangeParser()
	now := time.Date(2025, 3, 15, 13, 45, 0, 0, time.UTC)

	start, end, err := parser.ParseRange(nil, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-13", start.Format("2006-01-02"))
	assert.Equal(t, "2025-03-15", end.Format("2006-01-02"))
}

func TestParseRange_TwoDates(t *testing.T) {
	parser := NewDateRangeParser()
	now := time.Date(2025, 3, 15, 13, 45, 0, 0, time.UTC)

	start, end, err := parser.ParseRange([]string{"2025-01-01", "2025-01-31"}, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", start.Format("2006-01-02"))
	assert.Equal(t, "2025-01-31", end.Format("2006-01-02"))
}

func TestParseRange_SingleDateEndsToday(t *testing.T) {
	parser := NewDateRangeParser()
	now := time.Date(2025, 3, 15, 13, 45, 0, 0, time.UTC)

	start, end, err := parser.ParseRange([]string{"2025-03-01"}, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", start.Format("2006-01-02"))
	assert.Equal(t, "2025-03-15", end.Format("2006-01-02"))
}

func TestParseRange_NaturalLanguage(t *testing.T) {
	parser := NewDateRangeParser()
	now := time.Date(2025, 3, 15, 13, 45, 0, 0, time.UTC)

	start, end, err := parser.ParseRange([]string{"yesterday"}, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", start.Format("2006-01-02"))
	assert.Equal(t, "2025-03-15", end.Format("2006-01-02"))
}

func TestParseRange_Malformed(t *testing.T) {
	parser := NewDateRangeParser()
	now := time.Now()

	_, _, err := parser.ParseRange([]string{"not-even-close-to-a-date-xyzzy"}, now)
	assert.Error(t, err)
}

func TestParseRange_EndBeforeStart(t *testing.T) {
	parser := NewDateRangeParser()
	now := time.Now()

	_, _, err := parser.ParseRange([]string{"2025-02-01", "2025-01-01"}, now)
	assert.Error(t, err)
}

func TestParseRange_TooManyArguments(t *testing.T) {
	parser := NewDateRangeParser()

	_, _, err := parser.ParseRange([]string{"2025-01-01", "2025-01-02", "2025-01-03"}, time.Now())
	assert.Error(t, err)
}

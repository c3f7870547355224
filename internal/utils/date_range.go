package utils

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const dateLayout = "2006-01-02"

// DateRangeParser turns /export arguments into an inclusive date range.
// Strict YYYY-MM-DD is tried first; natural phrases like "yesterday" go
// through the when parser.
type DateRangeParser struct {
	parser *when.Parser
}

func NewDateRangeParser() *DateRangeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &DateRangeParser{parser: w}
}

// ParseRange accepts zero, one or two date arguments. With no arguments the
// range is the trailing 30 days ending today. With one argument the range
// runs from that date until today.
func (p *DateRangeParser) ParseRange(args []string, now time.Time) (time.Time, time.Time, error) {
	today := truncateToDay(now)

	switch len(args) {
	case 0:
		return today.AddDate(0, 0, -30), today, nil
	case 1:
		start, err := p.parseDate(args[0], now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, today, nil
	case 2:
		start, err := p.parseDate(args[0], now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := p.parseDate(args[1], now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("range end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout))
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("expected at most two dates, got %d arguments", len(args))
	}
}

func (p *DateRangeParser) parseDate(raw string, now time.Time) (time.Time, error) {
	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		return parsed, nil
	}

	result, err := p.parser.Parse(raw, now)
	if err != nil || result == nil {
		return time.Time{}, fmt.Errorf("could not parse date %q, expected YYYY-MM-DD", raw)
	}
	return truncateToDay(result.Time), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

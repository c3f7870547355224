package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/p2p60/intake-bot/internal/catalog"
)

// RatesService fetches spot prices from a simple-price endpoint and caches
// them for a refresh interval. A failed refresh falls back to the stale
// cache; with nothing cached the text degrades to "temporarily unavailable".
type RatesService struct {
	providerURL string
	vsCurrency  string
	coins       []catalog.Option
	refresh     time.Duration
	client      *http.Client

	mu        sync.Mutex
	cached    map[string]coinQuote
	fetchedAt time.Time
}

type coinQuote struct {
	Price         float64
	LastUpdatedAt int64
}

func NewRatesService(providerURL, vsCurrency string, coins []catalog.Option, refresh time.Duration) *RatesService {
	return &RatesService{
		providerURL: providerURL,
		vsCurrency:  vsCurrency,
		coins:       coins,
		refresh:     refresh,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// RatesText renders the cached quotes as a short message for the /start
// screen and the rate-info button.
func (s *RatesService) RatesText(ctx context.Context) string {
	quotes := s.rates(ctx)
	if len(quotes) == 0 {
		return "Current rates: temporarily unavailable."
	}

	lines := []string{fmt.Sprintf("Current rates (%s)", strings.ToUpper(s.vsCurrency))}
	var lastUpdated int64
	for _, coin := range s.coins {
		quote, ok := quotes[coin.Key]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", coin.Label, formatPrice(quote.Price)))
		if lastUpdated == 0 {
			lastUpdated = quote.LastUpdatedAt
		}
	}
	if lastUpdated > 0 {
		stamp := time.Unix(lastUpdated, 0).UTC().Format("15:04 UTC")
		lines = append(lines, "Updated: "+stamp)
	}
	return strings.Join(lines, "\n")
}

func (s *RatesService) rates(ctx context.Context) map[string]coinQuote {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.fetchedAt) < s.refresh {
		return s.cached
	}

	fetched, err := s.fetch(ctx)
	if err != nil {
		return s.cached
	}
	s.cached = fetched
	s.fetchedAt = time.Now()
	return s.cached
}

func (s *RatesService) fetch(ctx context.Context) (map[string]coinQuote, error) {
	ids := make([]string, 0, len(s.coins))
	for _, coin := range s.coins {
		ids = append(ids, coin.Key)
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", s.vsCurrency)
	params.Set("include_last_updated_at", "true")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.providerURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetching rates: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates provider returned status %d", response.StatusCode)
	}

	var decoded map[string]map[string]float64
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding rates response: %w", err)
	}

	quotes := make(map[string]coinQuote, len(decoded))
	for coinID, values := range decoded {
		price, ok := values[s.vsCurrency]
		if !ok {
			continue
		}
		quotes[coinID] = coinQuote{
			Price:         price,
			LastUpdatedAt: int64(values["last_updated_at"]),
		}
	}
	return quotes, nil
}

func formatPrice(value float64) string {
	switch {
	case value >= 1000:
		return groupThousands(fmt.Sprintf("%.2f", value))
	case value >= 100:
		return fmt.Sprintf("%.2f", value)
	case value >= 1:
		return fmt.Sprintf("%.4f", value)
	default:
		return fmt.Sprintf("%.6f", value)
	}
}

// groupThousands inserts thin spaces into the integer part: 96412.35 ->
// "96 412.35".
func groupThousands(formatted string) string {
	parts := strings.SplitN(formatted, ".", 2)
	integer := parts[0]

	var grouped strings.Builder
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			grouped.WriteRune(' ')
		}
		grouped.WriteRune(digit)
	}
	if len(parts) == 2 {
		return grouped.String() + "." + parts[1]
	}
	return grouped.String()
}

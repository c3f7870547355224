package catalog

// Option is a single selectable entry. Key is the wire-stable identifier used
// in callback data, Label is what the user sees.
type Option struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Catalog holds every option set presented during the dialogue flows.
type Catalog struct {
	Directions     []Option `yaml:"directions"`
	Urgencies      []Option `yaml:"urgencies"`
	Currencies     []Option `yaml:"currencies"`
	PaymentMethods []Option `yaml:"payment_methods"`
	Cities         []Option `yaml:"cities"`
	Exchanges      []Option `yaml:"exchanges"`
	WalletNetworks []Option `yaml:"wallet_networks"`
}

// Label resolves a key to its display label. Unknown keys resolve to the key
// itself so a stale or custom value never breaks rendering.
func Label(options []Option, key string) string {
	if key == "" {
		return ""
	}
	for _, option := range options {
		if option.Key == key {
			return option.Label
		}
	}
	return key
}

// Contains reports whether key matches one of the options.
func Contains(options []Option, key string) bool {
	for _, option := range options {
		if option.Key == key {
			return true
		}
	}
	return false
}

// FromStrings builds options whose key and label are the same value. Used for
// env-configured flat lists like currencies and payment methods.
func FromStrings(values []string) []Option {
	options := make([]Option, 0, len(values))
	for _, value := range values {
		options = append(options, Option{Key: value, Label: value})
	}
	return options
}

func Default() Catalog {
	return Catalog{
		Directions: []Option{
			{Key: "exchange", Label: "Exchange"},
			{Key: "buy", Label: "Buy"},
			{Key: "sell", Label: "Sell"},
			{Key: "transfer", Label: "Transfer"},
		},
		Urgencies: []Option{
			{Key: "immediate", Label: "Right now"},
			{Key: "same_day", Label: "Today"},
			{Key: "flexible", Label: "1-3 days"},
		},
		Currencies:     FromStrings([]string{"RUB", "USD", "EUR", "USDT"}),
		PaymentMethods: FromStrings([]string{"Bank transfer", "Cash", "Crypto wallet"}),
		Exchanges:      FromStrings([]string{"Binance", "Bybit", "OKX", "HTX"}),
		WalletNetworks: FromStrings([]string{"TRC20", "ERC20", "BTC", "TON"}),
	}
}

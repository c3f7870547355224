package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/p2p60/intake-bot/internal/catalog"
)

type Texts struct {
	Intro             string `yaml:"intro"`
	QuestionDirection string `yaml:"question_direction"`
	QuestionFrom      string `yaml:"question_from_currency"`
	QuestionTo        string `yaml:"question_to_currency"`
	QuestionAmount    string `yaml:"question_amount"`
	QuestionPayment   string `yaml:"question_payment"`
	QuestionCity      string `yaml:"question_city"`
	QuestionUrgency   string `yaml:"question_urgency"`
	QuestionContact   string `yaml:"question_contact"`
	ThankYou          string `yaml:"thank_you"`
	Duplicate         string `yaml:"duplicate"`
	HowItWorks        string `yaml:"how_it_works"`
	RateInfo          string `yaml:"rate_info"`
	Support           string `yaml:"support"`
}

type Config struct {
	BotToken      string
	AdminIDs      []int64
	BrandName     string
	SupportHandle string
	WebAppURL     string

	DatabasePath string

	PhoneMinDigits int
	HighAmount     float64

	CRMWebhookURL    string
	SheetsWebhookURL string
	SheetsCSVPath    string
	WebhookTimeout   time.Duration

	RateProviderURL string
	RateVsCurrency  string
	RateRefresh     time.Duration
	RateCoins       []catalog.Option

	CryptoKey string

	Catalog catalog.Catalog
	Texts   Texts
}

type fileConfig struct {
	Catalog catalog.Catalog `yaml:"catalog"`
	Texts   Texts           `yaml:"texts"`
}

// LoadConfig assembles configuration from the environment plus an optional
// YAML file with catalog and text overrides. godotenv is expected to have run
// already (the bootstrap loads .env before calling this).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:         os.Getenv("BOT_TOKEN"),
		BrandName:        envOr("BRAND_NAME", "P2P60"),
		SupportHandle:    envOr("SUPPORT_HANDLE", "@p2p60_support"),
		WebAppURL:        os.Getenv("WEBAPP_URL"),
		DatabasePath:     envOr("DATABASE_PATH", "data/requests.db"),
		CRMWebhookURL:    os.Getenv("CRM_WEBHOOK_URL"),
		SheetsWebhookURL: os.Getenv("GOOGLE_SHEETS_WEBHOOK_URL"),
		SheetsCSVPath:    os.Getenv("GOOGLE_SHEETS_CSV_PATH"),
		RateProviderURL:  envOr("RATE_PROVIDER_URL", "https://api.coingecko.com/api/v3/simple/price"),
		RateVsCurrency:   envOr("RATE_VS_CURRENCY", "usd"),
		CryptoKey:        os.Getenv("CRYPTO_KEY"),
		Catalog:          catalog.Default(),
		Texts:            defaultTexts(),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	cfg.Texts.Support = "Write to support: " + cfg.SupportHandle

	adminIDs, err := parseIDList(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parsing ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = adminIDs

	cfg.PhoneMinDigits, err = envInt("PHONE_MIN_DIGITS", 10)
	if err != nil {
		return nil, err
	}
	cfg.HighAmount, err = envFloat("HIGH_AMOUNT", 5000)
	if err != nil {
		return nil, err
	}
	webhookSeconds, err := envInt("WEBHOOK_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.WebhookTimeout = time.Duration(webhookSeconds) * time.Second
	refreshSeconds, err := envInt("RATE_REFRESH_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	cfg.RateRefresh = time.Duration(refreshSeconds) * time.Second

	cfg.RateCoins = []catalog.Option{
		{Key: "bitcoin", Label: "BTC"},
		{Key: "ethereum", Label: "ETH"},
		{Key: "tether", Label: "USDT"},
	}

	if currencies := splitCSV(os.Getenv("CURRENCIES")); len(currencies) > 0 {
		cfg.Catalog.Currencies = catalog.FromStrings(currencies)
	}
	if methods := splitCSV(os.Getenv("PAYMENT_METHODS")); len(methods) > 0 {
		cfg.Catalog.PaymentMethods = catalog.FromStrings(methods)
	}
	if cities := splitCSV(os.Getenv("CITY_OPTIONS")); len(cities) > 0 {
		cfg.Catalog.Cities = catalog.FromStrings(cities)
	}

	path := envOr("CONFIG_PATH", "config/application.yaml")
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile merges catalog and text overrides from a YAML file. A missing file
// is fine; a malformed one is not.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	mergeOptions(&c.Catalog.Directions, fc.Catalog.Directions)
	mergeOptions(&c.Catalog.Urgencies, fc.Catalog.Urgencies)
	mergeOptions(&c.Catalog.Currencies, fc.Catalog.Currencies)
	mergeOptions(&c.Catalog.PaymentMethods, fc.Catalog.PaymentMethods)
	mergeOptions(&c.Catalog.Cities, fc.Catalog.Cities)
	mergeOptions(&c.Catalog.Exchanges, fc.Catalog.Exchanges)
	mergeOptions(&c.Catalog.WalletNetworks, fc.Catalog.WalletNetworks)

	mergeText(&c.Texts.Intro, fc.Texts.Intro)
	mergeText(&c.Texts.QuestionDirection, fc.Texts.QuestionDirection)
	mergeText(&c.Texts.QuestionFrom, fc.Texts.QuestionFrom)
	mergeText(&c.Texts.QuestionTo, fc.Texts.QuestionTo)
	mergeText(&c.Texts.QuestionAmount, fc.Texts.QuestionAmount)
	mergeText(&c.Texts.QuestionPayment, fc.Texts.QuestionPayment)
	mergeText(&c.Texts.QuestionCity, fc.Texts.QuestionCity)
	mergeText(&c.Texts.QuestionUrgency, fc.Texts.QuestionUrgency)
	mergeText(&c.Texts.QuestionContact, fc.Texts.QuestionContact)
	mergeText(&c.Texts.ThankYou, fc.Texts.ThankYou)
	mergeText(&c.Texts.Duplicate, fc.Texts.Duplicate)
	mergeText(&c.Texts.HowItWorks, fc.Texts.HowItWorks)
	mergeText(&c.Texts.RateInfo, fc.Texts.RateInfo)
	mergeText(&c.Texts.Support, fc.Texts.Support)
	return nil
}

func mergeOptions(dst *[]catalog.Option, src []catalog.Option) {
	if len(src) > 0 {
		*dst = src
	}
}

func mergeText(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func defaultTexts() Texts {
	return Texts{
		Intro:             "P2P60 — premium P2P exchange in 60 seconds.\nClear terms, fast confirmations, fintech-grade safety.",
		QuestionDirection: "What would you like to do?",
		QuestionFrom:      "What are you giving?",
		QuestionTo:        "What are you receiving?",
		QuestionAmount:    "Enter the amount. For example: 1500 or 1500 USD.",
		QuestionPayment:   "Which payment method works for you?",
		QuestionCity:      "Which city or country are you in?",
		QuestionUrgency:   "How urgent is it?",
		QuestionContact:   "Share a phone number so we can confirm the deal.",
		ThankYou:          "Request received. We locked in the terms and will reach out shortly.",
		Duplicate:         "We already have your request on file and will be in touch soon.",
		HowItWorks:        "How it works\n1. You set the direction and amount.\n2. An operator locks the rate and confirms the details.\n3. We transfer and close the deal.",
		RateInfo:          "Rates are quoted individually per volume and method. Tap \"Start exchange\" to lock your terms.",
		Support:           "Write to support: @p2p60_support",
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return value, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return value, nil
}

func parseIDList(raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range splitCSV(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitCSV(raw string) []string {
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

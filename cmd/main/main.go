package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	tele "gopkg.in/telebot.v3"

	"github.com/p2p60/intake-bot/internal/config"
	"github.com/p2p60/intake-bot/internal/database"
	"github.com/p2p60/intake-bot/internal/delivery/tgbot"
	"github.com/p2p60/intake-bot/internal/dialogue"
	"github.com/p2p60/intake-bot/internal/middleware"
	"github.com/p2p60/intake-bot/internal/notify"
	"github.com/p2p60/intake-bot/internal/repositories"
	"github.com/p2p60/intake-bot/internal/security"
	"github.com/p2p60/intake-bot/internal/services"
	"github.com/p2p60/intake-bot/pkg/logging"
)

func main() {
	ctx := context.Background()
	if err := logging.SetupLogger(); err != nil {
		slog.ErrorContext(ctx, "Error setting up logger", "error", err)
		return
	}

	if err := godotenv.Load(); err != nil {
		slog.InfoContext(ctx, "No .env file loaded", "error", err)
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "Error loading config", "error", err)
		return
	}

	db, err := database.NewDB(appConfig.DatabasePath)
	if err != nil {
		slog.ErrorContext(ctx, "Error initializing database", "error", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.ErrorContext(ctx, "Error running database migrations", "error", err)
		return
	}

	var cipher *security.Cipher
	if appConfig.CryptoKey != "" {
		cipher, err = security.NewCipher(appConfig.CryptoKey)
		if err != nil {
			slog.ErrorContext(ctx, "Error initializing cipher", "error", err)
			return
		}
	}

	requestRepo := repositories.NewRequestRepo(db)
	connectionRepo := repositories.NewConnectionRepo(db, cipher)

	sessions := dialogue.NewStore()
	engine := dialogue.NewEngine(appConfig.Catalog, appConfig.Texts, appConfig.PhoneMinDigits)
	ratesService := services.NewRatesService(
		appConfig.RateProviderURL,
		appConfig.RateVsCurrency,
		appConfig.RateCoins,
		appConfig.RateRefresh,
	)

	pref := tele.Settings{
		Token:  appConfig.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		slog.ErrorContext(ctx, "Error creating bot", "error", err)
		return
	}

	notifier := notify.NewNotifier(tgbot.NewMessenger(bot), notify.Config{
		OperatorIDs:      appConfig.AdminIDs,
		CRMWebhookURL:    appConfig.CRMWebhookURL,
		SheetsWebhookURL: appConfig.SheetsWebhookURL,
		CSVPath:          appConfig.SheetsCSVPath,
		Timeout:          appConfig.WebhookTimeout,
	})
	intakeService := services.NewIntakeService(requestRepo, notifier, appConfig.HighAmount)

	rateLimiter := middleware.RateLimiter{}
	adminOnly := middleware.AdminOnly{AllowedUserIDs: appConfig.AdminIDs}

	bot.Use(middleware.RequestContext(ctx))
	bot.Use(middleware.Logger())
	bot.Use(rateLimiter.Middleware())

	err = bot.SetCommands([]tele.Command{
		{Text: "/start", Description: "Show the menu"},
		{Text: "/cancel", Description: "Cancel the current form"},
		{Text: "/connections", Description: "List your connections"},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Error setting commands", "error", err)
		return
	}

	tgbot.RegisterHandlers(
		bot,
		adminOnly.Middleware(),
		engine,
		sessions,
		intakeService,
		requestRepo,
		connectionRepo,
		ratesService,
		appConfig.Texts,
		appConfig.WebAppURL,
		exportDir(),
	)

	slog.InfoContext(ctx, "Listening...", "brand", appConfig.BrandName)
	bot.Start()
}

func exportDir() string {
	if dir := os.Getenv("EXPORT_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	recapbotroot "github.com/recapbot/recapbot"
	"github.com/recapbot/recapbot/internal/config"
	"github.com/recapbot/recapbot/internal/domain"
	"github.com/recapbot/recapbot/internal/handler"
	"github.com/recapbot/recapbot/internal/middleware"
	"github.com/recapbot/recapbot/internal/repository"
	"github.com/recapbot/recapbot/internal/secret"
	"github.com/recapbot/recapbot/internal/service"
	"github.com/recapbot/recapbot/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(recapbotroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize stores and core services
	messages := repository.NewMessages(pool)
	groups := repository.NewGroups(pool)
	secrets := repository.NewSecrets(pool)

	codec, err := secret.NewCodec(cfg.EncryptionKey, secrets)
	if err != nil {
		slog.Error("failed to initialize secret codec", "error", err)
		os.Exit(1)
	}

	generator := service.NewOpenAIGenerator(cfg.GenerationBaseURL, cfg.GenerationModel)
	summarizer := service.NewSummarizer(generator)
	limiter := service.NewIntervalLimiter(config.SummaryCooldown)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			msg := update.Message
			if msg == nil {
				msg = update.EditedMessage
			}
			if msg == nil {
				return
			}
			// Branch on chat kind once, at the boundary
			if domain.ParseChatKind(string(msg.Chat.Type)).IsGroup() {
				h.HandleCacheMessage(ctx, b, update)
			}
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:         b,
		Cfg:         cfg,
		Messages:    messages,
		Groups:      groups,
		Codec:       codec,
		Summarizer:  summarizer,
		Limiter:     limiter,
		BotUsername: me.Username,
	})

	// Register all handlers
	h.Register()

	// Start lifecycle loops
	sched := service.NewScheduler(
		messages,
		groups,
		codec,
		summarizer,
		telegram.NewNotifier(b),
		telegram.NewMembershipChecker(b),
	)
	sched.Start(ctx)

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	sched.Stop()
	slog.Info("bot stopped gracefully")
}

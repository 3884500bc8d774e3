package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	rozno "github.com/roznoapp/rozno"
	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/handler"
	"github.com/roznoapp/rozno/internal/middleware"
	"github.com/roznoapp/rozno/internal/repository"
	"github.com/roznoapp/rozno/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Local development convenience; production injects real env vars
	_ = godotenv.Load()

	// Load configuration
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
	migrationsFS, err := fs.Sub(rozno.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	messages := repository.NewMessages(pool)
	profiles := repository.NewProfiles(pool)
	memory := repository.NewMemory(pool)
	moodLogs := repository.NewMoodLogs(pool)
	usage := repository.NewUsage(pool)

	// Initialize services
	profileService := service.NewProfileService(profiles)
	memoryService := service.NewMemoryService(memory)
	billingService := service.NewBillingService(usage, cfg.PromptPrice, cfg.CompletionPrice, cfg.MarkupPercent)
	gateway := service.NewAIGatewayService(cfg.GatewayURL, cfg.GatewayKey, cfg.GatewayModel)
	prompts := service.NewPromptBuilder(profiles, memory)
	conversations := service.NewConversationService(gateway, prompts, messages, moodLogs, billingService)

	limiter := middleware.NewRateLimiter()

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(limiter),
			middleware.ProfileLoader(profileService),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleTextPrivate(ctx, b, update)
		}),
	}
	if cfg.DropPendingUpdates {
		opts = append(opts, bot.WithInitialOffset(-1))
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
		Bot:            b,
		Cfg:            cfg,
		Conversations:  conversations,
		ProfileService: profileService,
		MemoryService:  memoryService,
		BillingService: billingService,
		MoodLogs:       moodLogs,
	})

	// Register all handlers
	h.Register()

	// Prune idle rate-limit windows
	go func() {
		ticker := time.NewTicker(config.RateLimitCleanup)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Prune(time.Now())
			}
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}

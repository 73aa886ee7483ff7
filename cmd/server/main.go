package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"

	"reminder-engine/internal/authctx"
	"reminder-engine/internal/config"
	"reminder-engine/internal/engine"
	"reminder-engine/internal/events"
	"reminder-engine/internal/handlers"
	"reminder-engine/internal/middleware"
	"reminder-engine/internal/notify"
	"reminder-engine/internal/scheduler"
	storegorm "reminder-engine/internal/store/gorm"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Caller().
		Logger()
	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger.Info().Str("log_level", level.String()).Msg("Logger initialized")

	db, err := storegorm.Open(postgres.Open(cfg.GetDSN()))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()
	logger.Info().Msg("Database connected successfully")

	bus := events.NewBus(cfg.SSEQueueDepth, logger)
	reminderEngine := engine.NewReminderEngine(db, bus)
	trackingLifecycle := engine.NewTrackingLifecycle(db, reminderEngine, bus)
	actionRouter := notify.NewActionRouter(reminderEngine)

	var adapters []notify.ChannelAdapter
	if cfg.SMTPHost != "" {
		adapters = append(adapters, notify.NewEmailAdapter(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom))
	}
	var telegramAdapter *notify.TelegramAdapter
	if cfg.TelegramBotToken != "" {
		telegramAdapter, err = notify.NewTelegramAdapter(cfg.TelegramBotToken, actionRouter, logger)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to initialize telegram adapter, continuing without it")
		} else {
			adapters = append(adapters, telegramAdapter)
			go pollTelegramUpdates(telegramAdapter, logger)
		}
	}
	dispatcher := notify.NewDispatcher(logger, adapters...)

	ticker := scheduler.NewTicker(db, reminderEngine, dispatcher, bus, cfg.TickIntervalSeconds, cfg.ShutdownGraceSeconds, logger).
		WithMaxConcurrency(cfg.NotifierMaxConcurrency)
	if err := ticker.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start ticker")
	}

	verifier := authctx.NewJWTVerifier(cfg.JWTSecret)

	trackingHandler := handlers.NewTrackingHandler(db, reminderEngine, trackingLifecycle)
	reminderHandler := handlers.NewReminderHandler(db, reminderEngine)
	eventsHandler := handlers.NewEventsHandler(bus)
	healthHandler := handlers.NewHealthHandler(db, ticker)

	loggingMiddleware := middleware.NewLoggingMiddleware(logger)

	if level == zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(loggingMiddleware.Recovery())
	router.Use(loggingMiddleware.CORS())
	router.Use(loggingMiddleware.LogRequests())

	router.GET("/health", healthHandler.Check)

	api := router.Group("/api")
	api.Use(authctx.Middleware(verifier))
	{
		trackings := api.Group("/trackings")
		{
			trackings.GET("", trackingHandler.List)
			trackings.POST("", trackingHandler.Create)
			trackings.PATCH("/:id", trackingHandler.Update)
			trackings.POST("/:id/state", trackingHandler.ChangeState)
			trackings.DELETE("/:id", trackingHandler.Delete)
		}

		reminders := api.Group("/reminders")
		{
			reminders.GET("", reminderHandler.List)
			reminders.POST("/:id/answer", reminderHandler.Answer)
			reminders.POST("/:id/snooze", reminderHandler.Snooze)
			reminders.DELETE("/:id", reminderHandler.Delete)
		}

		api.GET("/events", eventsHandler.Stream)
	}

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("address", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server...")

	graceCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceSeconds)*time.Second)
	defer cancel()

	// §5's sequencing: drain HTTP ingress, then stop the ticker, then give
	// in-flight notifier jobs their own grace window, then close the store.
	if err := srv.Shutdown(graceCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	ticker.Stop(graceCtx)
	logger.Info().Msg("Shutdown sequence complete")
}

func pollTelegramUpdates(adapter *notify.TelegramAdapter, logger zerolog.Logger) {
	updates := adapter.Updates()
	for update := range updates {
		adapter.HandleUpdate(context.Background(), update)
	}
	logger.Info().Msg("telegram update polling stopped")
}

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	appmoderation "github.com/streamsentry/streamsentry/pkg/app/moderation"
	"github.com/streamsentry/streamsentry/pkg/config"
	infraCache "github.com/streamsentry/streamsentry/pkg/infra/cache"
	"github.com/streamsentry/streamsentry/pkg/infra/database"
	"github.com/streamsentry/streamsentry/pkg/infra/detector"
	"github.com/streamsentry/streamsentry/pkg/infra/factcheck"
	infraLogger "github.com/streamsentry/streamsentry/pkg/infra/logger"
	"github.com/streamsentry/streamsentry/pkg/infra/repository"
	infraWebsocket "github.com/streamsentry/streamsentry/pkg/infra/websocket"
	"github.com/streamsentry/streamsentry/pkg/server"
	"github.com/streamsentry/streamsentry/pkg/server/middleware"

	handlers "github.com/streamsentry/streamsentry/pkg/handlers/http"
	wsHandlers "github.com/streamsentry/streamsentry/pkg/handlers/websocket"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	cacheClient, err := infraCache.NewClient(infraCache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	// repository
	violationRepository := repository.NewViolationRepository(db.DB)
	timeoutRepository := repository.NewTimeoutRepository(db.DB)
	streamRepository := repository.NewStreamRepository(db.DB)

	// moderation pipeline
	speechDetector := detector.NewDetector(&cfg.Moderation, nil, logger)
	factChecker := factcheck.NewClient(cfg.FactCheck.APIKey, cfg.FactCheck.Timeout, nil, logger)
	processor := appmoderation.NewProcessor(
		speechDetector,
		violationRepository,
		timeoutRepository,
		streamRepository,
		cacheClient,
		logger,
		cfg.Moderation.TimeoutDuration,
	)

	hub := infraWebsocket.NewHub(logger)

	// middleware
	middlewareTransport := middleware.NewTransport(
		middleware.NewWebsocketMiddleware(cfg, logger),
	)

	// Handler Transport
	handlerTransport := handlers.HandlerTransport{
		CheckToxicityHandler:        handlers.NewCheckToxicityHandler(logger, speechDetector),
		CheckRumorHandler:           handlers.NewCheckRumorHandler(logger, factChecker),
		ListStreamViolationsHandler: handlers.NewListStreamViolationsHandler(logger, violationRepository),
		ListUserViolationsHandler:   handlers.NewListUserViolationsHandler(logger, violationRepository),
	}

	wsHandlerTransport := &wsHandlers.HandlerTransportDTO{
		SpeechHandler: wsHandlers.NewSpeechHandler(hub, processor, logger),
	}

	srv := server.NewModerationServer(server.ModerationServerDI{
		Config:              cfg,
		Logger:              logger,
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		WSHandlerTransport:  wsHandlerTransport,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

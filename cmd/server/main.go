package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mzhuravlev/supplyhub-backend/internal/config"
	"github.com/mzhuravlev/supplyhub-backend/internal/db"
	httpHandlers "github.com/mzhuravlev/supplyhub-backend/internal/http/handlers"
	httpRouter "github.com/mzhuravlev/supplyhub-backend/internal/http/router"
	"github.com/mzhuravlev/supplyhub-backend/internal/logger"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
	"github.com/mzhuravlev/supplyhub-backend/internal/service"
	"github.com/mzhuravlev/supplyhub-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Env)

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	quotationRepo := repository.NewQuotationRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	requestService := service.NewRequestService(requestRepo)
	negotiationService := service.NewNegotiationService(quotationRepo, requestRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// Вебсокеты: hub доставляет уведомления в открытые соединения,
	// сервис уведомлений сохраняет их и дублирует в hub.
	hub := ws.NewHub()
	go hub.Run()
	notificationService.SetHub(hub)
	negotiationService.SetNotifier(notificationService)
	requestService.SetNotifier(notificationService)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	requestHandler := httpHandlers.NewRequestHandler(requestService)
	quotationHandler := httpHandlers.NewQuotationHandler(negotiationService, requestService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, requestHandler, quotationHandler, notificationHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}

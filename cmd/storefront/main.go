// Package main запускает HTTP-сервер витрины SoccerGear.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RyanFidelis/soccergear-storefront/internal/backend"
	"github.com/RyanFidelis/soccergear-storefront/internal/cep"
	"github.com/RyanFidelis/soccergear-storefront/internal/config"
	"github.com/RyanFidelis/soccergear-storefront/internal/handler"
	"github.com/RyanFidelis/soccergear-storefront/internal/middleware"
	"github.com/RyanFidelis/soccergear-storefront/internal/promo"
	"github.com/RyanFidelis/soccergear-storefront/internal/repository"
	"github.com/RyanFidelis/soccergear-storefront/internal/service"
)

func main() {
	// Локальный .env удобен при разработке; в бою его нет.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	backendClient := backend.NewClient(cfg.BackendAddress)
	cepClient := cep.NewClient(cfg.CEPAddress)

	svc := service.NewService(repo, backendClient, cepClient, promo.NewGenerator(), cfg.OrderPollInterval, cfg.PromoPollInterval)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновые процессы: опрос статусов заказов и промо-рассылка
	g.Go(func() error {
		svc.StartOrderUpdates(ctx)
		return nil
	})
	g.Go(func() error {
		svc.StartPromoUpdates(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/K1T3K1/msfin/internal/amqp"
	"github.com/K1T3K1/msfin/internal/config"
	"github.com/K1T3K1/msfin/internal/currency"
	msfinhttp "github.com/K1T3K1/msfin/internal/http"
	applog "github.com/K1T3K1/msfin/internal/log"
	"github.com/K1T3K1/msfin/internal/services"
	"github.com/K1T3K1/msfin/internal/storage"
)

func main() {
	// .env is for local development; absence is not an error
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "msfin"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", "error", err)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("ledger eventing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("ledger eventing disabled, no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(repo, amqpClient)
	defer ledger.Close()

	rates := currency.NewClient(cfg.CurrencyAPIKey)
	if cfg.CurrencyAPIURL != "" {
		rates = currency.NewClientWithBaseURL(cfg.CurrencyAPIKey, cfg.CurrencyAPIURL)
	}

	server := msfinhttp.NewServer(cfg.Port, ledger, rates)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

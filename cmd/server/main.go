package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/handler"
	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/internal/storage"
	"github.com/portfolio/backend/pkg/auth"
	"github.com/portfolio/backend/pkg/mailer"
	"github.com/spf13/pflag"
)

func main() {
	var envFile, addr string
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.StringVar(&addr, "addr", "", "listen address (overrides ADDR/PORT)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		logging.Fatal("failed to open submission log", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeStore()

	contactRepo := repository.NewLogSubmissionRepository(store)
	contactService := service.NewContactService(contactRepo, newRelay(cfg.Relay), service.MailConfig{
		From: cfg.Relay.Account,
		To:   cfg.Relay.Account,
	})

	h := handler.New(contactRepo, cfg.FrontendURL)
	contactHandler := handler.NewContactHandler(contactService, handler.ContactConfig{
		ExposeErrors: !cfg.IsProduction(),
	})

	contactLimiter := handler.NewRateLimiter(cfg.ContactRateLimit, cfg.TrustedProxyCount)
	defer contactLimiter.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("POST /api/contact", contactLimiter.Middleware(http.HandlerFunc(contactHandler.Submit)))

	// 管理 API はトークン設定時のみ公開
	if cfg.AdminToken != "" {
		mux.Handle("GET /api/admin/contacts", auth.RequireToken(cfg.AdminToken)(http.HandlerFunc(contactHandler.AdminList)))
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h.CORS(handler.SecurityHeaders(handler.RequestLogger(mux))),
		ReadTimeout:  cfg.ReadWriteTimeout,
		WriteTimeout: cfg.ReadWriteTimeout,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"env", cfg.Env,
			"store", cfg.Store.Driver,
			"relay", cfg.Relay.Driver,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// openStore returns the submission log for the configured driver and a func
// releasing its resources.
func openStore(ctx context.Context, cfg config.StoreConfig) (storage.Log, func(), error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		s, err := storage.OpenSQLiteLog(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorePostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPgSubmissionLog(pool), pool.Close, nil
	default:
		return storage.NewFileLog(cfg.MessagesPath), func() {}, nil
	}
}

func newRelay(cfg config.RelayConfig) mailer.Client {
	switch cfg.Driver {
	case config.RelayAMQP:
		return mailer.NewAMQPClient(mailer.AMQPConfig{
			URL:     cfg.AMQPURL,
			Queue:   cfg.Queue,
			Timeout: cfg.Timeout,
		})
	case config.RelayLog:
		return mailer.NewLogClient(nil)
	default:
		return mailer.NewSMTPClient(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Account,
			Password: cfg.Password,
			Timeout:  cfg.Timeout,
		})
	}
}

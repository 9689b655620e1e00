package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/billedhq/billed/internal/config"
	"github.com/billedhq/billed/internal/session"
	"github.com/billedhq/billed/internal/storage"
	"github.com/billedhq/billed/internal/store"
	"github.com/billedhq/billed/internal/store/localstore"
	"github.com/billedhq/billed/internal/store/resthttp"
	"github.com/billedhq/billed/internal/web"
	"github.com/billedhq/billed/pkg/database"
	"github.com/billedhq/billed/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	_ = gotenv.Load()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Billed expense client",
		zap.String("store_mode", cfg.Store.Mode),
		zap.Int("port", cfg.Server.Port))

	user, err := bootstrapUser()
	if err != nil {
		logger.Fatal("Failed to resolve session user", zap.Error(err))
	}

	var billStore store.Store
	switch cfg.Store.Mode {
	case config.StoreModeHTTP:
		billStore = resthttp.New(resthttp.Config{
			BaseURL: cfg.Store.BaseURL,
			Token:   cfg.Store.Token,
			Timeout: cfg.Store.Timeout,
		}, logger)

	case config.StoreModeLocal:
		db, err := database.New(database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()

		receipts := storage.NewLocalReceiptStorage(cfg.Storage.ReceiptDir, logger)
		billStore, err = localstore.New(db, receipts, logger)
		if err != nil {
			logger.Fatal("Failed to initialize local store", zap.Error(err))
		}
	}

	server := web.NewServer(web.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		DefaultPct:   cfg.Policy.DefaultPct,
	}, billStore, user, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Fatal("Web server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// bootstrapUser reads the logged-in employee from the BILLED_USER
// environment variable, a serialized session bucket entry.
func bootstrapUser() (*session.User, error) {
	raw := os.Getenv("BILLED_USER")
	if raw == "" {
		raw = `{"type":"Employee","email":"employee@test.tld"}`
	}

	bucket := session.MapBucket{session.UserKey: raw}
	u, err := session.CurrentUser(bucket)
	if err != nil {
		return nil, fmt.Errorf("invalid BILLED_USER value: %w", err)
	}
	if u.Email == "" {
		return nil, fmt.Errorf("session user has no email")
	}
	return u, nil
}

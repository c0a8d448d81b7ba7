package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tgshop/tgshop/internal/bot"
	"github.com/tgshop/tgshop/internal/cart"
	"github.com/tgshop/tgshop/internal/catalog"
	"github.com/tgshop/tgshop/internal/config"
	"github.com/tgshop/tgshop/internal/identity"
	"github.com/tgshop/tgshop/internal/infra"
	"github.com/tgshop/tgshop/internal/ledger"
	"github.com/tgshop/tgshop/internal/logging"
	"github.com/tgshop/tgshop/internal/notification"
	"github.com/tgshop/tgshop/internal/ops"
	"github.com/tgshop/tgshop/internal/order"
	"github.com/tgshop/tgshop/internal/session"
	"github.com/tgshop/tgshop/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, carts and sessions will not survive restarts")
	}

	var ledgerBackend ledger.Ledger
	if cfg.SheetID != "" {
		ledgerBackend, err = ledger.NewSheets(ctx, cfg.CredentialsFile, cfg.SheetID)
		if err != nil {
			logger.Error("connect sheets ledger", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("SHEET_ID not set, order ledger is in-memory only")
		ledgerBackend = ledger.NewInMemory()
	}
	ledgerBackend = ledger.WithRetry(ledgerBackend, cfg.LedgerRetry, logger)

	var (
		catalogRepo catalog.Repository
		orderRepo   order.Repository
		userRepo    identity.Repository
	)
	if db != nil {
		catalogRepo = catalog.NewPostgresRepository(db)
		orderRepo = order.NewPostgresRepository(db)
		userRepo = identity.NewPostgresRepository(db)
	} else {
		catalogRepo = catalog.NewMemoryRepository()
		orderRepo = order.NewMemoryRepository()
		userRepo = identity.NewMemoryRepository()
	}

	var (
		cartStore    cart.Store
		sessionStore session.Store
	)
	if cache != nil {
		cartStore = cart.NewRedisStore(cache, cfg.CartTTL)
		sessionStore = session.NewRedisStore(cache, cfg.SessionTTL)
	} else {
		cartStore = cart.NewMemoryStore()
		sessionStore = session.NewMemoryStore(cfg.SessionTTL)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("connect telegram", "error", err)
		os.Exit(1)
	}
	logger.Info("telegram connected", "bot", api.Self.UserName)

	issuer, err := wallet.NewIssuer(cfg.WalletAddress)
	if err != nil {
		logger.Error("configure wallet", "error", err)
		os.Exit(1)
	}

	notifier := notification.NewTelegramNotifier(api)
	catalogSvc := catalog.NewService(catalogRepo)
	cartSvc := cart.NewService(cartStore, catalogSvc)
	orderSvc := order.NewService(orderRepo, ledgerBackend, cartSvc, notifier, logger, cfg.AdminIDs, cfg.LedgerTimeout)

	shopBot := bot.New(api, sessionStore, cartSvc, catalogSvc, orderSvc, issuer, userRepo, logger)

	srv, err := ops.New(ops.Deps{
		Cfg:      cfg,
		DB:       db,
		Cache:    cache,
		Logger:   logger,
		Orders:   orderSvc,
		Catalog:  catalogSvc,
		Users:    userRepo,
		Notifier: notifier,
	})
	if err != nil {
		logger.Error("build ops server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	botErrCh := make(chan error, 1)
	go func() {
		botErrCh <- shopBot.Run(ctx)
	}()

	logger.Info("shop bot running", "ops_addr", cfg.Address(), "admins", len(cfg.AdminIDs))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("ops server error", "error", err)
			os.Exit(1)
		}
	case err := <-botErrCh:
		if err != nil {
			logger.Error("bot error", "error", err)
			os.Exit(1)
		}
	}

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("shop bot exited cleanly")
}

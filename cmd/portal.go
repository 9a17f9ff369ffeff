package main

import (
	"context"
	"fmt"

	"MediLedger/cache"
	"MediLedger/config"
	"MediLedger/database"
	"MediLedger/ledger"
	"MediLedger/repositories"
	"MediLedger/routes"
	"MediLedger/services"
	"MediLedger/utils"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPortalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Serve the patient and doctor portal API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig((*config.AppConfig).RequirePortal)
			if err != nil {
				return err
			}
			return runPortal(cmd.Context(), cfg)
		},
	}
}

func runPortal(ctx context.Context, cfg *config.AppConfig) error {
	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	tokens, err := utils.NewTokenMaker(cfg.SymmetricKey)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		database.MonitorRedisPool(redisClient, logger)
	}

	backend, err := openCacheBackend(cfg, redisClient)
	if err != nil {
		return err
	}
	store := cache.NewStore(backend, logger)
	defer store.Close()

	var locker services.Locker = services.NewLocalLocker()
	if redisClient != nil {
		locker = database.NewRedisLocker(redisClient, logger)
	}

	var channels []services.Channel
	if cfg.SMTPHost != "" {
		channels = append(channels, utils.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass))
	}
	if cfg.NotifyDSN != "" {
		notifier, err := database.OpenNotifier(cfg.NotifyDSN, cfg.NotifyChannel)
		if err != nil {
			return err
		}
		defer notifier.Close()
		channels = append(channels, notifier)
	}
	notifications := services.NewNotificationService(logger, channels...)

	clock := utils.SystemClock{}
	client := ledger.NewClient(
		ledger.NewHTTPTransport(cfg.LedgerURL, cfg.BearerToken, cfg.ReceiptPoll),
		ledger.Options{
			ReadTimeout:    cfg.ReadTimeout,
			LoginTimeout:   cfg.LoginTimeout,
			SubmitTimeout:  cfg.SubmitTimeout,
			ConfirmTimeout: cfg.ConfirmTimeout,
			Clock:          clock,
		},
		logger,
	)

	reconciler := services.NewReconciler(cfg.ReconcileDelay, clock, logger)
	defer reconciler.Close()

	users := repositories.NewUserRepository(client)
	appointments := services.NewAppointmentService(
		repositories.NewAppointmentRepository(client, store, logger),
		repositories.NewRequestRepository(client, store, logger),
		users,
		locker,
		notifications,
		clock,
		logger,
	)
	chat := services.NewChatService(
		repositories.NewMessageRepository(client, store, logger),
		users,
		appointments,
		notifications,
		reconciler,
		clock,
		logger,
	)

	handler := routes.SetupPortalRoutes(cfg, routes.Portal{
		Auth:         services.NewAuthService(users, tokens, logger),
		Appointments: appointments,
		Chat:         chat,
	}, logger)

	logger.Info("portal configured",
		zap.String("ledger", cfg.LedgerURL),
		zap.String("cache", cfg.CacheBackend),
		zap.Int("notification_channels", len(channels)))
	return serve(cfg.PortalAddr, handler, logger)
}

func openCacheBackend(cfg *config.AppConfig, redisClient *redis.Client) (cache.Backend, error) {
	switch cfg.CacheBackend {
	case "redis":
		return cache.NewRedisCache(redisClient, "mediledger:")
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		return cache.NewLevelCache(cfg.CachePath)
	}
}

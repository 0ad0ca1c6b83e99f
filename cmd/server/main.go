package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/application/engine"
	"github.com/mwangaza-erp/approvalflow/internal/application/service"
	"github.com/mwangaza-erp/approvalflow/internal/config"
	"github.com/mwangaza-erp/approvalflow/internal/infrastructure/gateway"
	"github.com/mwangaza-erp/approvalflow/internal/infrastructure/persistence/repository"
	httpiface "github.com/mwangaza-erp/approvalflow/internal/interfaces/http"
	"github.com/mwangaza-erp/approvalflow/internal/notification"
	"github.com/mwangaza-erp/approvalflow/internal/reports"
	"github.com/mwangaza-erp/approvalflow/internal/worker"
	"github.com/mwangaza-erp/approvalflow/pkg/cache"
	"github.com/mwangaza-erp/approvalflow/pkg/database"
	"github.com/mwangaza-erp/approvalflow/pkg/utils"
)

func main() {
	// Local .env overrides for development; absent in production
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
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

	logger.Info("Starting Approval Workflow Engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
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

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	entityRepo := repository.NewEntityRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)
	flowRepo := repository.NewFlowRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)

	// Initialize notification gateways
	emailClient := gateway.NewEmailClient(gateway.EmailConfig{
		BaseURL:     cfg.Email.BaseURL,
		APIKey:      cfg.Email.APIKey,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		Timeout:     cfg.Email.Timeout,
	}, logger)
	smsClient := gateway.NewSMSClient(gateway.SMSConfig{
		BaseURL:  cfg.SMS.BaseURL,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
		Timeout:  cfg.SMS.Timeout,
	}, logger)
	dispatcher := notification.NewDispatcher(emailClient, smsClient, logger)

	// Acceptance codes live in redis when configured, otherwise in-process
	var codes cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(context.Background(), cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.KeyPrefix)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		codes = redisCache
	} else {
		logger.Warn("Redis not configured, acceptance codes will not survive restarts")
		codes = cache.NewMemory()
	}

	// Initialize application services
	sugar := utils.NewSugarAdapter(logger)
	directoryService := service.NewDirectoryService(userRepo, cfg.Approvals.RoleMappings, sugar)
	flowService := service.NewFlowService(flowRepo, sugar)
	acceptanceService := service.NewAcceptanceService(entityRepo, auditRepo, userRepo, codes, smsClient, cfg.Approvals.AcceptanceCodeTTL, sugar)

	// Initialize the workflow engine
	approvalEngine := engine.New(
		engine.DefaultTypeConfigs(),
		entityRepo,
		auditRepo,
		flowService,
		directoryService,
		dispatcher,
		logger,
	)

	voucherGenerator := reports.NewVoucherGenerator(cfg.Voucher.CompanyName, logger)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background reminder for approvals sitting past their SLA window
	reminder := worker.NewDeadlineReminder(entityRepo, flowService, directoryService, dispatcher, logger)
	if err := reminder.Start(ctx); err != nil {
		logger.Fatal("Failed to start deadline reminder", zap.Error(err))
	}
	defer reminder.Stop()

	// Initialize HTTP server
	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		approvalEngine,
		flowService,
		acceptanceService,
		voucherGenerator,
		sugar,
	)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

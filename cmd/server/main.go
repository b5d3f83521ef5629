package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/service"
	"github.com/motorsvc/invoice-tracker/internal/config"
	"github.com/motorsvc/invoice-tracker/internal/infrastructure/extraction"
	"github.com/motorsvc/invoice-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/motorsvc/invoice-tracker/internal/infrastructure/storage"
	httpserver "github.com/motorsvc/invoice-tracker/internal/interfaces/http"
	"github.com/motorsvc/invoice-tracker/pkg/database"
	"github.com/motorsvc/invoice-tracker/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
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

	logger.Info("Starting invoice tracker",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and transaction manager
	sqliteDB := sqlite.NewDB(db.DB, logger)
	customerRepo := sqlite.NewCustomerRepository(sqliteDB, logger)
	vehicleRepo := sqlite.NewVehicleRepository(sqliteDB, logger)
	orderRepo := sqlite.NewOrderRepository(sqliteDB, logger)
	invoiceRepo := sqlite.NewInvoiceRepository(sqliteDB, logger)
	paymentRepo := sqlite.NewPaymentRepository(sqliteDB, logger)

	// Extraction pipeline
	pdfReader := extraction.NewPDFTextReader(logger)
	var aiExtractor *extraction.AIExtractor
	if cfg.OpenAI.APIKey != "" {
		aiExtractor = extraction.NewAIExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	} else {
		logger.Warn("No OpenAI API key configured, AI extraction fallback disabled")
	}
	extractor := extraction.NewDocumentExtractor(pdfReader, aiExtractor, logger)

	documentStore := storage.NewLocalDocumentStore(cfg.Storage.DocumentDir, logger)

	// Application services
	customerResolver := service.NewCustomerResolver(customerRepo, vehicleRepo, logger)
	vehicleResolver := service.NewVehicleResolver(vehicleRepo, logger)
	orderResolver := service.NewOrderResolver(orderRepo, logger)
	reconciler := service.NewInvoiceReconciler(invoiceRepo, paymentRepo, logger)
	uploadService := service.NewUploadService(
		extractor,
		documentStore,
		customerResolver,
		vehicleResolver,
		orderResolver,
		reconciler,
		invoiceRepo,
		sqliteDB,
		logger,
	)
	invoiceService := service.NewInvoiceService(invoiceRepo, documentStore, logger)
	reportService := service.NewReportService(invoiceRepo, paymentRepo, logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			DefaultBranchID: cfg.Invoice.DefaultBranchID,
			MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		},
		uploadService,
		invoiceService,
		orderResolver,
		reportService,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

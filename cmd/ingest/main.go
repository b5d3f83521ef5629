// Command ingest batch-processes invoice documents outside the HTTP server:
// `ingest run` reconciles a directory of PDFs against a branch, `ingest
// export` writes the Excel invoice register.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/service"
	"github.com/motorsvc/invoice-tracker/internal/config"
	"github.com/motorsvc/invoice-tracker/internal/infrastructure/extraction"
	"github.com/motorsvc/invoice-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/motorsvc/invoice-tracker/internal/infrastructure/storage"
	"github.com/motorsvc/invoice-tracker/pkg/database"
	"github.com/motorsvc/invoice-tracker/pkg/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Batch invoice ingestion and reporting",
	Long: `Batch operations over the invoice store.

run    processes every PDF in a directory through the same extraction and
       reconciliation pipeline the upload endpoint uses.
export writes the branch invoice register as an Excel workbook.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile a directory of invoice PDFs",
	RunE:  runIngest,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the invoice register workbook",
	RunE:  runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config file")

	runCmd.Flags().String("dir", "", "directory of PDF invoices to process")
	runCmd.Flags().Int64("branch", 0, "branch ID to reconcile against (default: configured branch)")
	_ = runCmd.MarkFlagRequired("dir")

	exportCmd.Flags().String("out", "invoice-register.xlsx", "output workbook path")
	exportCmd.Flags().Int64("branch", 0, "branch ID to export (default: configured branch)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
}

// app bundles the wired services the subcommands share.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *database.DB
	uploads *service.UploadService
	reports *service.ReportService
}

func (a *app) close() {
	a.db.Close()
	a.logger.Sync()
}

func bootstrap() (*app, error) {
	_ = gotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	sqliteDB := sqlite.NewDB(db.DB, logger)
	customerRepo := sqlite.NewCustomerRepository(sqliteDB, logger)
	vehicleRepo := sqlite.NewVehicleRepository(sqliteDB, logger)
	orderRepo := sqlite.NewOrderRepository(sqliteDB, logger)
	invoiceRepo := sqlite.NewInvoiceRepository(sqliteDB, logger)
	paymentRepo := sqlite.NewPaymentRepository(sqliteDB, logger)

	pdfReader := extraction.NewPDFTextReader(logger)
	var aiExtractor *extraction.AIExtractor
	if cfg.OpenAI.APIKey != "" {
		aiExtractor = extraction.NewAIExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	}
	extractor := extraction.NewDocumentExtractor(pdfReader, aiExtractor, logger)
	documentStore := storage.NewLocalDocumentStore(cfg.Storage.DocumentDir, logger)

	uploads := service.NewUploadService(
		extractor,
		documentStore,
		service.NewCustomerResolver(customerRepo, vehicleRepo, logger),
		service.NewVehicleResolver(vehicleRepo, logger),
		service.NewOrderResolver(orderRepo, logger),
		service.NewInvoiceReconciler(invoiceRepo, paymentRepo, logger),
		invoiceRepo,
		sqliteDB,
		logger,
	)
	reports := service.NewReportService(invoiceRepo, paymentRepo, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		uploads: uploads,
		reports: reports,
	}, nil
}

func branchFlag(cmd *cobra.Command, cfg *config.Config) int64 {
	branch, _ := cmd.Flags().GetInt64("branch")
	if branch <= 0 {
		branch = cfg.Invoice.DefaultBranchID
	}
	return branch
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	dir, _ := cmd.Flags().GetString("dir")
	branch := branchFlag(cmd, a.cfg)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}

	ctx := context.Background()
	var processed, failed int
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			a.logger.Error("Failed to read file", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}

		result, err := a.uploads.CommitExtraction(ctx, branch, data, entry.Name(), service.CommitOptions{
			SubmittedBy: "ingest",
		})
		if err != nil {
			a.logger.Error("Reconciliation failed", zap.String("file", entry.Name()), zap.Error(err))
			failed++
			continue
		}
		if !result.Success {
			a.logger.Warn("Document not reconciled",
				zap.String("file", entry.Name()),
				zap.String("message", result.Message))
			failed++
			continue
		}

		a.logger.Info("Invoice ingested",
			zap.String("file", entry.Name()),
			zap.Int64("invoice_id", result.InvoiceID),
			zap.String("invoice_number", result.InvoiceNumber))
		processed++
	}

	fmt.Printf("Processed %d invoices, %d failed\n", processed, failed)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	out, _ := cmd.Flags().GetString("out")
	branch := branchFlag(cmd, a.cfg)

	data, err := a.reports.BuildRegister(context.Background(), branch)
	if err != nil {
		return fmt.Errorf("build register: %w", err)
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Printf("Register written to %s\n", out)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/report"
)

// ReportService builds the invoice register export for a branch.
type ReportService struct {
	invoices port.InvoiceRepository
	payments port.PaymentRepository
	logger   *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(invoices port.InvoiceRepository, payments port.PaymentRepository, logger *zap.Logger) *ReportService {
	return &ReportService{invoices: invoices, payments: payments, logger: logger}
}

// BuildRegister returns the branch's invoice register as an xlsx workbook.
func (s *ReportService) BuildRegister(ctx context.Context, branchID int64) ([]byte, error) {
	invoices, err := s.invoices.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	rows := make([]report.RegisterRow, 0, len(invoices))
	for _, inv := range invoices {
		paid := decimal.Zero
		pays, err := s.payments.ListByInvoiceID(ctx, inv.ID)
		if err != nil {
			s.logger.Warn("failed to load payments for register",
				zap.Int64("invoice_id", inv.ID), zap.Error(err))
		} else {
			for _, p := range pays {
				paid = paid.Add(p.Amount)
			}
		}
		rows = append(rows, report.RegisterRow{Invoice: inv, Paid: paid})
	}

	return report.WriteRegister(rows)
}

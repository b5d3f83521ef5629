package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// InvoiceService covers the read and lifecycle operations on persisted
// invoices: lookups, recent listings, draft to issued to cancelled
// transitions, and source document retrieval.
type InvoiceService struct {
	invoices  port.InvoiceRepository
	documents port.DocumentStore
	logger    *zap.Logger
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoices port.InvoiceRepository, documents port.DocumentStore, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		documents: documents,
		logger:    logger,
	}
}

// Get returns an invoice with its line items loaded.
func (s *InvoiceService) Get(ctx context.Context, branchID, id int64) (*entity.Invoice, []*entity.InvoiceLineItem, error) {
	inv, err := s.invoices.GetByID(ctx, branchID, id)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, nil
	}
	items, err := s.invoices.ListLineItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}

// ListRecent returns the branch's most recent invoices.
func (s *InvoiceService) ListRecent(ctx context.Context, branchID int64, limit int) ([]*entity.Invoice, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.invoices.ListRecent(ctx, branchID, limit)
}

// Finalize moves a draft invoice to issued. An invoice with no line items
// cannot be issued.
func (s *InvoiceService) Finalize(ctx context.Context, branchID, id int64) (*entity.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, nil
	}
	if inv.Status != entity.InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: only draft invoices can be issued, invoice is %s", ErrValidation, inv.Status)
	}

	count, err := s.invoices.CountLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: invoice has no line items", ErrValidation)
	}

	if err := s.invoices.UpdateStatus(ctx, id, entity.InvoiceStatusIssued); err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatusIssued
	s.logger.Info("invoice issued", zap.Int64("invoice_id", id), zap.String("invoice_number", inv.InvoiceNumber))
	return inv, nil
}

// Cancel moves an invoice to cancelled. Cancelling twice is a no-op.
func (s *InvoiceService) Cancel(ctx context.Context, branchID, id int64) (*entity.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, nil
	}
	if inv.Status == entity.InvoiceStatusCancelled {
		return inv, nil
	}

	if err := s.invoices.UpdateStatus(ctx, id, entity.InvoiceStatusCancelled); err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatusCancelled
	s.logger.Info("invoice cancelled", zap.Int64("invoice_id", id), zap.String("invoice_number", inv.InvoiceNumber))
	return inv, nil
}

// Document returns the stored source document for an invoice.
func (s *InvoiceService) Document(ctx context.Context, branchID, id int64) ([]byte, string, error) {
	inv, err := s.invoices.GetByID(ctx, branchID, id)
	if err != nil {
		return nil, "", err
	}
	if inv == nil || inv.DocumentPath == "" {
		return nil, "", nil
	}
	data, err := s.documents.Open(inv.DocumentPath)
	if err != nil {
		return nil, "", fmt.Errorf("open document for invoice %d: %w", id, err)
	}
	return data, inv.DocumentPath, nil
}

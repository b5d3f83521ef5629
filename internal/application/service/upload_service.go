package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
	"github.com/motorsvc/invoice-tracker/pkg/utils"
)

// CommitOptions are the caller-supplied identifiers that steer resolution on
// the commit path.
type CommitOptions struct {
	SelectedOrderID int64
	Plate           string
	CustomerID      int64
	SubmittedBy     string
}

// FormSubmission is the two-step flow's second step: user-confirmed fields
// plus parallel line-item arrays zipped into FormLineItems.
type FormSubmission struct {
	CustomerName     string
	CustomerPhone    string
	CustomerEmail    string
	CustomerAddress  string
	CustomerType     string
	PersonalSubtype  string
	OrganizationName string
	TaxNumber        string

	Plate           string
	SelectedOrderID int64

	InvoiceNumber string
	InvoiceDate   string
	Subtotal      string
	TaxAmount     string
	TotalAmount   string
	PaymentMethod string
	Notes         string
	Remarks       string
	DeliveryTerms string
	AttendedBy    string
	KindAttention string

	SellerName    string
	SellerAddress string
	SellerPhone   string
	SellerEmail   string
	SellerTaxID   string
	SellerVATReg  string

	OrderDescription  string
	ServiceSelection  []string
	EstimatedDuration int

	Items []FormLineItem

	File     []byte
	Filename string

	SubmittedBy string
}

// UploadResult is the outward response summary of a commit.
type UploadResult struct {
	Success       bool                     `json:"success"`
	Message       string                   `json:"message"`
	InvoiceID     int64                    `json:"invoice_id,omitempty"`
	InvoiceNumber string                   `json:"invoice_number,omitempty"`
	OrderID       int64                    `json:"order_id,omitempty"`
	CustomerID    int64                    `json:"customer_id,omitempty"`
	RedirectURL   string                   `json:"redirect_url,omitempty"`
	Error         string                   `json:"error,omitempty"`
	Data          *entity.ExtractionResult `json:"data,omitempty"`
}

// UploadService drives the extraction-to-record pipeline: extract, resolve
// customer/vehicle/order, reconcile the invoice, attach the document. The
// whole resolve-and-create sequence runs in one transaction; best-effort side
// effects (document attachment, order finalization) log and continue.
type UploadService struct {
	extractor port.Extractor
	documents port.DocumentStore
	customers *CustomerResolver
	vehicles  *VehicleResolver
	orders    *OrderResolver
	invoices  *InvoiceReconciler
	invRepo   port.InvoiceRepository
	txManager port.TransactionManager
	logger    *zap.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(
	extractor port.Extractor,
	documents port.DocumentStore,
	customers *CustomerResolver,
	vehicles *VehicleResolver,
	orders *OrderResolver,
	invoices *InvoiceReconciler,
	invRepo port.InvoiceRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) *UploadService {
	return &UploadService{
		extractor: extractor,
		documents: documents,
		customers: customers,
		vehicles:  vehicles,
		orders:    orders,
		invoices:  invoices,
		invRepo:   invRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// ExtractPreview runs extraction only, creating no records. A failed
// extraction still returns its partial data so the caller can offer manual
// completion.
func (s *UploadService) ExtractPreview(ctx context.Context, fileBytes []byte, filename string) (*entity.ExtractionResult, error) {
	result, err := s.extractor.Extract(ctx, fileBytes, filename)
	if err != nil {
		s.logger.Error("extraction error", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return result, nil
}

// CommitExtraction extracts the document and reconciles the result into the
// record graph in a single transaction.
func (s *UploadService) CommitExtraction(ctx context.Context, branchID int64, fileBytes []byte, filename string, opts CommitOptions) (*UploadResult, error) {
	extracted, err := s.extractor.Extract(ctx, fileBytes, filename)
	if err != nil {
		s.logger.Error("extraction error", zap.String("filename", filename), zap.Error(err))
		return &UploadResult{
			Success: false,
			Message: "Failed to extract invoice data from file",
			Error:   err.Error(),
		}, nil
	}
	if !extracted.Success {
		return &UploadResult{
			Success: false,
			Message: failureMessage(extracted),
			Error:   extracted.Error,
			Data:    extracted,
		}, nil
	}

	var result *UploadResult
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		result, txErr = s.reconcileExtraction(txCtx, branchID, extracted, fileBytes, filename, opts)
		return txErr
	})
	if err != nil {
		s.logger.Error("invoice commit failed", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *UploadService) reconcileExtraction(ctx context.Context, branchID int64, extracted *entity.ExtractionResult, fileBytes []byte, filename string, opts CommitOptions) (*UploadResult, error) {
	header := extracted.Header
	plate := utils.NormalizePlate(opts.Plate)

	// The selected order is loaded first so its customer takes priority in
	// the cascade.
	var selectedOrder *entity.Order
	if opts.SelectedOrderID > 0 || plate != "" {
		found, _, err := s.orders.Resolve(ctx, branchID, opts.SelectedOrderID, plate, nil, nil, "")
		if err != nil {
			s.logger.Warn("selected order resolution failed", zap.Error(err))
		} else {
			selectedOrder = found
		}
	}

	identity := CustomerIdentity{
		CustomerID: opts.CustomerID,
		FullName:   header.CustomerName,
		Phone:      header.Phone,
		Email:      header.Email,
		Address:    header.Address,
		Plate:      plate,
	}
	customer, _, err := s.customers.Resolve(ctx, branchID, identity, selectedOrder, true)
	if err != nil {
		s.logger.Warn("customer resolution exhausted", zap.Error(err))
		return &UploadResult{
			Success: false,
			Message: "Could not identify customer from invoice or provided data. Please enter customer details manually.",
			Data:    extracted,
		}, nil
	}

	var vehicle *entity.Vehicle
	if plate != "" {
		vehicle, err = s.vehicles.FindOrCreate(ctx, customer, plate)
		if err != nil {
			s.logger.Warn("vehicle resolution failed", zap.String("plate", plate), zap.Error(err))
			vehicle = nil
		}
	}

	order := selectedOrder
	if order == nil {
		order, _, err = s.orders.Resolve(ctx, branchID, 0, "", customer, vehicle, "")
		if err != nil {
			s.logger.Warn("order creation failed", zap.Error(err))
			order = nil
		}
	}

	inv, err := s.invoices.CreateOrUpdate(ctx, ReconcileInput{
		BranchID:        branchID,
		Order:           order,
		Customer:        customer,
		Header:          header,
		Items:           AggregateExtractedItems(extracted.Items),
		ReferencePrefix: "UPLOAD",
		SubmittedBy:     opts.SubmittedBy,
	})
	if err != nil {
		return nil, err
	}

	s.attachDocument(ctx, inv, fileBytes, filename)

	if order != nil {
		if err := s.orders.AttachParties(ctx, order, customer, vehicle); err != nil {
			s.logger.Warn("failed to relink order parties",
				zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	result := &UploadResult{
		Success:       true,
		Message:       "Invoice created from upload",
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    customer.ID,
		RedirectURL:   fmt.Sprintf("/invoices/%d/", inv.ID),
	}
	if order != nil {
		result.OrderID = order.ID
	}
	return result, nil
}

// CreateFromForm persists a user-confirmed submission (step 2 of the
// two-step flow). Customer name and phone are required before anything is
// written.
func (s *UploadService) CreateFromForm(ctx context.Context, branchID int64, sub FormSubmission) (*UploadResult, error) {
	if strings.TrimSpace(sub.CustomerName) == "" || strings.TrimSpace(sub.CustomerPhone) == "" {
		return &UploadResult{
			Success: false,
			Message: "Customer name and phone are required",
		}, fmt.Errorf("%w: customer name and phone are required", ErrValidation)
	}

	var result *UploadResult
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		result, txErr = s.reconcileForm(txCtx, branchID, sub)
		return txErr
	})
	if err != nil {
		s.logger.Error("form invoice commit failed", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *UploadService) reconcileForm(ctx context.Context, branchID int64, sub FormSubmission) (*UploadResult, error) {
	customer, created, err := s.customers.CreateOrGet(ctx, branchID, CustomerIdentity{
		FullName:         sub.CustomerName,
		Phone:            sub.CustomerPhone,
		Email:            sub.CustomerEmail,
		Address:          sub.CustomerAddress,
		OrganizationName: sub.OrganizationName,
		TaxNumber:        sub.TaxNumber,
		CustomerType:     sub.CustomerType,
		PersonalSubtype:  sub.PersonalSubtype,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerUnresolved
	}
	if created {
		s.logger.Info("created customer from form submission",
			zap.Int64("customer_id", customer.ID))
	}

	plate := utils.NormalizePlate(sub.Plate)
	var vehicle *entity.Vehicle
	if plate != "" {
		vehicle, err = s.vehicles.FindOrCreate(ctx, customer, plate)
		if err != nil {
			s.logger.Warn("vehicle resolution failed", zap.String("plate", plate), zap.Error(err))
			vehicle = nil
		}
	}

	order, _, err := s.orders.Resolve(ctx, branchID, sub.SelectedOrderID, "", customer, vehicle, sub.OrderDescription)
	if err != nil {
		return nil, fmt.Errorf("resolve order: %w", err)
	}
	if order != nil {
		if err := s.orders.AttachParties(ctx, order, customer, vehicle); err != nil {
			s.logger.Warn("failed to relink order parties",
				zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	inv, err := s.invoices.CreateOrUpdate(ctx, ReconcileInput{
		BranchID:        branchID,
		Order:           order,
		Customer:        customer,
		Header:          sub.toHeader(),
		Items:           AggregateFormItems(sub.Items),
		ReferencePrefix: "INV",
		SubmittedBy:     sub.SubmittedBy,
	})
	if err != nil {
		return nil, err
	}

	if len(sub.File) > 0 {
		s.attachDocument(ctx, inv, sub.File, sub.Filename)
	}

	if order != nil {
		if err := s.orders.Finalize(ctx, order, sub.ServiceSelection, sub.EstimatedDuration); err != nil {
			s.logger.Warn("failed to finalize order from invoice",
				zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	result := &UploadResult{
		Success:       true,
		Message:       "Invoice created and order updated successfully",
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    customer.ID,
		RedirectURL:   fmt.Sprintf("/invoices/%d/", inv.ID),
	}
	if order != nil {
		result.OrderID = order.ID
	}
	return result, nil
}

// toHeader maps the confirmed form fields onto the extraction header schema
// the reconciler consumes. Notes, remarks and delivery terms collapse into
// one notes field.
func (sub FormSubmission) toHeader() entity.ExtractionHeader {
	var noteParts []string
	if n := strings.TrimSpace(sub.Notes); n != "" {
		noteParts = append(noteParts, n)
	}
	if r := strings.TrimSpace(sub.Remarks); r != "" {
		noteParts = append(noteParts, r)
	}
	if d := strings.TrimSpace(sub.DeliveryTerms); d != "" {
		noteParts = append(noteParts, "Delivery: "+d)
	}
	return entity.ExtractionHeader{
		Reference:     sub.InvoiceNumber,
		Date:          sub.InvoiceDate,
		Subtotal:      sub.Subtotal,
		Tax:           sub.TaxAmount,
		Total:         sub.TotalAmount,
		PaymentMethod: sub.PaymentMethod,
		Notes:         strings.Join(noteParts, " | "),
		Remarks:       sub.Remarks,
		AttendedBy:    sub.AttendedBy,
		KindAttention: sub.KindAttention,
		SellerName:    sub.SellerName,
		SellerAddress: sub.SellerAddress,
		SellerPhone:   sub.SellerPhone,
		SellerEmail:   sub.SellerEmail,
		SellerTaxID:   sub.SellerTaxID,
		SellerVATReg:  sub.SellerVATReg,
	}
}

// attachDocument stores the uploaded file and records its path on the
// invoice. Failures never block invoice creation.
func (s *UploadService) attachDocument(ctx context.Context, inv *entity.Invoice, fileBytes []byte, filename string) {
	if len(fileBytes) == 0 {
		return
	}
	if filename == "" {
		filename = fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber)
	}
	path, err := s.documents.Save(filename, fileBytes)
	if err != nil {
		s.logger.Warn("failed to store invoice document",
			zap.Int64("invoice_id", inv.ID), zap.Error(err))
		return
	}
	if err := s.invRepo.UpdateDocumentPath(ctx, inv.ID, path); err != nil {
		s.logger.Warn("failed to record document path",
			zap.Int64("invoice_id", inv.ID), zap.Error(err))
	}
}

func failureMessage(extracted *entity.ExtractionResult) string {
	if extracted.Message != "" {
		return extracted.Message
	}
	return "Could not extract data from file. Please enter invoice details manually."
}

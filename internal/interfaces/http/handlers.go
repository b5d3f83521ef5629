package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/service"
)

// Handlers contains all HTTP request handlers.
type Handlers struct {
	uploads         *service.UploadService
	invoices        *service.InvoiceService
	orders          *service.OrderResolver
	reports         *service.ReportService
	defaultBranchID int64
	logger          *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	uploads *service.UploadService,
	invoices *service.InvoiceService,
	orders *service.OrderResolver,
	reports *service.ReportService,
	defaultBranchID int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		uploads:         uploads,
		invoices:        invoices,
		orders:          orders,
		reports:         reports,
		defaultBranchID: defaultBranchID,
		logger:          logger,
	}
}

// Response represents a standard JSON response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// branchID resolves the caller's branch from the X-Branch-ID header, falling
// back to the configured default.
func (h *Handlers) branchID(c *gin.Context) int64 {
	raw := c.GetHeader("X-Branch-ID")
	if raw == "" {
		return h.defaultBranchID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("Invalid branch header, using default", zap.String("value", raw))
		return h.defaultBranchID
	}
	return id
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// readUpload pulls the uploaded document out of the multipart form.
func (h *Handlers) readUpload(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing file upload",
		})
		return nil, "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "could not read uploaded file",
		})
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "could not read uploaded file",
		})
		return nil, "", false
	}
	return data, filepath.Base(fileHeader.Filename), true
}

// ExtractPreview handles POST /api/invoices/extract. It runs extraction only
// and never writes records.
func (h *Handlers) ExtractPreview(c *gin.Context) {
	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.uploads.ExtractPreview(c.Request.Context(), data, filename)
	if err != nil {
		h.logger.Error("Extraction preview failed", zap.String("filename", filename), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   "failed to extract invoice data",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// UploadInvoice handles POST /api/invoices/upload: extraction plus full
// reconciliation in one transaction.
func (h *Handlers) UploadInvoice(c *gin.Context) {
	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	opts := service.CommitOptions{
		Plate:       c.PostForm("plate"),
		SubmittedBy: c.PostForm("submitted_by"),
	}
	if raw := c.PostForm("selected_order_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.SelectedOrderID = id
		}
	}
	if raw := c.PostForm("customer_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.CustomerID = id
		}
	}

	result, err := h.uploads.CommitExtraction(c.Request.Context(), h.branchID(c), data, filename, opts)
	if err != nil {
		h.logger.Error("Invoice upload failed", zap.String("filename", filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to process invoice",
		})
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// CreateFromForm handles POST /api/invoices/from-form: the user-confirmed
// second step of the two-step flow. Line items arrive as parallel arrays.
func (h *Handlers) CreateFromForm(c *gin.Context) {
	sub := service.FormSubmission{
		CustomerName:     c.PostForm("customer_name"),
		CustomerPhone:    c.PostForm("customer_phone"),
		CustomerEmail:    c.PostForm("customer_email"),
		CustomerAddress:  c.PostForm("customer_address"),
		CustomerType:     c.PostForm("customer_type"),
		PersonalSubtype:  c.PostForm("personal_subtype"),
		OrganizationName: c.PostForm("organization_name"),
		TaxNumber:        c.PostForm("tax_number"),

		Plate: c.PostForm("plate"),

		InvoiceNumber: c.PostForm("invoice_number"),
		InvoiceDate:   c.PostForm("invoice_date"),
		Subtotal:      c.PostForm("subtotal"),
		TaxAmount:     c.PostForm("tax_amount"),
		TotalAmount:   c.PostForm("total_amount"),
		PaymentMethod: c.PostForm("payment_method"),
		Notes:         c.PostForm("notes"),
		Remarks:       c.PostForm("remarks"),
		DeliveryTerms: c.PostForm("delivery_terms"),
		AttendedBy:    c.PostForm("attended_by"),
		KindAttention: c.PostForm("kind_attention"),

		SellerName:    c.PostForm("seller_name"),
		SellerAddress: c.PostForm("seller_address"),
		SellerPhone:   c.PostForm("seller_phone"),
		SellerEmail:   c.PostForm("seller_email"),
		SellerTaxID:   c.PostForm("seller_tax_id"),
		SellerVATReg:  c.PostForm("seller_vat_reg"),

		OrderDescription: c.PostForm("order_description"),
		ServiceSelection: formArray(c, "services"),
		SubmittedBy:      c.PostForm("submitted_by"),
	}
	if raw := c.PostForm("selected_order_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			sub.SelectedOrderID = id
		}
	}
	if raw := c.PostForm("estimated_duration"); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil {
			sub.EstimatedDuration = d
		}
	}
	sub.Items = zipFormItems(c)

	if fileHeader, err := c.FormFile("file"); err == nil {
		if f, err := fileHeader.Open(); err == nil {
			if data, err := io.ReadAll(f); err == nil {
				sub.File = data
				sub.Filename = filepath.Base(fileHeader.Filename)
			}
			f.Close()
		}
	}

	result, err := h.uploads.CreateFromForm(c.Request.Context(), h.branchID(c), sub)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, result)
			return
		}
		h.logger.Error("Form invoice creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to create invoice",
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// zipFormItems zips the parallel item arrays into per-index line items.
// Arrays may be ragged; missing cells read as empty.
func zipFormItems(c *gin.Context) []service.FormLineItem {
	descriptions := formArray(c, "item_description")
	codes := formArray(c, "item_code")
	qtys := formArray(c, "item_qty")
	prices := formArray(c, "item_price")
	units := formArray(c, "item_unit")

	at := func(arr []string, i int) string {
		if i < len(arr) {
			return arr[i]
		}
		return ""
	}

	items := make([]service.FormLineItem, 0, len(descriptions))
	for i := range descriptions {
		items = append(items, service.FormLineItem{
			Description: descriptions[i],
			Code:        at(codes, i),
			Qty:         at(qtys, i),
			Price:       at(prices, i),
			Unit:        at(units, i),
		})
	}
	return items
}

// formArray reads a repeated form field, accepting both the bare name and
// the PHP-style bracket suffix some clients send.
func formArray(c *gin.Context, name string) []string {
	if values := c.PostFormArray(name); len(values) > 0 {
		return values
	}
	return c.PostFormArray(name + "[]")
}

// ListStartedOrders handles GET /api/orders/started?plate=.
func (h *Handlers) ListStartedOrders(c *gin.Context) {
	plate := c.Query("plate")
	if plate == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "plate query parameter is required",
		})
		return
	}

	orders, err := h.orders.ListStarted(c.Request.Context(), h.branchID(c), plate)
	if err != nil {
		h.logger.Error("Failed to list started orders", zap.String("plate", plate), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    orders,
	})
}

// ListRecentInvoices handles GET /api/invoices/recent.
func (h *Handlers) ListRecentInvoices(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	invoices, err := h.invoices.ListRecent(c.Request.Context(), h.branchID(c), limit)
	if err != nil {
		h.logger.Error("Failed to list recent invoices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve invoices",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    invoices,
	})
}

func (h *Handlers) invoiceID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid invoice ID",
		})
		return 0, false
	}
	return id, true
}

// GetInvoice handles GET /api/invoices/:id.
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	inv, items, err := h.invoices.Get(c.Request.Context(), h.branchID(c), id)
	if err != nil {
		h.logger.Error("Failed to get invoice", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve invoice",
		})
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "invoice not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"invoice": inv,
			"items":   items,
		},
	})
}

// FinalizeInvoice handles POST /api/invoices/:id/finalize.
func (h *Handlers) FinalizeInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	inv, err := h.invoices.Finalize(c.Request.Context(), h.branchID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusConflict, Response{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		h.logger.Error("Failed to finalize invoice", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to finalize invoice",
		})
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "invoice not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    inv,
	})
}

// CancelInvoice handles POST /api/invoices/:id/cancel.
func (h *Handlers) CancelInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	inv, err := h.invoices.Cancel(c.Request.Context(), h.branchID(c), id)
	if err != nil {
		h.logger.Error("Failed to cancel invoice", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to cancel invoice",
		})
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "invoice not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    inv,
	})
}

// DownloadDocument handles GET /api/invoices/:id/document.
func (h *Handlers) DownloadDocument(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	data, path, err := h.invoices.Document(c.Request.Context(), h.branchID(c), id)
	if err != nil {
		h.logger.Error("Failed to load invoice document", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to load document",
		})
		return
	}
	if data == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "no document stored for invoice",
		})
		return
	}

	filename := filepath.Base(path)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportRegister handles GET /api/invoices/export.
func (h *Handlers) ExportRegister(c *gin.Context) {
	data, err := h.reports.BuildRegister(c.Request.Context(), h.branchID(c))
	if err != nil {
		h.logger.Error("Failed to build invoice register", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to build register",
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-register.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

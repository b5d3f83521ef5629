package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// In-memory fakes over the repository ports, used across the service tests.

type fakeCustomerRepo struct {
	customers []*entity.Customer
	nextID    int64
	plates    map[int64]string // customer id -> plate, for name+plate lookups
	failures  map[string]error
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{plates: make(map[int64]string), failures: make(map[string]error)}
}

func (f *fakeCustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if err := f.failures["Create"]; err != nil {
		return err
	}
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	f.customers = append(f.customers, c)
	return nil
}

func (f *fakeCustomerRepo) GetByID(ctx context.Context, branchID, id int64) (*entity.Customer, error) {
	if err := f.failures["GetByID"]; err != nil {
		return nil, err
	}
	for _, c := range f.customers {
		if c.ID == id && c.BranchID == branchID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerRepo) GetByNamePhone(ctx context.Context, branchID int64, fullName, phone string) (*entity.Customer, error) {
	if err := f.failures["GetByNamePhone"]; err != nil {
		return nil, err
	}
	for _, c := range f.customers {
		if c.BranchID == branchID && c.FullName == fullName && c.Phone == phone {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerRepo) GetByNameAndPlate(ctx context.Context, branchID int64, fullName, plate string) (*entity.Customer, error) {
	for _, c := range f.customers {
		if c.BranchID == branchID && c.FullName == fullName && strings.EqualFold(f.plates[c.ID], plate) {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerRepo) UpdateContact(ctx context.Context, c *entity.Customer) error {
	return f.failures["UpdateContact"]
}

type fakeVehicleRepo struct {
	vehicles []*entity.Vehicle
	owners   map[string]*entity.Customer // plate -> owner
	nextID   int64
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{owners: make(map[string]*entity.Customer)}
}

func (f *fakeVehicleRepo) Create(ctx context.Context, v *entity.Vehicle) error {
	f.nextID++
	v.ID = f.nextID
	f.vehicles = append(f.vehicles, v)
	return nil
}

func (f *fakeVehicleRepo) GetByCustomerPlate(ctx context.Context, customerID int64, plate string) (*entity.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.CustomerID == customerID && strings.EqualFold(v.PlateNumber, plate) {
			return v, nil
		}
	}
	return nil, nil
}

func (f *fakeVehicleRepo) GetOwnerByPlate(ctx context.Context, branchID int64, plate string) (*entity.Customer, error) {
	if owner, ok := f.owners[strings.ToUpper(plate)]; ok && owner.BranchID == branchID {
		return owner, nil
	}
	return nil, nil
}

type fakeOrderRepo struct {
	orders  []*entity.Order
	plates  map[int64]string // order id -> plate
	nextID  int64
	updates int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{plates: make(map[int64]string)}
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	f.nextID++
	o.ID = f.nextID
	o.OrderNumber = fmt.Sprintf("ORD%04d", f.nextID)
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, branchID, id int64) (*entity.Order, error) {
	for _, o := range f.orders {
		if o.ID == id && o.BranchID == branchID {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindStartedByPlate(ctx context.Context, branchID int64, plate string) (*entity.Order, error) {
	orders, err := f.ListStartedByPlate(ctx, branchID, plate)
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[0], nil
}

func (f *fakeOrderRepo) ListStartedByPlate(ctx context.Context, branchID int64, plate string) ([]*entity.Order, error) {
	var out []*entity.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		o := f.orders[i]
		if o.BranchID == branchID && o.Status == entity.OrderStatusCreated && strings.EqualFold(f.plates[o.ID], plate) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, o *entity.Order) error {
	f.updates++
	return nil
}

type fakeInvoiceRepo struct {
	invoices  []*entity.Invoice
	lineItems map[int64][]*entity.InvoiceLineItem
	nextID    int64

	totalsCalls  int
	deletedItems []int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{lineItems: make(map[int64][]*entity.InvoiceLineItem)}
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	f.nextID++
	inv.ID = f.nextID
	inv.CreatedAt = time.Now()
	f.invoices = append(f.invoices, inv)
	return nil
}

func (f *fakeInvoiceRepo) GetByID(ctx context.Context, branchID, id int64) (*entity.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id && inv.BranchID == branchID {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) GetByOrderID(ctx context.Context, orderID int64) (*entity.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.OrderID != nil && *inv.OrderID == orderID {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	return nil
}

func (f *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.Status = status
		}
	}
	return nil
}

func (f *fakeInvoiceRepo) UpdateDocumentPath(ctx context.Context, id int64, path string) error {
	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.DocumentPath = path
		}
	}
	return nil
}

func (f *fakeInvoiceRepo) UpdateTotals(ctx context.Context, id int64, subtotal, taxAmount, totalAmount decimal.Decimal) error {
	f.totalsCalls++
	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.Subtotal = subtotal
			inv.TaxAmount = taxAmount
			inv.TotalAmount = totalAmount
		}
	}
	return nil
}

func (f *fakeInvoiceRepo) BulkInsertLineItems(ctx context.Context, items []*entity.InvoiceLineItem) error {
	for _, it := range items {
		f.lineItems[it.InvoiceID] = append(f.lineItems[it.InvoiceID], it)
	}
	return nil
}

func (f *fakeInvoiceRepo) DeleteLineItems(ctx context.Context, invoiceID int64) error {
	f.deletedItems = append(f.deletedItems, invoiceID)
	delete(f.lineItems, invoiceID)
	return nil
}

func (f *fakeInvoiceRepo) ListLineItems(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLineItem, error) {
	return f.lineItems[invoiceID], nil
}

func (f *fakeInvoiceRepo) CountLineItems(ctx context.Context, invoiceID int64) (int, error) {
	return len(f.lineItems[invoiceID]), nil
}

func (f *fakeInvoiceRepo) CountByDate(ctx context.Context, branchID int64, date time.Time) (int, error) {
	count := 0
	for _, inv := range f.invoices {
		if inv.BranchID == branchID && inv.CreatedAt.Format("2006-01-02") == date.Format("2006-01-02") {
			count++
		}
	}
	return count, nil
}

func (f *fakeInvoiceRepo) ListRecent(ctx context.Context, branchID int64, limit int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for i := len(f.invoices) - 1; i >= 0 && len(out) < limit; i-- {
		if f.invoices[i].BranchID == branchID {
			out = append(out, f.invoices[i])
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) ListByBranch(ctx context.Context, branchID int64) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range f.invoices {
		if inv.BranchID == branchID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	payments []*entity.InvoicePayment
	nextID   int64
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *entity.InvoicePayment) error {
	f.nextID++
	p.ID = f.nextID
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakePaymentRepo) ListByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoicePayment, error) {
	var out []*entity.InvoicePayment
	for _, p := range f.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeExtractor struct {
	result *entity.ExtractionResult
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, fileBytes []byte, filename string) (*entity.ExtractionResult, error) {
	return f.result, f.err
}

type fakeDocumentStore struct {
	saved map[string][]byte
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{saved: make(map[string][]byte)}
}

func (f *fakeDocumentStore) Save(filename string, data []byte) (string, error) {
	path := "stored/" + filename
	f.saved[path] = data
	return path, nil
}

func (f *fakeDocumentStore) Open(path string) ([]byte, error) {
	return f.saved[path], nil
}

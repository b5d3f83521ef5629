package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

func newInvoiceServiceFixture() (*InvoiceService, *fakeInvoiceRepo, *fakeDocumentStore) {
	invoices := newFakeInvoiceRepo()
	documents := newFakeDocumentStore()
	return NewInvoiceService(invoices, documents, zap.NewNop()), invoices, documents
}

func draftInvoice(t *testing.T, invoices *fakeInvoiceRepo, branchID int64, withItems bool) *entity.Invoice {
	t.Helper()
	inv := &entity.Invoice{BranchID: branchID, Status: entity.InvoiceStatusDraft, InvoiceNumber: "INV-20240301-0001"}
	require.NoError(t, invoices.Create(context.Background(), inv))
	if withItems {
		require.NoError(t, invoices.BulkInsertLineItems(context.Background(), []*entity.InvoiceLineItem{
			{InvoiceID: inv.ID, Description: "Service"},
		}))
	}
	return inv
}

func TestInvoiceService_Get(t *testing.T) {
	svc, invoices, _ := newInvoiceServiceFixture()
	inv := draftInvoice(t, invoices, 1, true)

	got, items, err := svc.Get(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Len(t, items, 1)
}

func TestInvoiceService_GetMissing(t *testing.T) {
	svc, _, _ := newInvoiceServiceFixture()

	got, items, err := svc.Get(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, items)
}

func TestInvoiceService_ListRecentClampsLimit(t *testing.T) {
	svc, invoices, _ := newInvoiceServiceFixture()
	for i := 0; i < 25; i++ {
		draftInvoice(t, invoices, 1, false)
	}

	got, err := svc.ListRecent(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, got, 20, "zero limit falls back to the default")

	got, err = svc.ListRecent(context.Background(), 1, 500)
	require.NoError(t, err)
	assert.Len(t, got, 20, "oversized limit falls back to the default")

	got, err = svc.ListRecent(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestInvoiceService_Finalize(t *testing.T) {
	svc, invoices, _ := newInvoiceServiceFixture()
	inv := draftInvoice(t, invoices, 1, true)

	got, err := svc.Finalize(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusIssued, got.Status)

	// Issuing twice is rejected.
	_, err = svc.Finalize(context.Background(), 1, inv.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInvoiceService_FinalizeRequiresLineItems(t *testing.T) {
	svc, invoices, _ := newInvoiceServiceFixture()
	inv := draftInvoice(t, invoices, 1, false)

	_, err := svc.Finalize(context.Background(), 1, inv.ID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
}

func TestInvoiceService_FinalizeMissing(t *testing.T) {
	svc, _, _ := newInvoiceServiceFixture()

	got, err := svc.Finalize(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvoiceService_CancelIsIdempotent(t *testing.T) {
	svc, invoices, _ := newInvoiceServiceFixture()
	inv := draftInvoice(t, invoices, 1, true)

	got, err := svc.Cancel(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, got.Status)

	got, err = svc.Cancel(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, got.Status)
}

func TestInvoiceService_Document(t *testing.T) {
	svc, invoices, documents := newInvoiceServiceFixture()
	inv := draftInvoice(t, invoices, 1, true)

	path, err := documents.Save("invoice.pdf", []byte("%PDF content"))
	require.NoError(t, err)
	require.NoError(t, invoices.UpdateDocumentPath(context.Background(), inv.ID, path))

	data, gotPath, err := svc.Document(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, []byte("%PDF content"), data)
}

func TestInvoiceService_DocumentAbsent(t *testing.T) {
	svc, invoices, _ := newInvoiceServiceFixture()
	inv := draftInvoice(t, invoices, 1, true)

	data, path, err := svc.Document(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, path)
}

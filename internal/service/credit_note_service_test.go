package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pharmapos/internal/domain"
	"pharmapos/internal/port"
	"pharmapos/internal/service"
	"pharmapos/internal/tax"
	"pharmapos/mocks"
)

type creditNoteDeps struct {
	tx          *mocks.MockTransactor
	invoices    *mocks.MockInvoiceRepo
	creditNotes *mocks.MockCreditNoteRepo
	sequences   *mocks.MockSequenceAllocator
	storage     *mocks.MockObjectStorage
}

func newCreditNoteService(t *testing.T, roundOff bool) (service.CreditNoteService, *creditNoteDeps) {
	t.Helper()
	d := &creditNoteDeps{
		tx:          &mocks.MockTransactor{},
		invoices:    new(mocks.MockInvoiceRepo),
		creditNotes: new(mocks.MockCreditNoteRepo),
		sequences:   new(mocks.MockSequenceAllocator),
		storage:     new(mocks.MockObjectStorage),
	}
	svc := service.NewCreditNoteService(d.tx, d.invoices, d.creditNotes, d.sequences,
		service.NewArchiver(d.storage, "archive-bucket", "tax"), nil, zap.NewNop(),
		service.CreditNoteConfig{NumberTemplate: tax.DefaultCreditNoteNumberTemplate, NumberRetries: 3, ApplyRoundOff: roundOff})
	return svc, d
}

// billedInvoice is an issued intra-state invoice with one 30.00 x 2 line at 12% exclusive.
func billedInvoice(t *testing.T, returned int64) *domain.Invoice {
	t.Helper()
	lt, err := tax.CalculateLine(tax.LineInput{
		UnitPricePaise: 3000,
		Quantity:       2,
		Rate:           tax.TaxRate{RatePercent: decimal.NewFromInt(12), Convention: domain.PricingExclusive, Source: domain.RateSourceProduct},
		Supply:         domain.SupplyIntraState,
	})
	require.NoError(t, err)

	number := "INV/2025-03/0001"
	id := uuid.New()
	return &domain.Invoice{
		ID:            id,
		SellerGSTINID: sellerID,
		Number:        &number,
		Status:        domain.InvoiceStatusIssued,
		SupplyType:    domain.SupplyIntraState,
		LineItems: []domain.InvoiceLineItem{{
			ID:               uuid.New(),
			InvoiceID:        id,
			LineNo:           1,
			Description:      "Paracetamol 500mg",
			UnitPricePaise:   3000,
			Quantity:         2,
			LineTaxResult:    lt,
			ReturnedQuantity: returned,
		}},
	}
}

func TestCreditNoteService_Create(t *testing.T) {
	svc, d := newCreditNoteService(t, true)
	inv := billedInvoice(t, 0)
	d.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	d.sequences.On("Next", mock.Anything, sellerID, domain.DocumentKindCreditNote, mock.AnythingOfType("string")).
		Return(int64(12), nil)
	d.creditNotes.On("Create", mock.Anything, mock.AnythingOfType("*domain.CreditNote")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.CreditNote).ID = uuid.New() }).
		Return(nil)
	d.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)

	cn, err := svc.Create(context.Background(), inv.ID, service.CreateCreditNoteInput{
		Lines: []service.ReturnLineInput{{
			OriginalLineItemID: inv.LineItems[0].ID,
			ReturnQuantity:     1,
			ReasonCode:         domain.ReturnReasonDamaged,
			Remarks:            "crushed box",
		}},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^CN/\d{4}-\d{2}/0012$`, cn.Number)
	assert.Equal(t, inv.ID, cn.InvoiceID)
	assert.Equal(t, domain.CreditNoteStatusIssued, cn.Status)
	assert.Equal(t, domain.SupplyIntraState, cn.SupplyType)
	assert.Equal(t, domain.Paise(3000), cn.TotalTaxablePaise)
	assert.Equal(t, domain.Paise(180), cn.TotalCGSTPaise)
	assert.Equal(t, domain.Paise(180), cn.TotalSGSTPaise)
	assert.Equal(t, domain.Paise(3360), cn.GrandTotalPaise)
	require.Len(t, cn.Lines, 1)
	assert.Equal(t, "crushed box", cn.Lines[0].Remarks)

	d.creditNotes.AssertExpectations(t)
	d.storage.AssertExpectations(t)
	for key := range d.storage.Uploaded {
		assert.Regexp(t, `^tax/`+sellerID.String()+`/credit-notes/\d{4}-\d{2}/CN_\d{4}-\d{2}_0012\.csv$`, key)
	}
}

func TestCreditNoteService_Create_SecondHalfCompletesLine(t *testing.T) {
	svc, d := newCreditNoteService(t, false)
	inv := billedInvoice(t, 1)
	d.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	d.sequences.On("Next", mock.Anything, sellerID, domain.DocumentKindCreditNote, mock.Anything).Return(int64(2), nil)
	d.creditNotes.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)

	cn, err := svc.Create(context.Background(), inv.ID, service.CreateCreditNoteInput{
		Lines: []service.ReturnLineInput{{
			OriginalLineItemID: inv.LineItems[0].ID,
			ReturnQuantity:     1,
			ReasonCode:         domain.ReturnReasonCustomerReturn,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Paise(3360), cn.GrandTotalPaise)
	assert.Equal(t, domain.Paise(0), cn.RoundOffPaise)
}

func TestCreditNoteService_Create_Rejections(t *testing.T) {
	t.Run("draft_invoice", func(t *testing.T) {
		svc, d := newCreditNoteService(t, true)
		inv := billedInvoice(t, 0)
		inv.Status = domain.InvoiceStatusDraft
		d.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)

		_, err := svc.Create(context.Background(), inv.ID, service.CreateCreditNoteInput{
			Lines: []service.ReturnLineInput{{OriginalLineItemID: inv.LineItems[0].ID, ReturnQuantity: 1, ReasonCode: domain.ReturnReasonDamaged}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		d.sequences.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("exceeds_remaining", func(t *testing.T) {
		svc, d := newCreditNoteService(t, true)
		inv := billedInvoice(t, 1)
		d.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)

		_, err := svc.Create(context.Background(), inv.ID, service.CreateCreditNoteInput{
			Lines: []service.ReturnLineInput{{OriginalLineItemID: inv.LineItems[0].ID, ReturnQuantity: 2, ReasonCode: domain.ReturnReasonExpired}},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		d.creditNotes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown_invoice", func(t *testing.T) {
		svc, d := newCreditNoteService(t, true)
		id := uuid.New()
		d.invoices.On("GetForUpdate", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

		_, err := svc.Create(context.Background(), id, service.CreateCreditNoteInput{
			Lines: []service.ReturnLineInput{{OriginalLineItemID: uuid.New(), ReturnQuantity: 1, ReasonCode: domain.ReturnReasonOther}},
		})
		assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	})
}

func TestCreditNoteService_Create_RetriesDuplicateNumber(t *testing.T) {
	svc, d := newCreditNoteService(t, true)
	inv := billedInvoice(t, 0)
	d.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	d.sequences.On("Next", mock.Anything, sellerID, domain.DocumentKindCreditNote, mock.Anything).Return(int64(5), nil).Once()
	d.sequences.On("Next", mock.Anything, sellerID, domain.DocumentKindCreditNote, mock.Anything).Return(int64(6), nil).Once()
	d.creditNotes.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateDocumentNumber).Once()
	d.creditNotes.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	d.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)

	cn, err := svc.Create(context.Background(), inv.ID, service.CreateCreditNoteInput{
		Lines: []service.ReturnLineInput{{OriginalLineItemID: inv.LineItems[0].ID, ReturnQuantity: 2, ReasonCode: domain.ReturnReasonRecall}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `/0006$`, cn.Number)
	assert.Equal(t, domain.Paise(6720), cn.GrandTotalPaise)
	assert.Equal(t, 2, d.tx.Calls)
}

func TestCreditNoteService_ListByInvoice(t *testing.T) {
	svc, d := newCreditNoteService(t, true)
	inv := billedInvoice(t, 0)
	missing := uuid.New()
	d.invoices.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	d.invoices.On("GetByID", mock.Anything, missing).Return(nil, domain.ErrInvoiceNotFound)
	d.creditNotes.On("ListByInvoice", mock.Anything, inv.ID).Return([]domain.CreditNote{{Number: "CN/2025-03/0001"}}, nil)

	notes, err := svc.ListByInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	_, err = svc.ListByInvoice(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	d.creditNotes.AssertNumberOfCalls(t, "ListByInvoice", 1)
}

package billing_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newService(repo billing.Repository, cfg billing.Config) *billing.Service {
	return billing.NewService(repo, cfg, billing.WithClock(func() time.Time { return fixedNow }))
}

func validInvoiceParams(storeID uuid.UUID) billing.CreateInvoiceParams {
	return billing.CreateInvoiceParams{
		StoreID:    storeID,
		PartyType:  billing.PartyCustomer,
		SourceType: billing.SourceManual,
		Items: []billing.LineInput{
			{Description: "Bike tune-up", Quantity: dec("2"), UnitPrice: dec("100"), TaxRate: dec("10")},
		},
	}
}

func TestService_CreateInvoice(t *testing.T) {
	storeID := uuid.New()

	type mocks struct {
		repo *billing.MockRepository
		itx  *billing.MockInvoiceTx
	}

	type testCase struct {
		name      string
		params    func() billing.CreateInvoiceParams
		cfg       billing.Config
		setupMock func(m mocks)
		wantErr   error
		check     func(t *testing.T, inv *billing.Invoice)
	}

	tests := []testCase{
		{
			name:   "Success",
			params: func() billing.CreateInvoiceParams { return validInvoiceParams(storeID) },
			setupMock: func(m mocks) {
				gomock.InOrder(
					m.repo.EXPECT().BeginInvoice(gomock.Any()).Return(m.itx, nil),
					m.itx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil),
					m.itx.EXPECT().CreateLineItems(gomock.Any(), gomock.Len(1)).Return(nil),
					m.itx.EXPECT().Commit().Return(nil),
				)
				m.itx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, inv *billing.Invoice) {
				assertAmount(t, "200", inv.Subtotal)
				assertAmount(t, "20", inv.TaxAmount)
				assertAmount(t, "0", inv.DiscountAmount)
				assertAmount(t, "220", inv.TotalAmount)
				assertAmount(t, "0", inv.AmountPaid)
				assertAmount(t, "220", inv.AmountDue)
				assert.Equal(t, billing.InvoiceDraft, inv.Status)
				assert.Regexp(t, invoiceNumberRe, inv.InvoiceNumber)
				assert.Equal(t, storeID, inv.StoreID)
				assert.Equal(t, fixedNow, inv.CreatedAt)

				require.Len(t, inv.LineItems, 1)
				assert.Equal(t, inv.ID, inv.LineItems[0].InvoiceID)
				assert.Equal(t, billing.ItemTypeCustom, inv.LineItems[0].ItemType)
				assertAmount(t, "220", inv.LineItems[0].LineTotal)
			},
		},
		{
			name: "ItemsKeepOrder",
			params: func() billing.CreateInvoiceParams {
				p := validInvoiceParams(storeID)
				p.Items = append(p.Items, billing.LineInput{Description: "Chain", Quantity: dec("1"), UnitPrice: dec("35")})

				return p
			},
			setupMock: func(m mocks) {
				m.repo.EXPECT().BeginInvoice(gomock.Any()).Return(m.itx, nil)
				m.itx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.itx.EXPECT().CreateLineItems(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, items []billing.LineItem) error {
						if len(items) != 2 || items[0].SortOrder != 0 || items[1].SortOrder != 1 {
							return fmt.Errorf("unexpected items %+v", items)
						}

						return nil
					})
				m.itx.EXPECT().Commit().Return(nil)
				m.itx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, inv *billing.Invoice) {
				assertAmount(t, "255", inv.TotalAmount)
				assert.Equal(t, "Chain", inv.LineItems[1].Description)
			},
		},
		{
			name:   "ItemsFailureRollsBack",
			params: func() billing.CreateInvoiceParams { return validInvoiceParams(storeID) },
			setupMock: func(m mocks) {
				m.repo.EXPECT().BeginInvoice(gomock.Any()).Return(m.itx, nil)
				m.itx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.itx.EXPECT().CreateLineItems(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
				m.itx.EXPECT().Commit().Times(0)
				m.itx.EXPECT().Rollback().Return(nil)
			},
			wantErr: errors.New("db error"),
		},
		{
			name:   "DuplicateNumberRetried",
			params: func() billing.CreateInvoiceParams { return validInvoiceParams(storeID) },
			setupMock: func(m mocks) {
				m.repo.EXPECT().BeginInvoice(gomock.Any()).Return(m.itx, nil).Times(2)
				gomock.InOrder(
					m.itx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).
						Return(fmt.Errorf("inserting invoice: %w", billing.ErrDuplicateNumber)),
					m.itx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil),
				)
				m.itx.EXPECT().CreateLineItems(gomock.Any(), gomock.Any()).Return(nil)
				m.itx.EXPECT().Commit().Return(nil)
				m.itx.EXPECT().Rollback().Return(nil).Times(2)
			},
			check: func(t *testing.T, inv *billing.Invoice) {
				assert.Regexp(t, invoiceNumberRe, inv.InvoiceNumber)
			},
		},
		{
			name:   "DuplicateNumberExhausted",
			params: func() billing.CreateInvoiceParams { return validInvoiceParams(storeID) },
			cfg:    billing.Config{NumberAttempts: 2},
			setupMock: func(m mocks) {
				m.repo.EXPECT().BeginInvoice(gomock.Any()).Return(m.itx, nil).Times(2)
				m.itx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(billing.ErrDuplicateNumber).Times(2)
				m.itx.EXPECT().Rollback().Return(nil).Times(2)
			},
			wantErr: billing.ErrDuplicateNumber,
		},
		{
			name: "NegativeLineRejected",
			params: func() billing.CreateInvoiceParams {
				p := validInvoiceParams(storeID)
				p.Items[0].Discount = dec("500")

				return p
			},
			wantErr: billing.ErrNegativeLineTotal,
		},
		{
			name: "NegativeLineAllowedAsCredit",
			params: func() billing.CreateInvoiceParams {
				p := validInvoiceParams(storeID)
				p.Items[0].TaxRate = decimal.Zero
				p.Items[0].Discount = dec("250")

				return p
			},
			cfg: billing.Config{NegativeLines: billing.NegativeAllowCredit},
			setupMock: func(m mocks) {
				m.repo.EXPECT().BeginInvoice(gomock.Any()).Return(m.itx, nil)
				m.itx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.itx.EXPECT().CreateLineItems(gomock.Any(), gomock.Any()).Return(nil)
				m.itx.EXPECT().Commit().Return(nil)
				m.itx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, inv *billing.Invoice) {
				assertAmount(t, "-50", inv.TotalAmount)
				assertAmount(t, "0", inv.AmountDue)
				assert.Equal(t, billing.InvoiceDraft, inv.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks{repo: billing.NewMockRepository(ctrl), itx: billing.NewMockInvoiceTx(ctrl)}
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			svc := newService(m.repo, tt.cfg)
			got, err := svc.CreateInvoice(context.Background(), tt.params())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, billing.ErrDuplicateNumber) || errors.Is(tt.wantErr, billing.ErrNegativeLineTotal) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.ErrorContains(t, err, tt.wantErr.Error())
				}

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_CreateInvoice_Validation(t *testing.T) {
	storeID := uuid.New()

	tests := []struct {
		name   string
		mutate func(p *billing.CreateInvoiceParams)
		field  string
	}{
		{"MissingStore", func(p *billing.CreateInvoiceParams) { p.StoreID = uuid.Nil }, "store_id"},
		{"UnknownParty", func(p *billing.CreateInvoiceParams) { p.PartyType = "vendor" }, "party_type"},
		{"UnknownSource", func(p *billing.CreateInvoiceParams) { p.SourceType = "import" }, "source_type"},
		{"NoItems", func(p *billing.CreateInvoiceParams) { p.Items = nil }, "items"},
		{"ZeroQuantity", func(p *billing.CreateInvoiceParams) { p.Items[0].Quantity = decimal.Zero }, "items[0].quantity"},
		{"NegativePrice", func(p *billing.CreateInvoiceParams) { p.Items[0].UnitPrice = dec("-1") }, "items[0].unit_price"},
		{"NegativeDiscount", func(p *billing.CreateInvoiceParams) { p.Items[0].Discount = dec("-1") }, "items[0].discount"},
		{"RateAboveHundred", func(p *billing.CreateInvoiceParams) { p.Items[0].TaxRate = dec("101") }, "items[0].tax_rate"},
		{"InvoiceRateNegative", func(p *billing.CreateInvoiceParams) { p.TaxRate = decPtr("-5") }, "tax_rate"},
		{"InvoiceDiscountNegative", func(p *billing.CreateInvoiceParams) { p.DiscountAmount = decPtr("-5") }, "discount_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No repository expectations: validation fails before any write.
			svc := newService(billing.NewMockRepository(ctrl), billing.Config{})

			p := validInvoiceParams(storeID)
			tt.mutate(&p)

			_, err := svc.CreateInvoice(context.Background(), p)

			var verr *billing.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func invoiceFixture(storeID uuid.UUID) *billing.Invoice {
	return &billing.Invoice{
		ID:            uuid.New(),
		StoreID:       storeID,
		InvoiceNumber: "INV-20260504-AB12C",
		Subtotal:      dec("200"),
		TaxAmount:     dec("20"),
		TotalAmount:   dec("220"),
		AmountPaid:    decimal.Zero,
		AmountDue:     dec("220"),
		Status:        billing.InvoiceDraft,
	}
}

func TestService_RecordPayment(t *testing.T) {
	storeID := uuid.New()

	type mocks struct {
		repo *billing.MockRepository
		stx  *billing.MockSettlementTx
	}

	type testCase struct {
		name      string
		invoice   *billing.Invoice
		amount    string
		unbound   bool
		setupMock func(m mocks, inv *billing.Invoice)
		wantErr   error
		check     func(t *testing.T, s *billing.Settlement)
	}

	settleOK := func(m mocks, inv *billing.Invoice) {
		gomock.InOrder(
			m.repo.EXPECT().BeginSettlement(gomock.Any()).Return(m.stx, nil),
			m.stx.EXPECT().LockInvoice(gomock.Any(), storeID, inv.ID).Return(inv, nil),
			m.stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil),
			m.stx.EXPECT().CreateAllocation(gomock.Any(), gomock.Any()).Return(nil),
			m.stx.EXPECT().UpdateInvoiceBalance(gomock.Any(), gomock.Any()).Return(nil),
			m.stx.EXPECT().Commit().Return(nil),
		)
		m.stx.EXPECT().Rollback().Return(nil)
	}

	tests := []testCase{
		{
			name:      "FullPayment",
			invoice:   invoiceFixture(storeID),
			amount:    "220",
			setupMock: settleOK,
			check: func(t *testing.T, s *billing.Settlement) {
				assertAmount(t, "220", s.Invoice.AmountPaid)
				assertAmount(t, "0", s.Invoice.AmountDue)
				assert.Equal(t, billing.InvoicePaid, s.Invoice.Status)
				assert.Equal(t, billing.PaymentCompleted, s.Payment.Status)
				require.NotNil(t, s.Allocation)
				assertAmount(t, "220", s.Allocation.Amount)
				assert.Equal(t, s.Payment.ID, s.Allocation.PaymentID)
				assert.Equal(t, s.Invoice.ID, s.Allocation.InvoiceID)
				assert.Equal(t, fixedNow, *s.Invoice.UpdatedAt)
			},
		},
		{
			name:      "PartialPayment",
			invoice:   invoiceFixture(storeID),
			amount:    "100",
			setupMock: settleOK,
			check: func(t *testing.T, s *billing.Settlement) {
				assertAmount(t, "100", s.Invoice.AmountPaid)
				assertAmount(t, "120", s.Invoice.AmountDue)
				assert.Equal(t, billing.InvoicePartial, s.Invoice.Status)
			},
		},
		{
			name:    "Unattached",
			unbound: true,
			amount:  "50",
			setupMock: func(m mocks, _ *billing.Invoice) {
				m.repo.EXPECT().BeginSettlement(gomock.Any()).Return(m.stx, nil)
				m.stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
				m.stx.EXPECT().Commit().Return(nil)
				m.stx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, s *billing.Settlement) {
				assert.Nil(t, s.Payment.InvoiceID)
				assert.Nil(t, s.Allocation)
				assert.Nil(t, s.Invoice)
				assert.Regexp(t, `^PAY-\d+$`, s.Payment.PaymentNumber)
			},
		},
		{
			name:    "InvoiceNotFound",
			invoice: invoiceFixture(storeID),
			amount:  "10",
			setupMock: func(m mocks, inv *billing.Invoice) {
				m.repo.EXPECT().BeginSettlement(gomock.Any()).Return(m.stx, nil)
				m.stx.EXPECT().LockInvoice(gomock.Any(), storeID, inv.ID).Return(nil, billing.ErrNotFound)
				m.stx.EXPECT().Rollback().Return(nil)
			},
			wantErr: billing.ErrNotFound,
		},
		{
			name:    "AllocationFailureRollsBack",
			invoice: invoiceFixture(storeID),
			amount:  "10",
			setupMock: func(m mocks, inv *billing.Invoice) {
				m.repo.EXPECT().BeginSettlement(gomock.Any()).Return(m.stx, nil)
				m.stx.EXPECT().LockInvoice(gomock.Any(), storeID, inv.ID).Return(inv, nil)
				m.stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
				m.stx.EXPECT().CreateAllocation(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
				m.stx.EXPECT().UpdateInvoiceBalance(gomock.Any(), gomock.Any()).Times(0)
				m.stx.EXPECT().Commit().Times(0)
				m.stx.EXPECT().Rollback().Return(nil)
			},
			wantErr: errors.New("db error"),
		},
		{
			name:    "DuplicateNumberRetried",
			unbound: true,
			amount:  "10",
			setupMock: func(m mocks, _ *billing.Invoice) {
				m.repo.EXPECT().BeginSettlement(gomock.Any()).Return(m.stx, nil).Times(2)

				var first string

				gomock.InOrder(
					m.stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, p *billing.Payment) error {
							first = p.PaymentNumber
							return billing.ErrDuplicateNumber
						}),
					m.stx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, p *billing.Payment) error {
							if p.PaymentNumber == first {
								return errors.New("number reused after collision")
							}

							return nil
						}),
				)
				m.stx.EXPECT().Commit().Return(nil)
				m.stx.EXPECT().Rollback().Return(nil).Times(2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks{repo: billing.NewMockRepository(ctrl), stx: billing.NewMockSettlementTx(ctrl)}
			if tt.setupMock != nil {
				tt.setupMock(m, tt.invoice)
			}

			params := billing.RecordPaymentParams{
				StoreID: storeID,
				Amount:  dec(tt.amount),
				Method:  billing.MethodCash,
			}

			if !tt.unbound {
				params.InvoiceID = &tt.invoice.ID
			}

			svc := newService(m.repo, billing.Config{})
			got, err := svc.RecordPayment(context.Background(), params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, billing.ErrNotFound) {
					assert.ErrorIs(t, err, billing.ErrNotFound)
				} else {
					assert.ErrorContains(t, err, tt.wantErr.Error())
				}

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got.Payment)
			assert.Equal(t, storeID, got.Payment.StoreID)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_RecordPayment_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params billing.RecordPaymentParams
		field  string
	}{
		{"MissingStore", billing.RecordPaymentParams{Amount: dec("1"), Method: billing.MethodCash}, "store_id"},
		{"ZeroAmount", billing.RecordPaymentParams{StoreID: uuid.New(), Method: billing.MethodCash}, "amount"},
		{"RoundsToZero", billing.RecordPaymentParams{StoreID: uuid.New(), Amount: dec("0.004"), Method: billing.MethodCash}, "amount"},
		{"NegativeAmount", billing.RecordPaymentParams{StoreID: uuid.New(), Amount: dec("-5"), Method: billing.MethodCash}, "amount"},
		{"UnknownMethod", billing.RecordPaymentParams{StoreID: uuid.New(), Amount: dec("5"), Method: "barter"}, "method"},
		{
			"BadGatewayResponse",
			billing.RecordPaymentParams{
				StoreID: uuid.New(), Amount: dec("5"), Method: billing.MethodQPay,
				GatewayResponse: json.RawMessage(`{"status":`),
			},
			"gateway_response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := newService(billing.NewMockRepository(ctrl), billing.Config{})

			_, err := svc.RecordPayment(context.Background(), tt.params)

			var verr *billing.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

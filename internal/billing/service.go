package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=billing
type Repository interface {
	BeginInvoice(ctx context.Context) (InvoiceTx, error)
	BeginSettlement(ctx context.Context) (SettlementTx, error)

	GetInvoice(ctx context.Context, storeID, id uuid.UUID) (*Invoice, error)
	ListPayments(ctx context.Context, storeID, invoiceID uuid.UUID) ([]*Payment, error)
}

// InvoiceTx writes an invoice header and its items as one unit.
type InvoiceTx interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	CreateLineItems(ctx context.Context, items []LineItem) error
	Commit() error
	Rollback() error
}

// SettlementTx records a payment and reconciles its invoice as one unit. LockInvoice
// holds the invoice exclusively until Commit or Rollback, so concurrent payments
// against the same invoice are applied one after another.
type SettlementTx interface {
	LockInvoice(ctx context.Context, storeID, id uuid.UUID) (*Invoice, error)
	CreatePayment(ctx context.Context, p *Payment) error
	CreateAllocation(ctx context.Context, a *Allocation) error
	UpdateInvoiceBalance(ctx context.Context, inv *Invoice) error
	Commit() error
	Rollback() error
}

const defaultNumberAttempts = 3

type Config struct {
	NegativeLines NegativeLinePolicy
	// NumberAttempts bounds retries when a generated document number is already taken.
	NumberAttempts int
}

type Service struct {
	repo     Repository
	calc     Calculator
	numbers  *Numbers
	attempts int
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithNumbers(n *Numbers) Option {
	return func(s *Service) { s.numbers = n }
}

func NewService(repo Repository, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		calc:     Calculator{Policy: cfg.NegativeLines},
		numbers:  NewNumbers(),
		attempts: cfg.NumberAttempts,
		now:      time.Now,
	}

	if s.attempts <= 0 {
		s.attempts = defaultNumberAttempts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateInvoiceParams struct {
	StoreID    uuid.UUID
	PartyType  PartyType
	PartyID    *uuid.UUID
	SourceType SourceType
	SourceID   *uuid.UUID
	Items      []LineInput
	// TaxRate, when set, replaces per-line tax with a single invoice-level rate.
	TaxRate        *decimal.Decimal
	DiscountAmount *decimal.Decimal
	DueDate        *time.Time
	Notes          string
}

func (p CreateInvoiceParams) validate() error {
	if p.StoreID == uuid.Nil {
		return invalid("store_id", "is required")
	}

	if !p.PartyType.Valid() {
		return invalid("party_type", "unsupported value %q", p.PartyType)
	}

	if !p.SourceType.Valid() {
		return invalid("source_type", "unsupported value %q", p.SourceType)
	}

	if len(p.Items) == 0 {
		return invalid("items", "at least one line item is required")
	}

	for i, it := range p.Items {
		field := fmt.Sprintf("items[%d]", i)

		switch {
		case !it.Quantity.IsPositive():
			return invalid(field+".quantity", "must be greater than zero")
		case it.UnitPrice.IsNegative():
			return invalid(field+".unit_price", "must not be negative")
		case it.Discount.IsNegative():
			return invalid(field+".discount", "must not be negative")
		case !validRate(it.TaxRate):
			return invalid(field+".tax_rate", "must be between 0 and 100")
		}
	}

	if p.TaxRate != nil && !validRate(*p.TaxRate) {
		return invalid("tax_rate", "must be between 0 and 100")
	}

	if p.DiscountAmount != nil && p.DiscountAmount.IsNegative() {
		return invalid("discount_amount", "must not be negative")
	}

	return nil
}

func validRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(hundred)
}

// CreateInvoice computes totals, assigns a number and stores the invoice with its
// items in a single transaction. The invoice starts as a draft with the full total due.
func (s *Service) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	inv, err := s.buildInvoice(params)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		number, err := s.numbers.Invoice(inv.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("generating invoice number: %w", err)
		}

		inv.InvoiceNumber = number

		err = s.persistInvoice(ctx, inv)
		if errors.Is(err, ErrDuplicateNumber) {
			slog.Warn("invoice number collision, retrying",
				"store_id", inv.StoreID, "number", number, "attempt", attempt)

			continue
		}

		if err != nil {
			return nil, err
		}

		return inv, nil
	}

	return nil, fmt.Errorf("allocating invoice number after %d attempts: %w", s.attempts, ErrDuplicateNumber)
}

func (s *Service) buildInvoice(params CreateInvoiceParams) (*Invoice, error) {
	now := s.now()

	inv := &Invoice{
		ID:         uuid.New(),
		StoreID:    params.StoreID,
		PartyType:  params.PartyType,
		PartyID:    params.PartyID,
		SourceType: params.SourceType,
		SourceID:   params.SourceID,
		Status:     InvoiceDraft,
		AmountPaid: decimal.Zero,
		DueDate:    params.DueDate,
		Notes:      params.Notes,
		CreatedAt:  now,
		LineItems:  make([]LineItem, 0, len(params.Items)),
	}

	for i, in := range params.Items {
		total, err := s.calc.Line(in)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		itemType := in.ItemType
		if itemType == "" {
			itemType = ItemTypeCustom
		}

		inv.LineItems = append(inv.LineItems, LineItem{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Discount:    in.Discount,
			TaxRate:     in.TaxRate,
			ItemType:    itemType,
			ItemID:      in.ItemID,
			LineTotal:   total,
			SortOrder:   i,
		})
	}

	totals, err := s.calc.Totals(params.Items, params.TaxRate, params.DiscountAmount)
	if err != nil {
		return nil, err
	}

	inv.Subtotal = totals.Subtotal
	inv.DiscountAmount = totals.DiscountAmount
	inv.TaxAmount = totals.TaxAmount
	inv.TotalAmount = totals.TotalAmount
	inv.AmountDue = AmountDue(totals.TotalAmount, decimal.Zero)

	return inv, nil
}

func (s *Service) persistInvoice(ctx context.Context, inv *Invoice) error {
	itx, err := s.repo.BeginInvoice(ctx)
	if err != nil {
		return fmt.Errorf("begin invoice: %w", err)
	}
	defer itx.Rollback()

	if err := itx.CreateInvoice(ctx, inv); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	if err := itx.CreateLineItems(ctx, inv.LineItems); err != nil {
		return fmt.Errorf("create line items: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return fmt.Errorf("commit invoice: %w", err)
	}

	return nil
}

func (s *Service) GetInvoice(ctx context.Context, storeID, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, storeID, id)
}

func (s *Service) ListPayments(ctx context.Context, storeID, invoiceID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, storeID, invoiceID)
}

type RecordPaymentParams struct {
	StoreID         uuid.UUID
	InvoiceID       *uuid.UUID
	Amount          decimal.Decimal
	Method          PaymentMethod
	GatewayRef      string
	GatewayResponse json.RawMessage
	Notes           string
}

func (p RecordPaymentParams) validate() error {
	if p.StoreID == uuid.Nil {
		return invalid("store_id", "is required")
	}

	if !Round2(p.Amount).IsPositive() {
		return invalid("amount", "must be greater than zero")
	}

	if !p.Method.Valid() {
		return invalid("method", "unsupported value %q", p.Method)
	}

	if len(p.GatewayResponse) > 0 && !json.Valid(p.GatewayResponse) {
		return invalid("gateway_response", "must be valid JSON")
	}

	return nil
}

// Settlement is the outcome of RecordPayment. Allocation and Invoice are nil for a
// payment recorded without an invoice.
type Settlement struct {
	Payment    *Payment
	Allocation *Allocation
	Invoice    *Invoice
}

// RecordPayment stores a completed payment. When an invoice is given, the payment is
// allocated to it in full and the invoice's paid, due and status fields are updated in
// the same transaction, under an exclusive lock on the invoice.
func (s *Service) RecordPayment(ctx context.Context, params RecordPaymentParams) (*Settlement, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		number := s.numbers.Payment(s.now())

		settlement, err := s.settle(ctx, params, number)
		if errors.Is(err, ErrDuplicateNumber) {
			slog.Warn("payment number collision, retrying",
				"store_id", params.StoreID, "number", number, "attempt", attempt)

			continue
		}

		if err != nil {
			return nil, err
		}

		return settlement, nil
	}

	return nil, fmt.Errorf("allocating payment number after %d attempts: %w", s.attempts, ErrDuplicateNumber)
}

func (s *Service) settle(ctx context.Context, params RecordPaymentParams, number string) (*Settlement, error) {
	stx, err := s.repo.BeginSettlement(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin settlement: %w", err)
	}
	defer stx.Rollback()

	var inv *Invoice

	if params.InvoiceID != nil {
		inv, err = stx.LockInvoice(ctx, params.StoreID, *params.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("lock invoice: %w", err)
		}
	}

	now := s.now()
	p := &Payment{
		ID:              uuid.New(),
		StoreID:         params.StoreID,
		InvoiceID:       params.InvoiceID,
		PaymentNumber:   number,
		Amount:          Round2(params.Amount),
		Method:          params.Method,
		Status:          PaymentCompleted,
		GatewayRef:      params.GatewayRef,
		GatewayResponse: params.GatewayResponse,
		Notes:           params.Notes,
		CreatedAt:       now,
	}

	if err := stx.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	result := &Settlement{Payment: p}

	if inv != nil {
		alloc := &Allocation{
			ID:        uuid.New(),
			PaymentID: p.ID,
			InvoiceID: inv.ID,
			Amount:    p.Amount,
			CreatedAt: now,
		}

		if err := stx.CreateAllocation(ctx, alloc); err != nil {
			return nil, fmt.Errorf("create allocation: %w", err)
		}

		inv.ApplyPayment(p.Amount)
		inv.UpdatedAt = &now

		if err := stx.UpdateInvoiceBalance(ctx, inv); err != nil {
			return nil, fmt.Errorf("update invoice balance: %w", err)
		}

		result.Allocation = alloc
		result.Invoice = inv
	}

	if err := stx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settlement: %w", err)
	}

	return result, nil
}

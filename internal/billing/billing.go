package billing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyType is who an invoice is issued to.
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartySupplier PartyType = "supplier"
	PartyStaff    PartyType = "staff"
	PartyDriver   PartyType = "driver"
)

func (p PartyType) Valid() bool {
	switch p {
	case PartyCustomer, PartySupplier, PartyStaff, PartyDriver:
		return true
	}

	return false
}

// SourceType is the business flow that produced an invoice.
type SourceType string

const (
	SourceOrder        SourceType = "order"
	SourceAppointment  SourceType = "appointment"
	SourceReservation  SourceType = "reservation"
	SourceManual       SourceType = "manual"
	SourceSubscription SourceType = "subscription"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceOrder, SourceAppointment, SourceReservation, SourceManual, SourceSubscription:
		return true
	}

	return false
}

// InvoiceStatus is derived from the invoice's paid and due amounts.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
)

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodBank   PaymentMethod = "bank"
	MethodQPay   PaymentMethod = "qpay"
	MethodCard   PaymentMethod = "card"
	MethodOnline PaymentMethod = "online"
	MethodCredit PaymentMethod = "credit"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBank, MethodQPay, MethodCard, MethodOnline, MethodCredit:
		return true
	}

	return false
}

type PaymentStatus string

// Payments are recorded as completed immediately; gateway confirmation flows happen
// before RecordPayment is called.
const PaymentCompleted PaymentStatus = "completed"

// ItemTypeCustom is used for line items that do not reference a catalogue entry.
const ItemTypeCustom = "custom"

// Invoice is a monetary document owed by a party to a store.
type Invoice struct {
	ID             uuid.UUID
	StoreID        uuid.UUID
	InvoiceNumber  string
	PartyType      PartyType
	PartyID        *uuid.UUID
	SourceType     SourceType
	SourceID       *uuid.UUID
	LineItems      []LineItem
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
	AmountDue      decimal.Decimal
	Status         InvoiceStatus
	DueDate        *time.Time
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// LineItem is one priced component of an invoice. It never changes after the
// invoice is built.
type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     decimal.Decimal // percent, 10 means 10%
	ItemType    string
	ItemID      *uuid.UUID
	LineTotal   decimal.Decimal
	SortOrder   int
}

// Payment is money received by a store, optionally against one invoice.
type Payment struct {
	ID              uuid.UUID
	StoreID         uuid.UUID
	InvoiceID       *uuid.UUID
	PaymentNumber   string
	Amount          decimal.Decimal
	Method          PaymentMethod
	Status          PaymentStatus
	GatewayRef      string
	GatewayResponse json.RawMessage
	Notes           string
	CreatedAt       time.Time
}

// Allocation records how much of a payment applies to an invoice.
type Allocation struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// ApplyPayment adds amount to the invoice's paid total and recomputes due and status.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) {
	inv.AmountPaid = Round2(inv.AmountPaid.Add(amount))
	inv.AmountDue = AmountDue(inv.TotalAmount, inv.AmountPaid)
	inv.Status = DeriveStatus(inv.TotalAmount, inv.AmountPaid)
}

// AmountDue is the unpaid remainder of total, floored at zero.
func AmountDue(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, Round2(total.Sub(paid)))
}

// DeriveStatus returns draft before any payment, paid once nothing is due and
// partial otherwise.
func DeriveStatus(total, paid decimal.Decimal) InvoiceStatus {
	if !paid.IsPositive() {
		return InvoiceDraft
	}

	if !AmountDue(total, paid).IsPositive() {
		return InvoicePaid
	}

	return InvoicePartial
}

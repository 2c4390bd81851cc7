package billing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
)

type lineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	ItemType    string          `json:"item_type"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type invoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	StoreID        uuid.UUID             `json:"store_id"`
	InvoiceNumber  string                `json:"invoice_number"`
	PartyType      billing.PartyType     `json:"party_type"`
	PartyID        *uuid.UUID            `json:"party_id,omitempty"`
	SourceType     billing.SourceType    `json:"source_type"`
	SourceID       *uuid.UUID            `json:"source_id,omitempty"`
	Items          []lineItemResponse    `json:"items"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	AmountPaid     decimal.Decimal       `json:"amount_paid"`
	AmountDue      decimal.Decimal       `json:"amount_due"`
	Status         billing.InvoiceStatus `json:"status"`
	DueDate        *time.Time            `json:"due_date,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	Payments       []paymentResponse     `json:"payments,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      *time.Time            `json:"updated_at,omitempty"`
}

func toInvoiceResponse(inv *billing.Invoice, payments []*billing.Payment) invoiceResponse {
	resp := invoiceResponse{
		ID:             inv.ID,
		StoreID:        inv.StoreID,
		InvoiceNumber:  inv.InvoiceNumber,
		PartyType:      inv.PartyType,
		PartyID:        inv.PartyID,
		SourceType:     inv.SourceType,
		SourceID:       inv.SourceID,
		Items:          make([]lineItemResponse, len(inv.LineItems)),
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		TotalAmount:    inv.TotalAmount,
		AmountPaid:     inv.AmountPaid,
		AmountDue:      inv.AmountDue,
		Status:         inv.Status,
		DueDate:        inv.DueDate,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}

	for i, it := range inv.LineItems {
		resp.Items[i] = lineItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TaxRate:     it.TaxRate,
			ItemType:    it.ItemType,
			ItemID:      it.ItemID,
			LineTotal:   it.LineTotal,
		}
	}

	for _, p := range payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}

	return resp
}

type paymentResponse struct {
	ID              uuid.UUID             `json:"id"`
	InvoiceID       *uuid.UUID            `json:"invoice_id,omitempty"`
	PaymentNumber   string                `json:"payment_number"`
	Amount          decimal.Decimal       `json:"amount"`
	Method          billing.PaymentMethod `json:"method"`
	Status          billing.PaymentStatus `json:"status"`
	GatewayRef      string                `json:"gateway_ref,omitempty"`
	GatewayResponse json.RawMessage       `json:"gateway_response,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

func toPaymentResponse(p *billing.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		PaymentNumber:   p.PaymentNumber,
		Amount:          p.Amount,
		Method:          p.Method,
		Status:          p.Status,
		GatewayRef:      p.GatewayRef,
		GatewayResponse: p.GatewayResponse,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

type allocationResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type settlementResponse struct {
	Payment    paymentResponse     `json:"payment"`
	Allocation *allocationResponse `json:"allocation,omitempty"`
	Invoice    *invoiceResponse    `json:"invoice,omitempty"`
}

func toSettlementResponse(s *billing.Settlement) settlementResponse {
	resp := settlementResponse{Payment: toPaymentResponse(s.Payment)}

	if s.Allocation != nil {
		resp.Allocation = &allocationResponse{
			ID:        s.Allocation.ID,
			InvoiceID: s.Allocation.InvoiceID,
			Amount:    s.Allocation.Amount,
		}
	}

	if s.Invoice != nil {
		inv := toInvoiceResponse(s.Invoice, nil)
		resp.Invoice = &inv
	}

	return resp
}

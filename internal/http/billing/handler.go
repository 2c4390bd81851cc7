package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/http/respond"
)

type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes expects to be mounted under a router that carries the {storeID} parameter.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/invoices", h.createInvoice)
	r.Get("/invoices/{id}", h.getInvoice)
	r.Post("/payments", h.recordPayment)
}

func storeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		respond.FieldError(w, http.StatusBadRequest, respond.CodeValidation, "store_id", "invalid store id")
		return uuid.Nil, false
	}

	return id, true
}

type lineItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	ItemType    string          `json:"item_type"`
	ItemID      *uuid.UUID      `json:"item_id"`
}

type createInvoiceRequest struct {
	PartyType      billing.PartyType  `json:"party_type"`
	PartyID        *uuid.UUID         `json:"party_id"`
	SourceType     billing.SourceType `json:"source_type"`
	SourceID       *uuid.UUID         `json:"source_id"`
	Items          []lineItemRequest  `json:"items"`
	TaxRate        *decimal.Decimal   `json:"tax_rate"`
	DiscountAmount *decimal.Decimal   `json:"discount_amount"`
	DueDate        *time.Time         `json:"due_date"`
	Notes          string             `json:"notes"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(w, r)
	if !ok {
		return
	}

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidBody, err.Error())
		return
	}

	items := make([]billing.LineInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = billing.LineInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TaxRate:     it.TaxRate,
			ItemType:    it.ItemType,
			ItemID:      it.ItemID,
		}
	}

	inv, err := h.svc.CreateInvoice(r.Context(), billing.CreateInvoiceParams{
		StoreID:        store,
		PartyType:      req.PartyType,
		PartyID:        req.PartyID,
		SourceType:     req.SourceType,
		SourceID:       req.SourceID,
		Items:          items,
		TaxRate:        req.TaxRate,
		DiscountAmount: req.DiscountAmount,
		DueDate:        req.DueDate,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toInvoiceResponse(inv, nil))
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.FieldError(w, http.StatusBadRequest, respond.CodeValidation, "id", "invalid id")
		return
	}

	inv, err := h.svc.GetInvoice(r.Context(), store, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payments, err := h.svc.ListPayments(r.Context(), store, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toInvoiceResponse(inv, payments))
}

type recordPaymentRequest struct {
	InvoiceID       *uuid.UUID            `json:"invoice_id"`
	Amount          decimal.Decimal       `json:"amount"`
	Method          billing.PaymentMethod `json:"method"`
	GatewayRef      string                `json:"gateway_ref"`
	GatewayResponse json.RawMessage       `json:"gateway_response"`
	Notes           string                `json:"notes"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(w, r)
	if !ok {
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidBody, err.Error())
		return
	}

	s, err := h.svc.RecordPayment(r.Context(), billing.RecordPaymentParams{
		StoreID:         store,
		InvoiceID:       req.InvoiceID,
		Amount:          req.Amount,
		Method:          req.Method,
		GatewayRef:      req.GatewayRef,
		GatewayResponse: req.GatewayResponse,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSettlementResponse(s))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *billing.ValidationError

	switch {
	case errors.As(err, &verr):
		respond.FieldError(w, http.StatusBadRequest, respond.CodeValidation, verr.Field, verr.Message)
	case errors.Is(err, billing.ErrNegativeLineTotal), errors.Is(err, billing.ErrNegativeTotal):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
	case errors.Is(err, billing.ErrNotFound):
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "invoice not found")
	case errors.Is(err, billing.ErrDuplicateNumber):
		respond.Error(w, http.StatusConflict, respond.CodeConflict, "could not allocate a document number, retry")
	default:
		respond.Internal(w, r, err)
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
)

const uniqueViolation = "23505"

// Store is the PostgreSQL implementation of billing.Repository.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ billing.Repository = (*Store)(nil)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, store_id, invoice_number, party_type, party_id, source_type, source_id,
	subtotal, tax_amount, discount_amount, total_amount, amount_paid, amount_due,
	status, due_date, notes, created_at, updated_at
`

// Expected column order: selectInvoiceColumns.
func scanInvoice(s scanner) (*billing.Invoice, error) {
	var inv billing.Invoice

	var partyType, sourceType, status string

	var notes sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.StoreID, &inv.InvoiceNumber, &partyType, &inv.PartyID, &sourceType, &inv.SourceID,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount, &inv.AmountPaid, &inv.AmountDue,
		&status, &inv.DueDate, &notes, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.PartyType = billing.PartyType(partyType)
	inv.SourceType = billing.SourceType(sourceType)
	inv.Status = billing.InvoiceStatus(status)
	inv.Notes = notes.String

	return &inv, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) GetInvoice(ctx context.Context, storeID, id uuid.UUID) (*billing.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE id = $1 AND store_id = $2`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id, storeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, billing.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	items, err := listLineItems(ctx, s.db, inv.ID)
	if err != nil {
		return nil, err
	}

	inv.LineItems = items

	return inv, nil
}

func listLineItems(ctx context.Context, q execer, invoiceID uuid.UUID) ([]billing.LineItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price, discount, tax_rate,
			item_type, item_id, line_total, sort_order
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY sort_order ASC
	`

	rows, err := q.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing invoice items: %w", err)
	}
	defer rows.Close()

	var items []billing.LineItem

	for rows.Next() {
		var it billing.LineItem

		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Discount, &it.TaxRate,
			&it.ItemType, &it.ItemID, &it.LineTotal, &it.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice items: %w", err)
	}

	return items, nil
}

func (s *Store) ListPayments(ctx context.Context, storeID, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	query := `
		SELECT p.id, p.store_id, p.invoice_id, p.payment_number, p.amount, p.method, p.status,
			p.gateway_ref, p.gateway_response, p.notes, p.created_at
		FROM payments p
		JOIN payment_allocations a ON a.payment_id = p.id
		WHERE p.store_id = $1 AND a.invoice_id = $2
		ORDER BY p.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, storeID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*billing.Payment

	for rows.Next() {
		var (
			p                 billing.Payment
			method, status    string
			gatewayRef, notes sql.NullString
			gatewayResponse   []byte
		)

		if err := rows.Scan(
			&p.ID, &p.StoreID, &p.InvoiceID, &p.PaymentNumber, &p.Amount, &method, &status,
			&gatewayRef, &gatewayResponse, &notes, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		p.Method = billing.PaymentMethod(method)
		p.Status = billing.PaymentStatus(status)
		p.GatewayRef = gatewayRef.String
		p.GatewayResponse = gatewayResponse
		p.Notes = notes.String

		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}

type invoiceTx struct {
	tx *sql.Tx
}

func (s *Store) BeginInvoice(ctx context.Context) (billing.InvoiceTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning invoice tx: %w", err)
	}

	return &invoiceTx{tx: tx}, nil
}

func (itx *invoiceTx) Commit() error   { return itx.tx.Commit() }
func (itx *invoiceTx) Rollback() error { return itx.tx.Rollback() }

func (itx *invoiceTx) CreateInvoice(ctx context.Context, inv *billing.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, store_id, invoice_number, party_type, party_id, source_type, source_id,
			subtotal, tax_amount, discount_amount, total_amount, amount_paid, amount_due,
			status, due_date, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := itx.tx.ExecContext(ctx, query,
		inv.ID, inv.StoreID, inv.InvoiceNumber, inv.PartyType, inv.PartyID, inv.SourceType, inv.SourceID,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount, inv.AmountPaid, inv.AmountDue,
		inv.Status, inv.DueDate, nullIfEmpty(inv.Notes), inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting invoice %s: %w", inv.InvoiceNumber, billing.ErrDuplicateNumber)
		}

		return fmt.Errorf("inserting invoice: %w", err)
	}

	return nil
}

func (itx *invoiceTx) CreateLineItems(ctx context.Context, items []billing.LineItem) error {
	query := `
		INSERT INTO invoice_items (
			id, invoice_id, description, quantity, unit_price, discount, tax_rate,
			item_type, item_id, line_total, sort_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, it := range items {
		_, err := itx.tx.ExecContext(ctx, query,
			it.ID, it.InvoiceID, it.Description, it.Quantity, it.UnitPrice, it.Discount, it.TaxRate,
			it.ItemType, it.ItemID, it.LineTotal, it.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("inserting invoice item %d: %w", it.SortOrder, err)
		}
	}

	return nil
}

type settlementTx struct {
	tx *sql.Tx
}

func (s *Store) BeginSettlement(ctx context.Context) (billing.SettlementTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning settlement tx: %w", err)
	}

	return &settlementTx{tx: tx}, nil
}

func (stx *settlementTx) Commit() error   { return stx.tx.Commit() }
func (stx *settlementTx) Rollback() error { return stx.tx.Rollback() }

// LockInvoice reads the invoice with a row lock held until the transaction ends.
func (stx *settlementTx) LockInvoice(ctx context.Context, storeID, id uuid.UUID) (*billing.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE id = $1 AND store_id = $2
		FOR UPDATE`

	inv, err := scanInvoice(stx.tx.QueryRowContext(ctx, query, id, storeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, billing.ErrNotFound
		}

		return nil, fmt.Errorf("locking invoice: %w", err)
	}

	return inv, nil
}

func (stx *settlementTx) CreatePayment(ctx context.Context, p *billing.Payment) error {
	query := `
		INSERT INTO payments (
			id, store_id, invoice_id, payment_number, amount, method, status,
			gateway_ref, gateway_response, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var gatewayResponse any
	if len(p.GatewayResponse) > 0 {
		gatewayResponse = []byte(p.GatewayResponse)
	}

	_, err := stx.tx.ExecContext(ctx, query,
		p.ID, p.StoreID, p.InvoiceID, p.PaymentNumber, p.Amount, p.Method, p.Status,
		nullIfEmpty(p.GatewayRef), gatewayResponse, nullIfEmpty(p.Notes), p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting payment %s: %w", p.PaymentNumber, billing.ErrDuplicateNumber)
		}

		return fmt.Errorf("inserting payment: %w", err)
	}

	return nil
}

func (stx *settlementTx) CreateAllocation(ctx context.Context, a *billing.Allocation) error {
	query := `
		INSERT INTO payment_allocations (id, payment_id, invoice_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := stx.tx.ExecContext(ctx, query, a.ID, a.PaymentID, a.InvoiceID, a.Amount, a.CreatedAt); err != nil {
		return fmt.Errorf("inserting allocation: %w", err)
	}

	return nil
}

func (stx *settlementTx) UpdateInvoiceBalance(ctx context.Context, inv *billing.Invoice) error {
	query := `
		UPDATE invoices
		SET amount_paid = $1, amount_due = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`

	if _, err := stx.tx.ExecContext(ctx, query, inv.AmountPaid, inv.AmountDue, inv.Status, inv.ID); err != nil {
		return fmt.Errorf("updating invoice balance: %w", err)
	}

	return nil
}

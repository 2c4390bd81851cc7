package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
)

var errTxDone = errors.New("transaction already committed or rolled back")

// Memory is an in-process billing.Repository. A settlement holds a per-invoice mutex
// from LockInvoice until Commit or Rollback, giving the same serialization a
// SELECT ... FOR UPDATE gives in PostgreSQL.
type Memory struct {
	mu          sync.RWMutex
	invoices    map[uuid.UUID]*billing.Invoice
	payments    map[uuid.UUID]*billing.Payment
	allocations []*billing.Allocation
	numbers     map[numberKey]struct{}

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

type numberKey struct {
	storeID uuid.UUID
	kind    string
	number  string
}

func NewMemory() *Memory {
	return &Memory{
		invoices: make(map[uuid.UUID]*billing.Invoice),
		payments: make(map[uuid.UUID]*billing.Payment),
		numbers:  make(map[numberKey]struct{}),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

var _ billing.Repository = (*Memory)(nil)

func cloneInvoice(inv *billing.Invoice) *billing.Invoice {
	c := *inv
	c.LineItems = slices.Clone(inv.LineItems)

	return &c
}

func (m *Memory) GetInvoice(_ context.Context, storeID, id uuid.UUID) (*billing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.invoices[id]
	if !ok || inv.StoreID != storeID {
		return nil, billing.ErrNotFound
	}

	return cloneInvoice(inv), nil
}

func (m *Memory) ListPayments(_ context.Context, storeID, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*billing.Payment

	for _, a := range m.allocations {
		if a.InvoiceID != invoiceID {
			continue
		}

		p, ok := m.payments[a.PaymentID]
		if !ok || p.StoreID != storeID {
			continue
		}

		c := *p
		out = append(out, &c)
	}

	return out, nil
}

// Allocations returns every allocation recorded against invoiceID.
func (m *Memory) Allocations(invoiceID uuid.UUID) []billing.Allocation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []billing.Allocation

	for _, a := range m.allocations {
		if a.InvoiceID == invoiceID {
			out = append(out, *a)
		}
	}

	return out
}

// PaymentCount returns how many payments have been committed.
func (m *Memory) PaymentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.payments)
}

func (m *Memory) invoiceLock(id uuid.UUID) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}

	return l
}

func (m *Memory) numberTaken(k numberKey) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, taken := m.numbers[k]

	return taken
}

type memInvoiceTx struct {
	m     *Memory
	done  bool
	inv   *billing.Invoice
	items []billing.LineItem
}

func (m *Memory) BeginInvoice(context.Context) (billing.InvoiceTx, error) {
	return &memInvoiceTx{m: m}, nil
}

func (tx *memInvoiceTx) CreateInvoice(_ context.Context, inv *billing.Invoice) error {
	if tx.done {
		return errTxDone
	}

	if tx.m.numberTaken(numberKey{inv.StoreID, "invoice", inv.InvoiceNumber}) {
		return billing.ErrDuplicateNumber
	}

	tx.inv = cloneInvoice(inv)

	return nil
}

func (tx *memInvoiceTx) CreateLineItems(_ context.Context, items []billing.LineItem) error {
	if tx.done {
		return errTxDone
	}

	tx.items = append(tx.items, items...)

	return nil
}

func (tx *memInvoiceTx) Commit() error {
	if tx.done {
		return errTxDone
	}

	tx.done = true

	if tx.inv == nil {
		return nil
	}

	tx.m.mu.Lock()
	defer tx.m.mu.Unlock()

	k := numberKey{tx.inv.StoreID, "invoice", tx.inv.InvoiceNumber}
	if _, taken := tx.m.numbers[k]; taken {
		return billing.ErrDuplicateNumber
	}

	tx.inv.LineItems = slices.Clone(tx.items)
	tx.m.invoices[tx.inv.ID] = tx.inv
	tx.m.numbers[k] = struct{}{}

	return nil
}

func (tx *memInvoiceTx) Rollback() error {
	if tx.done {
		return errTxDone
	}

	tx.done = true

	return nil
}

type memSettlementTx struct {
	m      *Memory
	done   bool
	locked []*sync.Mutex

	payment     *billing.Payment
	allocations []*billing.Allocation
	balances    map[uuid.UUID]*billing.Invoice
}

func (m *Memory) BeginSettlement(context.Context) (billing.SettlementTx, error) {
	return &memSettlementTx{m: m, balances: make(map[uuid.UUID]*billing.Invoice)}, nil
}

func (tx *memSettlementTx) LockInvoice(ctx context.Context, storeID, id uuid.UUID) (*billing.Invoice, error) {
	if tx.done {
		return nil, errTxDone
	}

	// Existence check first so unknown ids never allocate a mutex.
	if _, err := tx.m.GetInvoice(ctx, storeID, id); err != nil {
		return nil, err
	}

	l := tx.m.invoiceLock(id)
	l.Lock()
	tx.locked = append(tx.locked, l)

	return tx.m.GetInvoice(ctx, storeID, id)
}

func (tx *memSettlementTx) CreatePayment(_ context.Context, p *billing.Payment) error {
	if tx.done {
		return errTxDone
	}

	if tx.m.numberTaken(numberKey{p.StoreID, "payment", p.PaymentNumber}) {
		return billing.ErrDuplicateNumber
	}

	c := *p
	tx.payment = &c

	return nil
}

func (tx *memSettlementTx) CreateAllocation(_ context.Context, a *billing.Allocation) error {
	if tx.done {
		return errTxDone
	}

	c := *a
	tx.allocations = append(tx.allocations, &c)

	return nil
}

func (tx *memSettlementTx) UpdateInvoiceBalance(_ context.Context, inv *billing.Invoice) error {
	if tx.done {
		return errTxDone
	}

	tx.balances[inv.ID] = cloneInvoice(inv)

	return nil
}

func (tx *memSettlementTx) Commit() error {
	if tx.done {
		return errTxDone
	}

	defer tx.release()

	tx.m.mu.Lock()
	defer tx.m.mu.Unlock()

	if tx.payment != nil {
		k := numberKey{tx.payment.StoreID, "payment", tx.payment.PaymentNumber}
		if _, taken := tx.m.numbers[k]; taken {
			return billing.ErrDuplicateNumber
		}

		tx.m.payments[tx.payment.ID] = tx.payment
		tx.m.numbers[k] = struct{}{}
	}

	tx.m.allocations = append(tx.m.allocations, tx.allocations...)

	for id, updated := range tx.balances {
		stored, ok := tx.m.invoices[id]
		if !ok {
			continue
		}

		stored.AmountPaid = updated.AmountPaid
		stored.AmountDue = updated.AmountDue
		stored.Status = updated.Status
		stored.UpdatedAt = updated.UpdatedAt
	}

	return nil
}

func (tx *memSettlementTx) Rollback() error {
	if tx.done {
		return errTxDone
	}

	tx.release()

	return nil
}

func (tx *memSettlementTx) release() {
	tx.done = true

	for _, l := range tx.locked {
		l.Unlock()
	}

	tx.locked = nil
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the kind of balance movement.
type TransactionKind string

const (
	TransactionKindTopUp    TransactionKind = "TOPUP"
	TransactionKindPurchase TransactionKind = "PURCHASE"
	TransactionKindRefund   TransactionKind = "REFUND"
)

// TransactionStatus represents the settlement state of a transaction.
// The engine currently only produces COMPLETED; PENDING and FAILED are
// reserved for asynchronous settlement.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Default descriptions applied when a caller supplies none.
const (
	DefaultTopUpDescription  = "Wallet top-up"
	DefaultRefundDescription = "Refund"
)

// LineItem is one purchased product position inside a purchase transaction.
type LineItem struct {
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Transaction is an immutable ledger entry. Amount carries the sign of the
// balance effect: positive for top-ups and refunds, negative for purchases.
type Transaction struct {
	ID          string            `json:"id"`
	Kind        TransactionKind   `json:"kind"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	Status      TransactionStatus `json:"status"`

	// Purchase-only fields.
	LineItems     []LineItem `json:"line_items,omitempty"`
	InvoiceNumber string     `json:"invoice_number,omitempty"`

	// Refund-only: the transaction this refund compensates. The original
	// transaction itself is never modified.
	RefundedTransactionID string `json:"refunded_transaction_id,omitempty"`
}

// IsDebit reports whether the transaction reduces the balance.
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// NewTransactionID returns a time-ordered, collision-resistant identifier.
// Ordering is approximate (second resolution plus random payload), which is
// why history sorting uses the timestamp, not the ID.
func NewTransactionID() string {
	return xid.New().String()
}

// NewInvoiceNumber returns a unique invoice reference for a purchase.
func NewInvoiceNumber(at time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("INV-%s-%s", at.UTC().Format("20060102150405"), suffix)
}

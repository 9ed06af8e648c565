package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront-wallet/internal/core/domain"
	"storefront-wallet/internal/core/ports"
	"storefront-wallet/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService. It owns the in-memory
// ledger state exclusively; a mutex serializes the mutating operations, so
// each one runs validate -> compute -> mutate -> persist to completion before
// the next begins.
type WalletServiceImpl struct {
	mu           sync.Mutex
	balance      decimal.Decimal
	transactions []domain.Transaction

	store ports.SnapshotStore
	log   zerolog.Logger
}

// NewWalletService creates an empty ledger. Call Hydrate to restore a prior
// session's snapshot.
func NewWalletService(store ports.SnapshotStore, log zerolog.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{
		balance: decimal.Zero,
		store:   store,
		log:     log,
	}
}

// Hydrate restores the ledger from the persisted snapshot. A missing snapshot
// leaves the ledger empty. A backend or decode failure resets the ledger to
// empty and returns STG_002; the ledger remains usable either way.
//
// The stored balance scalar is not trusted: the balance is recomputed from
// the transaction list, and a disagreement is logged as a corruption signal.
func (s *WalletServiceImpl) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Load(ctx, domain.SnapshotKeyWallet)
	if err != nil {
		s.resetLocked()
		return apperror.ErrStorageLoadFailed(fmt.Errorf("load wallet snapshot: %w", err))
	}
	if raw == nil {
		return nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.resetLocked()
		return apperror.ErrStorageLoadFailed(fmt.Errorf("decode wallet snapshot: %w", err))
	}

	derived := snap.SumAmounts()
	if !derived.Equal(snap.Balance) {
		s.log.Warn().
			Str("stored_balance", snap.Balance.String()).
			Str("derived_balance", derived.String()).
			Msg("stored balance disagrees with transaction sum, using derived value")
	}

	s.balance = derived
	s.transactions = snap.Transactions

	s.log.Info().
		Str("balance", s.balance.String()).
		Int("transactions", len(s.transactions)).
		Msg("wallet hydrated")

	return nil
}

func (s *WalletServiceImpl) resetLocked() {
	s.balance = decimal.Zero
	s.transactions = nil
}

// TopUp adds funds to the wallet.
func (s *WalletServiceImpl) TopUp(ctx context.Context, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidTopUpAmount(amount)
	}
	if description == "" {
		description = domain.DefaultTopUpDescription
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn := domain.Transaction{
		ID:          domain.NewTransactionID(),
		Kind:        domain.TransactionKindTopUp,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now().UTC(),
		Status:      domain.TransactionStatusCompleted,
	}

	s.balance = s.balance.Add(amount)
	s.transactions = append(s.transactions, txn)

	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("amount", amount.String()).
		Str("balance", s.balance.String()).
		Msg("top-up completed")

	return &txn, nil
}

// Purchase debits the wallet for the given line items.
func (s *WalletServiceImpl) Purchase(ctx context.Context, items []domain.LineItem, description string) (*domain.Transaction, error) {
	if len(items) == 0 {
		return nil, apperror.ErrNoItemsToPurchase()
	}

	amount := decimal.Zero
	for _, it := range items {
		amount = amount.Add(it.Subtotal())
	}
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidPurchaseAmount(amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance.LessThan(amount) {
		return nil, apperror.ErrInsufficientBalance(amount, s.balance)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		ID:            domain.NewTransactionID(),
		Kind:          domain.TransactionKindPurchase,
		Amount:        amount.Neg(),
		Description:   description,
		Timestamp:     now,
		Status:        domain.TransactionStatusCompleted,
		LineItems:     items,
		InvoiceNumber: domain.NewInvoiceNumber(now),
	}

	s.balance = s.balance.Sub(amount)
	s.transactions = append(s.transactions, txn)

	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("invoice", txn.InvoiceNumber).
		Str("amount", amount.String()).
		Str("balance", s.balance.String()).
		Int("line_items", len(items)).
		Msg("purchase completed")

	return &txn, nil
}

// Refund credits the wallet with a new refund transaction referencing an
// existing one. The original transaction is left untouched, and the refund
// amount is caller-supplied, not derived from the original.
func (s *WalletServiceImpl) Refund(ctx context.Context, transactionID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(transactionID) == nil {
		return nil, apperror.ErrTransactionNotFound(transactionID)
	}
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidRefundAmount(amount)
	}
	if description == "" {
		description = domain.DefaultRefundDescription
	}

	txn := domain.Transaction{
		ID:                    domain.NewTransactionID(),
		Kind:                  domain.TransactionKindRefund,
		Amount:                amount,
		Description:           description,
		Timestamp:             time.Now().UTC(),
		Status:                domain.TransactionStatusCompleted,
		RefundedTransactionID: transactionID,
	}

	s.balance = s.balance.Add(amount)
	s.transactions = append(s.transactions, txn)

	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("refunded_tx_id", transactionID).
		Str("amount", amount.String()).
		Str("balance", s.balance.String()).
		Msg("refund completed")

	return &txn, nil
}

// persistLocked writes the full snapshot through the gateway. The in-memory
// mutation has already happened; on failure memory and storage diverge until
// the next successful persist, and the caller sees STG_001.
func (s *WalletServiceImpl) persistLocked(ctx context.Context) error {
	snap := domain.Snapshot{
		Balance:      s.balance,
		Transactions: s.transactions,
	}

	raw, err := json.Marshal(&snap)
	if err != nil {
		return apperror.ErrStorageSaveFailed(fmt.Errorf("encode wallet snapshot: %w", err))
	}

	if err := s.store.Save(ctx, domain.SnapshotKeyWallet, raw); err != nil {
		s.log.Error().Err(err).Msg("wallet snapshot save failed, memory and storage diverge")
		return apperror.ErrStorageSaveFailed(err)
	}
	return nil
}

// Balance returns the current balance.
func (s *WalletServiceImpl) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// FindTransaction returns the transaction with the given ID, or nil.
func (s *WalletServiceImpl) FindTransaction(id string) *domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.findLocked(id); t != nil {
		cp := *t
		return &cp
	}
	return nil
}

func (s *WalletServiceImpl) findLocked(id string) *domain.Transaction {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return &s.transactions[i]
		}
	}
	return nil
}

// History returns all transactions newest-first. Equal timestamps keep their
// insertion order. The canonical insertion-ordered slice is never mutated.
func (s *WalletServiceImpl) History() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

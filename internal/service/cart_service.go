package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"storefront-wallet/internal/core/domain"
	"storefront-wallet/internal/core/ports"
	"storefront-wallet/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartServiceImpl implements ports.CartService. Items are keyed by product
// ID; adding an already-present product increases its quantity. Every
// mutation persists the cart through the same gateway the wallet uses, under
// its own key.
type CartServiceImpl struct {
	mu    sync.Mutex
	items map[int]domain.CartItem

	wallet ports.WalletService
	store  ports.SnapshotStore
	log    zerolog.Logger
}

// NewCartService creates an empty cart backed by the given snapshot store.
func NewCartService(wallet ports.WalletService, store ports.SnapshotStore, log zerolog.Logger) *CartServiceImpl {
	return &CartServiceImpl{
		items:  make(map[int]domain.CartItem),
		wallet: wallet,
		store:  store,
		log:    log,
	}
}

// Hydrate restores the cart contents from the persisted snapshot. Same
// degradation semantics as the wallet: absent -> empty, failure -> STG_002
// and an empty but usable cart.
func (s *CartServiceImpl) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Load(ctx, domain.SnapshotKeyCart)
	if err != nil {
		s.items = make(map[int]domain.CartItem)
		return apperror.ErrStorageLoadFailed(fmt.Errorf("load cart snapshot: %w", err))
	}
	if raw == nil {
		return nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.items = make(map[int]domain.CartItem)
		return apperror.ErrStorageLoadFailed(fmt.Errorf("decode cart snapshot: %w", err))
	}

	s.items = make(map[int]domain.CartItem, len(items))
	for _, it := range items {
		s.items[it.ID] = it
	}

	s.log.Info().Int("items", len(s.items)).Msg("cart hydrated")
	return nil
}

// AddItem puts quantity units of product into the cart.
func (s *CartServiceImpl) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if quantity <= 0 {
		return apperror.Validation("quantity must be greater than 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[product.ID]
	if ok {
		item.Quantity += quantity
	} else {
		item = domain.CartItem{Product: product, Quantity: quantity}
	}
	s.items[product.ID] = item

	return s.persistLocked(ctx)
}

// UpdateQuantity sets the quantity of a cart item. Zero removes the item.
func (s *CartServiceImpl) UpdateQuantity(ctx context.Context, productID int, quantity int) error {
	if quantity < 0 {
		return apperror.Validation("quantity must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[productID]
	if !ok {
		return apperror.Validation(fmt.Sprintf("product %d is not in the cart", productID))
	}

	if quantity == 0 {
		delete(s.items, productID)
	} else {
		item.Quantity = quantity
		s.items[productID] = item
	}

	return s.persistLocked(ctx)
}

// RemoveItem drops a product from the cart. Removing a missing product is a
// no-op.
func (s *CartServiceImpl) RemoveItem(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, productID)
	return s.persistLocked(ctx)
}

// Clear empties the cart.
func (s *CartServiceImpl) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int]domain.CartItem)
	return s.persistLocked(ctx)
}

// Items returns the cart contents ordered by product ID.
func (s *CartServiceImpl) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

func (s *CartServiceImpl) itemsLocked() []domain.CartItem {
	out := make([]domain.CartItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Total returns the sum of item subtotals.
func (s *CartServiceImpl) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Checkout purchases the cart contents through the wallet and clears the
// cart on success. An empty cart fails before the wallet is touched; a
// declined purchase leaves the cart intact.
func (s *CartServiceImpl) Checkout(ctx context.Context) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return nil, apperror.ErrNoItemsToPurchase()
	}

	items := s.itemsLocked()
	lineItems := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, it.ToLineItem())
	}

	description := fmt.Sprintf("Purchase of %d item(s)", len(lineItems))
	txn, err := s.wallet.Purchase(ctx, lineItems, description)
	if err != nil {
		return nil, err
	}

	s.items = make(map[int]domain.CartItem)
	if err := s.persistLocked(ctx); err != nil {
		// The purchase already settled; an unsaved empty cart only risks
		// re-showing bought items next session.
		s.log.Warn().Err(err).Msg("cart clear failed to persist after checkout")
	}

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("invoice", txn.InvoiceNumber).
		Int("line_items", len(lineItems)).
		Msg("checkout completed")

	return txn, nil
}

func (s *CartServiceImpl) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.itemsLocked())
	if err != nil {
		return apperror.ErrStorageSaveFailed(fmt.Errorf("encode cart snapshot: %w", err))
	}
	if err := s.store.Save(ctx, domain.SnapshotKeyCart, raw); err != nil {
		return apperror.ErrStorageSaveFailed(err)
	}
	return nil
}

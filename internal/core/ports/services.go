package ports

import (
	"context"

	"storefront-wallet/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// WalletService is the ledger engine: three mutating operations plus the
// read-only query surface. Each mutating call either returns the created
// transaction or fails with exactly one taxonomy error, leaving the ledger
// unchanged on any precondition violation.
type WalletService interface {
	// Hydrate restores the ledger from its persisted snapshot. A missing
	// snapshot leaves the ledger empty and returns nil; a load failure
	// returns STG_002 but the ledger stays usable (empty).
	Hydrate(ctx context.Context) error

	TopUp(ctx context.Context, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Purchase(ctx context.Context, items []domain.LineItem, description string) (*domain.Transaction, error)
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal, description string) (*domain.Transaction, error)

	// Query surface: synchronous, non-failing. Absence is nil, not an error.
	Balance() decimal.Decimal
	FindTransaction(id string) *domain.Transaction
	History() []domain.Transaction
}

// CartService manages the shopping cart and its checkout into the wallet.
type CartService interface {
	Hydrate(ctx context.Context) error

	AddItem(ctx context.Context, product domain.Product, quantity int) error
	UpdateQuantity(ctx context.Context, productID int, quantity int) error
	RemoveItem(ctx context.Context, productID int) error
	Clear(ctx context.Context) error

	Items() []domain.CartItem
	Total() decimal.Decimal

	// Checkout purchases the cart contents through the wallet and clears the
	// cart on success. An empty cart fails with WAL_005 before the wallet is
	// touched.
	Checkout(ctx context.Context) (*domain.Transaction, error)
}

// CatalogClient fetches products from the remote catalog API. Failures map
// onto the taxonomy: timeout -> API_001, network unreachable -> API_002,
// other HTTP failure -> API_003, each carrying the endpoint.
type CatalogClient interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
}

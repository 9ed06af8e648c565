package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"storefront-wallet/internal/core/domain"
	"storefront-wallet/internal/core/ports/mocks"
	"storefront-wallet/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type cartTestDeps struct {
	svc    *CartServiceImpl
	wallet *mocks.MockWalletService
	store  *mocks.MockSnapshotStore
	ctrl   *gomock.Controller
}

func setupCartService(t *testing.T) *cartTestDeps {
	ctrl := gomock.NewController(t)
	d := &cartTestDeps{
		wallet: mocks.NewMockWalletService(ctrl),
		store:  mocks.NewMockSnapshotStore(ctrl),
		ctrl:   ctrl,
	}
	d.svc = NewCartService(d.wallet, d.store, zerolog.Nop())
	return d
}

func (d *cartTestDeps) expectSaves() {
	d.store.EXPECT().
		Save(gomock.Any(), domain.SnapshotKeyCart, gomock.Any()).
		Return(nil).
		AnyTimes()
}

func jacket() domain.Product {
	return domain.Product{ID: 1, Title: "Jacket", Price: dec("30"), Category: "clothing"}
}

func mug() domain.Product {
	return domain.Product{ID: 5, Title: "Mug", Price: dec("7.50"), Category: "home"}
}

func TestCartService_AddItem(t *testing.T) {
	d := setupCartService(t)
	d.expectSaves()
	ctx := context.Background()

	require.NoError(t, d.svc.AddItem(ctx, jacket(), 2))
	require.NoError(t, d.svc.AddItem(ctx, mug(), 1))

	// Same product again merges quantities.
	require.NoError(t, d.svc.AddItem(ctx, jacket(), 1))

	items := d.svc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 5, items[1].ID)
	assert.True(t, d.svc.Total().Equal(dec("97.50")))
}

func TestCartService_AddItem_InvalidQuantity(t *testing.T) {
	d := setupCartService(t)

	err := d.svc.AddItem(context.Background(), jacket(), 0)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidationFailed, apperror.Normalize(err).Code)
	assert.Empty(t, d.svc.Items())
}

func TestCartService_UpdateQuantity(t *testing.T) {
	d := setupCartService(t)
	d.expectSaves()
	ctx := context.Background()

	require.NoError(t, d.svc.AddItem(ctx, jacket(), 2))
	require.NoError(t, d.svc.UpdateQuantity(ctx, 1, 5))
	assert.Equal(t, 5, d.svc.Items()[0].Quantity)

	// Zero removes the item.
	require.NoError(t, d.svc.UpdateQuantity(ctx, 1, 0))
	assert.Empty(t, d.svc.Items())
}

func TestCartService_UpdateQuantity_MissingProduct(t *testing.T) {
	d := setupCartService(t)

	err := d.svc.UpdateQuantity(context.Background(), 42, 1)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidationFailed, apperror.Normalize(err).Code)
}

func TestCartService_RemoveItem(t *testing.T) {
	d := setupCartService(t)
	d.expectSaves()
	ctx := context.Background()

	require.NoError(t, d.svc.AddItem(ctx, jacket(), 1))
	require.NoError(t, d.svc.RemoveItem(ctx, 1))
	assert.Empty(t, d.svc.Items())

	// Removing a missing product is a no-op.
	require.NoError(t, d.svc.RemoveItem(ctx, 99))
}

func TestCartService_Checkout_Success(t *testing.T) {
	d := setupCartService(t)
	d.expectSaves()
	ctx := context.Background()

	require.NoError(t, d.svc.AddItem(ctx, jacket(), 2))

	want := &domain.Transaction{
		ID:            "tx-1",
		Kind:          domain.TransactionKindPurchase,
		Amount:        dec("-60"),
		InvoiceNumber: "INV-20250101000000-ABCD1234",
	}
	d.wallet.EXPECT().
		Purchase(gomock.Any(), []domain.LineItem{
			{ProductID: 1, Title: "Jacket", UnitPrice: dec("30"), Quantity: 2},
		}, "Purchase of 1 item(s)").
		Return(want, nil)

	txn, err := d.svc.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, txn)
	assert.Empty(t, d.svc.Items(), "cart should be cleared after successful checkout")
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	d := setupCartService(t)

	txn, err := d.svc.Checkout(context.Background())
	require.Error(t, err)
	assert.Nil(t, txn)
	assert.Equal(t, apperror.CodeNoItemsToPurchase, apperror.Normalize(err).Code)
}

func TestCartService_Checkout_PurchaseDeclined(t *testing.T) {
	d := setupCartService(t)
	d.expectSaves()
	ctx := context.Background()

	require.NoError(t, d.svc.AddItem(ctx, jacket(), 2))

	d.wallet.EXPECT().
		Purchase(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientBalance(dec("60"), dec("10")))

	txn, err := d.svc.Checkout(ctx)
	require.Error(t, err)
	assert.Nil(t, txn)
	assert.Equal(t, apperror.CodeInsufficientBalance, apperror.Normalize(err).Code)

	// Declined checkout keeps the cart intact.
	assert.Len(t, d.svc.Items(), 1)
}

func TestCartService_Hydrate(t *testing.T) {
	d := setupCartService(t)

	items := []domain.CartItem{
		{Product: jacket(), Quantity: 2},
		{Product: mug(), Quantity: 1},
	}
	raw, err := json.Marshal(items)
	require.NoError(t, err)

	d.store.EXPECT().Load(gomock.Any(), domain.SnapshotKeyCart).Return(raw, nil)

	require.NoError(t, d.svc.Hydrate(context.Background()))
	assert.Len(t, d.svc.Items(), 2)
	assert.True(t, d.svc.Total().Equal(dec("67.50")))
}

func TestCartService_Hydrate_Absent(t *testing.T) {
	d := setupCartService(t)
	d.store.EXPECT().Load(gomock.Any(), domain.SnapshotKeyCart).Return(nil, nil)

	require.NoError(t, d.svc.Hydrate(context.Background()))
	assert.Empty(t, d.svc.Items())
}

func TestCartService_Hydrate_LoadFailure(t *testing.T) {
	d := setupCartService(t)
	d.store.EXPECT().
		Load(gomock.Any(), domain.SnapshotKeyCart).
		Return(nil, fmt.Errorf("backend down"))

	err := d.svc.Hydrate(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeStorageLoadFailed, apperror.Normalize(err).Code)

	// Degrades to an empty, usable cart.
	d.expectSaves()
	assert.NoError(t, d.svc.AddItem(context.Background(), mug(), 1))
}

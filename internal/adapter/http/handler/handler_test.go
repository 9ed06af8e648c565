package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-wallet/internal/adapter/http/dto"
	"storefront-wallet/internal/core/domain"
	"storefront-wallet/internal/core/ports"
	"storefront-wallet/internal/core/ports/mocks"
	"storefront-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockWalletService, *mocks.MockCartService, *mocks.MockCatalogClient) {
	t.Helper()
	ctrl := gomock.NewController(t)

	walletSvc := mocks.NewMockWalletService(ctrl)
	cartSvc := mocks.NewMockCartService(ctrl)
	catalog := mocks.NewMockCatalogClient(ctrl)

	router := SetupRouter(RouterDeps{
		WalletSvc: walletSvc,
		CartSvc:   cartSvc,
		Catalog:   catalog,
		Logger:    zerolog.Nop(),
	})
	return router, walletSvc, cartSvc, catalog
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Wallet Handler Tests ---

func TestTopUp_Success(t *testing.T) {
	router, walletSvc, _, _ := newTestRouter(t)

	tx := &domain.Transaction{
		ID:          "tx-1",
		Kind:        domain.TransactionKindTopUp,
		Amount:      dec("50"),
		Description: domain.DefaultTopUpDescription,
		Timestamp:   time.Now(),
		Status:      domain.TransactionStatusCompleted,
	}
	walletSvc.EXPECT().
		TopUp(gomock.Any(), dec("50"), "").
		Return(tx, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/wallet/topup", dto.TopUpRequest{Amount: dec("50")})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "tx-1", data["id"])
	assert.Equal(t, "TOPUP", data["kind"])
	assert.Equal(t, "50", data["amount"])
}

func TestTopUp_InvalidBody(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/topup", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "VAL_001", resp["error_code"])
}

func TestTopUp_InvalidAmount(t *testing.T) {
	router, walletSvc, _, _ := newTestRouter(t)

	walletSvc.EXPECT().
		TopUp(gomock.Any(), dec("-10"), "").
		Return(nil, apperror.ErrInvalidTopUpAmount(dec("-10")))

	w := doJSON(router, http.MethodPost, "/api/v1/wallet/topup", dto.TopUpRequest{Amount: dec("-10")})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_002", resp["error_code"])
}

func TestRefund_Success(t *testing.T) {
	router, walletSvc, _, _ := newTestRouter(t)

	tx := &domain.Transaction{
		ID:                    "tx-refund",
		Kind:                  domain.TransactionKindRefund,
		Amount:                dec("19.99"),
		Description:           domain.DefaultRefundDescription,
		Timestamp:             time.Now(),
		Status:                domain.TransactionStatusCompleted,
		RefundedTransactionID: "tx-orig",
	}
	walletSvc.EXPECT().
		Refund(gomock.Any(), "tx-orig", dec("19.99"), "").
		Return(tx, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/wallet/refund", dto.RefundRequest{
		TransactionID: "tx-orig",
		Amount:        dec("19.99"),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "tx-orig", data["refunded_transaction_id"])
}

func TestRefund_TransactionNotFound(t *testing.T) {
	router, walletSvc, _, _ := newTestRouter(t)

	walletSvc.EXPECT().
		Refund(gomock.Any(), "missing", dec("5"), "").
		Return(nil, apperror.ErrTransactionNotFound("missing"))

	w := doJSON(router, http.MethodPost, "/api/v1/wallet/refund", dto.RefundRequest{
		TransactionID: "missing",
		Amount:        dec("5"),
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_004", resp["error_code"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "missing", data["transaction_id"])
}

func TestGetWallet(t *testing.T) {
	router, walletSvc, _, _ := newTestRouter(t)

	walletSvc.EXPECT().Balance().Return(dec("120.50"))
	walletSvc.EXPECT().History().Return([]domain.Transaction{{ID: "a"}, {ID: "b"}})

	w := doJSON(router, http.MethodGet, "/api/v1/wallet", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "120.5", data["balance"])
	assert.Equal(t, float64(2), data["transaction_count"])
}

func TestListTransactions(t *testing.T) {
	router, walletSvc, _, _ := newTestRouter(t)

	walletSvc.EXPECT().History().Return([]domain.Transaction{
		{ID: "newer", Kind: domain.TransactionKindRefund, Amount: dec("5")},
		{ID: "older", Kind: domain.TransactionKindTopUp, Amount: dec("100")},
	})

	w := doJSON(router, http.MethodGet, "/api/v1/wallet/transactions", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	items := resp["data"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "newer", items[0].(map[string]interface{})["id"])
	assert.Equal(t, "older", items[1].(map[string]interface{})["id"])
}

func TestGetTransaction_NotFound(t *testing.T) {
	router, walletSvc, _, _ := newTestRouter(t)

	walletSvc.EXPECT().FindTransaction("nope").Return(nil)

	w := doJSON(router, http.MethodGet, "/api/v1/wallet/transactions/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_004", resp["error_code"])
}

// --- Cart Handler Tests ---

func TestAddItem_Success(t *testing.T) {
	router, _, cartSvc, catalog := newTestRouter(t)

	product := domain.Product{ID: 3, Title: "Mug", Price: dec("7.50")}
	catalog.EXPECT().GetProduct(gomock.Any(), 3).Return(&product, nil)
	cartSvc.EXPECT().AddItem(gomock.Any(), product, 2).Return(nil)
	cartSvc.EXPECT().Items().Return([]domain.CartItem{{Product: product, Quantity: 2}})
	cartSvc.EXPECT().Total().Return(dec("15"))

	w := doJSON(router, http.MethodPost, "/api/v1/cart/items", dto.AddItemRequest{ProductID: 3, Quantity: 2})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "15", data["total"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "15", items[0].(map[string]interface{})["subtotal"])
}

func TestAddItem_CatalogFailure(t *testing.T) {
	router, _, _, catalog := newTestRouter(t)

	catalog.EXPECT().
		GetProduct(gomock.Any(), 99).
		Return(nil, apperror.ErrAPIRequestFailed(500, "/products/99"))

	w := doJSON(router, http.MethodPost, "/api/v1/cart/items", dto.AddItemRequest{ProductID: 99, Quantity: 1})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "API_003", resp["error_code"])
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	// binding rejects quantity <= 0 before the services are touched
	w := doJSON(router, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 3, "quantity": 0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "VAL_001", resp["error_code"])
}

func TestUpdateQuantity_RemovesAtZero(t *testing.T) {
	router, _, cartSvc, _ := newTestRouter(t)

	cartSvc.EXPECT().UpdateQuantity(gomock.Any(), 3, 0).Return(nil)
	cartSvc.EXPECT().Items().Return(nil)
	cartSvc.EXPECT().Total().Return(decimal.Zero)

	w := doJSON(router, http.MethodPut, "/api/v1/cart/items/3", dto.UpdateQuantityRequest{Quantity: 0})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateQuantity_BadProductID(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPut, "/api/v1/cart/items/abc", dto.UpdateQuantityRequest{Quantity: 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "VAL_001", resp["error_code"])
}

func TestCheckout_Success(t *testing.T) {
	router, _, cartSvc, _ := newTestRouter(t)

	tx := &domain.Transaction{
		ID:            "tx-purchase",
		Kind:          domain.TransactionKindPurchase,
		Amount:        dec("-15"),
		Timestamp:     time.Now(),
		Status:        domain.TransactionStatusCompleted,
		InvoiceNumber: "INV-20260831120000-ABCDEF01",
		LineItems: []domain.LineItem{
			{ProductID: 3, Title: "Mug", UnitPrice: dec("7.50"), Quantity: 2},
		},
	}
	cartSvc.EXPECT().Checkout(gomock.Any()).Return(tx, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/cart/checkout", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "PURCHASE", data["kind"])
	assert.Equal(t, "-15", data["amount"])
	assert.Equal(t, "INV-20260831120000-ABCDEF01", data["invoice_number"])
	lineItems := data["line_items"].([]interface{})
	require.Len(t, lineItems, 1)
	assert.Equal(t, "15", lineItems[0].(map[string]interface{})["subtotal"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	router, _, cartSvc, _ := newTestRouter(t)

	cartSvc.EXPECT().Checkout(gomock.Any()).Return(nil, apperror.ErrNoItemsToPurchase())

	w := doJSON(router, http.MethodPost, "/api/v1/cart/checkout", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_005", resp["error_code"])
}

func TestCheckout_InsufficientBalance(t *testing.T) {
	router, _, cartSvc, _ := newTestRouter(t)

	cartSvc.EXPECT().
		Checkout(gomock.Any()).
		Return(nil, apperror.ErrInsufficientBalance(dec("100"), dec("80")))

	w := doJSON(router, http.MethodPost, "/api/v1/cart/checkout", nil)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_001", resp["error_code"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "20", data["shortfall"])
}

// --- Product Handler Tests ---

func TestListProducts_Success(t *testing.T) {
	router, _, _, catalog := newTestRouter(t)

	catalog.EXPECT().ListProducts(gomock.Any()).Return([]domain.Product{
		{ID: 1, Title: "Jacket", Price: dec("30.50")},
	}, nil)

	w := doJSON(router, http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	items := resp["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Jacket", items[0].(map[string]interface{})["title"])
}

func TestGetProduct_Timeout(t *testing.T) {
	router, _, _, catalog := newTestRouter(t)

	catalog.EXPECT().
		GetProduct(gomock.Any(), 7).
		Return(nil, apperror.ErrAPITimeout("/products/7"))

	w := doJSON(router, http.MethodGet, "/api/v1/products/7", nil)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "API_001", resp["error_code"])
}

// --- Health Check Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(_ context.Context) error { return s.err }
func (s stubChecker) Name() string                 { return s.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck(stubChecker{name: "redis"}))

	w := doJSON(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck(
		stubChecker{name: "redis"},
		stubChecker{name: "postgres", err: errors.New("connection refused")},
	))

	w := doJSON(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	assert.Equal(t, "unhealthy", deps["postgres"].(map[string]interface{})["status"])
}

var _ ports.HealthChecker = stubChecker{}

package dto

import (
	"storefront-wallet/internal/core/domain"

	"github.com/shopspring/decimal"
)

// TopUpRequest is the request body for a wallet top-up.
type TopUpRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description,omitempty" binding:"max=200"`
}

// RefundRequest is the request body for refunding a transaction.
type RefundRequest struct {
	TransactionID string          `json:"transaction_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description,omitempty" binding:"max=200"`
}

// AddItemRequest is the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID int `json:"product_id" binding:"required,gt=0"`
	Quantity  int `json:"quantity" binding:"required,gt=0"`
}

// UpdateQuantityRequest is the request body for setting a cart item quantity.
// Zero removes the item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// LineItemResponse is one product position inside a purchase.
type LineItemResponse struct {
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TransactionResponse is the response body for a ledger entry.
type TransactionResponse struct {
	ID                    string             `json:"id"`
	Kind                  string             `json:"kind"`
	Amount                decimal.Decimal    `json:"amount"`
	Description           string             `json:"description"`
	Timestamp             string             `json:"timestamp"`
	Status                string             `json:"status"`
	LineItems             []LineItemResponse `json:"line_items,omitempty"`
	InvoiceNumber         string             `json:"invoice_number,omitempty"`
	RefundedTransactionID string             `json:"refunded_transaction_id,omitempty"`
}

// WalletResponse is the response for the wallet overview.
type WalletResponse struct {
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

// CartItemResponse is one cart line in the cart overview.
type CartItemResponse struct {
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse is the response for the cart overview.
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// ToTransactionResponse maps a domain transaction into its wire form.
func ToTransactionResponse(tx *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                    tx.ID,
		Kind:                  string(tx.Kind),
		Amount:                tx.Amount,
		Description:           tx.Description,
		Timestamp:             tx.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Status:                string(tx.Status),
		InvoiceNumber:         tx.InvoiceNumber,
		RefundedTransactionID: tx.RefundedTransactionID,
	}
	for _, li := range tx.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			ProductID: li.ProductID,
			Title:     li.Title,
			UnitPrice: li.UnitPrice,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal(),
		})
	}
	return resp
}

// ToCartResponse maps the cart contents into the wire form.
func ToCartResponse(items []domain.CartItem, total decimal.Decimal) CartResponse {
	resp := CartResponse{
		Items: make([]CartItemResponse, 0, len(items)),
		Total: total,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID: item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return resp
}

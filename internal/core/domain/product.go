package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry fetched from the remote product API.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// CartItem is a product placed in the cart with a chosen quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity.
func (ci CartItem) Subtotal() decimal.Decimal {
	return ci.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// ToLineItem converts a cart item into a purchase line item.
func (ci CartItem) ToLineItem() LineItem {
	return LineItem{
		ProductID: ci.ID,
		Title:     ci.Title,
		UnitPrice: ci.Price,
		Quantity:  ci.Quantity,
	}
}

package domain

import "github.com/shopspring/decimal"

// Storage keys (gateway namespaces) for the two persisted aggregates.
const (
	SnapshotKeyWallet = "wallet_data"
	SnapshotKeyCart   = "cart_items"
)

// Snapshot is the full persisted wallet state, saved as one unit after every
// successful operation. Transactions are stored in insertion order; any other
// ordering is a derived view.
type Snapshot struct {
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

// SumAmounts returns the balance derived from the transaction list. For a
// consistent snapshot it equals Balance; hydration trusts this sum over the
// stored scalar.
func (s *Snapshot) SumAmounts() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range s.Transactions {
		sum = sum.Add(t.Amount)
	}
	return sum
}

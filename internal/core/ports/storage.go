package ports

import "context"

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

// SnapshotStore is the persistence gateway: an opaque key-value blob store.
// Implementations report backend failures as plain errors; the typed wallet
// and cart layers wrap them into the taxonomy (STG_001/STG_002).
type SnapshotStore interface {
	// Save durably records value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error
	// Load returns the value stored under key, or nil, nil when absent.
	// Absence is not an error.
	Load(ctx context.Context, key string) ([]byte, error)
	// Remove deletes the value stored under key. Removing a missing key is
	// not an error.
	Remove(ctx context.Context, key string) error
	// Clear deletes every record the store owns.
	Clear(ctx context.Context) error
}

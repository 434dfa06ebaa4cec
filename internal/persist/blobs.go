package persist

import (
	"context"
	"errors"
)

// Storage keys for the two independently persisted arrays.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// ErrNoBlob is returned by a backend when a key has never been written.
var ErrNoBlob = errors.New("persist: no blob stored")

// Blobs is the raw key-value surface a persistence backend exposes. The
// debounced Store sits on top; engines never talk to a backend directly.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

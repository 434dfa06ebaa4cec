package persist

import (
	"context"
	"testing"

	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/angelmondragon/havenwood-client/pkg/db"
)

func newSQLiteBackend(t *testing.T) *SQLiteBlobs {
	t.Helper()
	client, err := db.New(context.Background(), config.PersistConfig{SQLitePath: "file::memory:"}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	blobs, err := NewSQLiteBlobs(client)
	if err != nil {
		t.Fatalf("NewSQLiteBlobs: %v", err)
	}
	return blobs
}

func TestSQLiteBlobsRoundTrip(t *testing.T) {
	blobs := newSQLiteBackend(t)
	ctx := context.Background()

	if _, err := blobs.Get(ctx, KeyCart); err != ErrNoBlob {
		t.Fatalf("expected ErrNoBlob, got %v", err)
	}

	if err := blobs.Set(ctx, KeyCart, []byte(`[{"productId":"p1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := blobs.Get(ctx, KeyCart)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(val) != `[{"productId":"p1"}]` {
		t.Fatalf("unexpected value %s", val)
	}

	// Upsert replaces in place.
	if err := blobs.Set(ctx, KeyCart, []byte(`[]`)); err != nil {
		t.Fatalf("second set: %v", err)
	}
	val, err = blobs.Get(ctx, KeyCart)
	if err != nil || string(val) != `[]` {
		t.Fatalf("expected upserted value, got %s err=%v", val, err)
	}

	if err := blobs.Delete(ctx, KeyCart); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := blobs.Get(ctx, KeyCart); err != ErrNoBlob {
		t.Fatalf("expected ErrNoBlob after delete, got %v", err)
	}
}

func TestSQLiteBlobsKeysAreIndependent(t *testing.T) {
	blobs := newSQLiteBackend(t)
	ctx := context.Background()

	if err := blobs.Set(ctx, KeyCart, []byte(`["a"]`)); err != nil {
		t.Fatalf("set cart: %v", err)
	}
	if err := blobs.Set(ctx, KeyWishlist, []byte(`["b"]`)); err != nil {
		t.Fatalf("set wishlist: %v", err)
	}

	cart, _ := blobs.Get(ctx, KeyCart)
	wishlist, _ := blobs.Get(ctx, KeyWishlist)
	if string(cart) != `["a"]` || string(wishlist) != `["b"]` {
		t.Fatalf("keys bled into each other: cart=%s wishlist=%s", cart, wishlist)
	}
}

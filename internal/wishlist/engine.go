package wishlist

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/angelmondragon/havenwood-client/internal/persist"
	"github.com/angelmondragon/havenwood-client/internal/syncer"
	pkgerrors "github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
	"github.com/angelmondragon/havenwood-client/pkg/types"
)

type stateStore interface {
	Load(ctx context.Context, key string) []json.RawMessage
	Save(key string, items any)
}

type remoteWishlist interface {
	FetchWishlist(ctx context.Context) ([]map[string]any, error)
	AddWishlistItem(ctx context.Context, productID string) error
	RemoveWishlistItem(ctx context.Context, productID string) error
}

type jobQueue interface {
	Enqueue(job syncer.Job)
}

type sessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// cartEjector is the cart side of mutual exclusivity, wired in main.
type cartEjector interface {
	Eject(ctx context.Context, productID string) bool
}

// Params configures an Engine. Store is required.
type Params struct {
	Store   stateStore
	Remote  remoteWishlist
	Queue   jobQueue
	Session sessionChecker
	Logger  *logger.Logger
}

// Engine owns the in-memory wishlist. Saving a product ejects it from
// the cart; remote mirroring runs per entry in the background, keyed
// by product so an add quickly followed by a remove collapses into the
// remove.
type Engine struct {
	mu      sync.Mutex
	entries []*Entry
	loaded  bool
	loading bool

	store   stateStore
	remote  remoteWishlist
	queue   jobQueue
	session sessionChecker
	cart    cartEjector
	logg    *logger.Logger
	now     func() time.Time
}

func NewEngine(params Params) (*Engine, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist engine requires a state store")
	}
	return &Engine{
		store:   params.Store,
		remote:  params.Remote,
		queue:   params.Queue,
		session: params.Session,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

// AttachCart wires the cart side of mutual exclusivity. Must be called
// before the engine serves traffic.
func (e *Engine) AttachCart(c cartEjector) {
	e.mu.Lock()
	e.cart = c
	e.mu.Unlock()
}

// Load hydrates the wishlist from the local store. Repeat calls are
// no-ops unless force is set. An authenticated session then merges the
// remote wishlist in the background.
func (e *Engine) Load(ctx context.Context, force bool) {
	e.mu.Lock()
	if (e.loaded && !force) || e.loading {
		e.mu.Unlock()
		return
	}
	e.loading = true
	e.mu.Unlock()

	raw := e.store.Load(ctx, persist.KeyWishlist)
	entries := NormalizeEntries(raw)

	e.mu.Lock()
	e.entries = entries
	e.loaded = true
	e.loading = false
	e.mu.Unlock()

	if e.remote != nil && e.session != nil && e.session.IsAuthenticated(ctx) {
		go e.reconcile(context.WithoutCancel(ctx))
	}
}

// reconcile merges the remote wishlist into the local one: remote
// entries missing locally are adopted, local entries missing remotely
// are pushed.
func (e *Engine) reconcile(ctx context.Context) {
	remoteItems, err := e.remote.FetchWishlist(ctx)
	if err != nil {
		if e.logg != nil {
			e.logg.Warn(ctx, "wishlist reconciliation skipped: "+err.Error())
		}
		return
	}

	remoteIDs := make(map[string]bool, len(remoteItems))
	adopted := make([]*Entry, 0, len(remoteItems))
	for _, item := range remoteItems {
		entry, ok := NormalizeEntry(item)
		if !ok {
			continue
		}
		remoteIDs[entry.ProductID] = true
		adopted = append(adopted, entry)
	}

	var pushLocal []string
	e.mu.Lock()
	local := make(map[string]bool, len(e.entries))
	for _, entry := range e.entries {
		local[entry.ProductID] = true
		if !remoteIDs[entry.ProductID] {
			pushLocal = append(pushLocal, entry.ProductID)
		}
	}
	changed := false
	for _, entry := range adopted {
		if !local[entry.ProductID] {
			e.entries = append(e.entries, entry)
			changed = true
		}
	}
	if changed {
		e.persistLocked()
	}
	e.mu.Unlock()

	for _, productID := range pushLocal {
		e.enqueueAdd(productID)
	}
}

// Add saves a product. Saving something already on the list is a
// no-op. The product leaves the cart.
func (e *Engine) Add(ctx context.Context, product map[string]any) (*Entry, error) {
	entry, ok := NormalizeEntry(product)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is missing an id")
	}
	entry.AddedAt = e.now().UTC()

	e.mu.Lock()
	if existing := e.findLocked(entry.ProductID); existing != nil {
		result := existing.clone()
		e.mu.Unlock()
		return result, nil
	}
	e.entries = append(e.entries, entry)
	e.persistLocked()
	cart := e.cart
	result := entry.clone()
	e.mu.Unlock()

	if cart != nil {
		cart.Eject(ctx, entry.ProductID)
	}
	e.enqueueAdd(entry.ProductID)
	return result, nil
}

// Remove takes a product off the list. Removing something that is not
// on the list is a no-op.
func (e *Engine) Remove(ctx context.Context, productID string) {
	target := types.SafeString(productID)
	if target == "" {
		return
	}

	e.mu.Lock()
	removed := false
	kept := e.entries[:0]
	for _, entry := range e.entries {
		if entry.ProductID == target {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	e.entries = kept
	if removed {
		e.persistLocked()
	}
	e.mu.Unlock()

	if removed {
		e.enqueueRemove(target)
	}
}

// Toggle adds the product if absent and removes it if present,
// reporting whether it ended up on the list.
func (e *Engine) Toggle(ctx context.Context, product map[string]any) (bool, error) {
	entry, ok := NormalizeEntry(product)
	if !ok {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product is missing an id")
	}

	if e.Contains(entry.ProductID) {
		e.Remove(ctx, entry.ProductID)
		return false, nil
	}
	if _, err := e.Add(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the list. Each entry gets its own remote removal.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	removed := make([]string, 0, len(e.entries))
	for _, entry := range e.entries {
		removed = append(removed, entry.ProductID)
	}
	e.entries = nil
	if len(removed) > 0 {
		e.persistLocked()
	}
	e.mu.Unlock()

	for _, productID := range removed {
		e.enqueueRemove(productID)
	}
}

// Eject drops a product from the list without validation. The cart
// calls this when the product is added to the cart, so the remote
// wishlist eventually loses the item too. Reports whether anything
// was removed.
func (e *Engine) Eject(ctx context.Context, productID string) bool {
	target := types.SafeString(productID)
	if target == "" {
		return false
	}

	e.mu.Lock()
	removed := false
	kept := e.entries[:0]
	for _, entry := range e.entries {
		if entry.ProductID == target {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	e.entries = kept
	if removed {
		e.persistLocked()
	}
	e.mu.Unlock()

	if removed {
		e.enqueueRemove(target)
	}
	return removed
}

// Contains reports whether the product is on the list.
func (e *Engine) Contains(productID string) bool {
	target := types.SafeString(productID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findLocked(target) != nil
}

// Count is the number of saved products.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Snapshot returns a copy of the list, safe to hand out.
func (e *Engine) Snapshot() []*Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Entry, len(e.entries))
	for i, entry := range e.entries {
		out[i] = entry.clone()
	}
	return out
}

func (e *Engine) findLocked(productID string) *Entry {
	for _, entry := range e.entries {
		if entry.ProductID == productID {
			return entry
		}
	}
	return nil
}

func (e *Engine) persistLocked() {
	items := make([]*Entry, len(e.entries))
	copy(items, e.entries)
	e.store.Save(persist.KeyWishlist, items)
}

func (e *Engine) enqueueAdd(productID string) {
	if !e.shouldSync() {
		return
	}
	e.queue.Enqueue(syncer.Job{
		Key:  "wishlist:" + productID,
		Kind: "wishlist.add",
		Run: func(ctx context.Context) error {
			return e.remote.AddWishlistItem(ctx, productID)
		},
	})
}

func (e *Engine) enqueueRemove(productID string) {
	if !e.shouldSync() {
		return
	}
	e.queue.Enqueue(syncer.Job{
		Key:  "wishlist:" + productID,
		Kind: "wishlist.remove",
		Run: func(ctx context.Context) error {
			return e.remote.RemoveWishlistItem(ctx, productID)
		},
	})
}

func (e *Engine) shouldSync() bool {
	if e.queue == nil || e.remote == nil || e.session == nil {
		return false
	}
	return e.session.IsAuthenticated(context.Background())
}

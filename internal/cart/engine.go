package cart

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/angelmondragon/havenwood-client/internal/commerce"
	"github.com/angelmondragon/havenwood-client/internal/persist"
	"github.com/angelmondragon/havenwood-client/internal/syncer"
	pkgerrors "github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
	"github.com/angelmondragon/havenwood-client/pkg/types"
	"github.com/google/uuid"
)

type stateStore interface {
	Load(ctx context.Context, key string) []json.RawMessage
	Save(key string, items any)
}

type remoteCart interface {
	FetchCart(ctx context.Context) ([]map[string]any, error)
	SaveCart(ctx context.Context, items []commerce.CartItemPayload) error
	FetchProduct(ctx context.Context, productID string) (*commerce.Product, error)
}

type jobQueue interface {
	Enqueue(job syncer.Job)
}

type sessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// wishlistEjector is how the cart enforces mutual exclusivity without
// importing the wishlist package. Wired up in main via AttachWishlist.
type wishlistEjector interface {
	Eject(ctx context.Context, productID string) bool
}

const pushJobKey = "cart.push"

// Params configures an Engine. Store is required; the remote client,
// queue and session may be nil for a purely local cart.
type Params struct {
	Store   stateStore
	Remote  remoteCart
	Queue   jobQueue
	Session sessionChecker
	Pricing Pricing
	Logger  *logger.Logger
}

// Engine owns the in-memory cart. Every mutation updates memory first,
// then mirrors the new state to the local store (debounced) and to the
// commerce API (background job). Mirror failures never roll memory
// back.
type Engine struct {
	mu      sync.Mutex
	lines   []*Line
	loaded  bool
	loading bool
	lastErr error

	store    stateStore
	remote   remoteCart
	queue    jobQueue
	session  sessionChecker
	wishlist wishlistEjector
	pricing  Pricing
	logg     *logger.Logger
}

func NewEngine(params Params) (*Engine, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart engine requires a state store")
	}
	return &Engine{
		store:   params.Store,
		remote:  params.Remote,
		queue:   params.Queue,
		session: params.Session,
		pricing: params.Pricing,
		logg:    params.Logger,
	}, nil
}

// AttachWishlist wires the wishlist side of mutual exclusivity. Must
// be called before the engine serves traffic.
func (e *Engine) AttachWishlist(w wishlistEjector) {
	e.mu.Lock()
	e.wishlist = w
	e.mu.Unlock()
}

// Load hydrates the cart from the local store. Repeat calls are no-ops
// unless force is set, and concurrent calls while a load is in flight
// return immediately. After hydration an authenticated session kicks
// off remote reconciliation in the background.
func (e *Engine) Load(ctx context.Context, force bool) {
	e.mu.Lock()
	if (e.loaded && !force) || e.loading {
		e.mu.Unlock()
		return
	}
	e.loading = true
	e.mu.Unlock()

	raw := e.store.Load(ctx, persist.KeyCart)
	lines := NormalizeLines(raw)

	e.mu.Lock()
	e.lines = lines
	e.loaded = true
	e.loading = false
	e.mu.Unlock()

	if e.remote != nil && e.session != nil && e.session.IsAuthenticated(ctx) {
		go e.reconcile(context.WithoutCancel(ctx))
	}
}

// reconcile pulls the remote cart after a load and replaces local
// state when the composition differs. Pull failures are logged and
// swallowed; the local copy stays in charge.
func (e *Engine) reconcile(ctx context.Context) {
	remoteItems, err := e.remote.FetchCart(ctx)
	if err != nil {
		if e.logg != nil {
			e.logg.Warn(ctx, "cart reconciliation skipped: "+err.Error())
		}
		return
	}

	remoteLines := make([]*Line, 0, len(remoteItems))
	for _, item := range remoteItems {
		if line, ok := NormalizeLine(item); ok {
			remoteLines = append(remoteLines, line)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if sameComposition(e.lines, remoteLines) {
		return
	}
	e.lines = remoteLines
	e.persistLocked()
}

// AddParams describes one add-to-cart action: the product as the
// caller saw it, the requested quantity and an optional variant
// selection.
type AddParams struct {
	Product  map[string]any
	Quantity int
	Variant  types.VariantSelectors
}

// Add puts a product in the cart. Adding a product already in the cart
// with the same variant coalesces into the existing line. The combined
// quantity is checked against the product's stock snapshot before any
// state changes; a failed guard leaves the cart untouched. A product
// entering the cart leaves the wishlist.
func (e *Engine) Add(ctx context.Context, params AddParams) (*Line, error) {
	candidate, ok := NormalizeLine(params.Product)
	if !ok {
		return nil, e.fail(pkgerrors.New(pkgerrors.CodeValidation, "product is missing an id"))
	}
	if params.Quantity > 0 {
		candidate.Quantity = params.Quantity
	} else {
		candidate.Quantity = 1
	}
	if len(params.Variant) > 0 {
		candidate.Variant = params.Variant
	}
	candidate.ID = uuid.NewString()

	e.mu.Lock()
	existing := e.findLine(candidate.ProductID, candidate.VariantKey())

	held := 0
	if existing != nil {
		held = existing.Quantity
	}
	if err := checkStock(candidate.StockQuantity, candidate.InStock, held+candidate.Quantity); err != nil {
		e.lastErr = err
		e.mu.Unlock()
		return nil, err
	}
	e.lastErr = nil

	var result *Line
	if existing != nil {
		existing.Quantity += candidate.Quantity
		result = existing.clone()
	} else {
		e.lines = append(e.lines, candidate)
		result = candidate.clone()
	}
	e.persistLocked()
	wishlist := e.wishlist
	e.mu.Unlock()

	if wishlist != nil {
		wishlist.Eject(ctx, result.ProductID)
	}
	e.enqueuePush(ctx)
	return result, nil
}

// Remove deletes a line by line id or product id. Removing something
// that is not in the cart is a no-op.
func (e *Engine) Remove(ctx context.Context, id string) {
	target := types.SafeString(id)
	if target == "" {
		return
	}

	e.mu.Lock()
	removed := e.removeLocked(target)
	if removed {
		e.persistLocked()
	}
	e.mu.Unlock()

	if removed {
		e.enqueuePush(ctx)
	}
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the
// line. The new quantity is guarded against current stock, re-fetched
// from the commerce API; when the fetch fails the stock snapshot on
// the line is used instead.
func (e *Engine) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	target := types.SafeString(id)
	if target == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if quantity <= 0 {
		e.Remove(ctx, target)
		return nil
	}

	e.mu.Lock()
	line := e.findByID(target)
	if line == nil {
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}
	productID := line.ProductID
	selection := line.Variant.Canonical()
	stockQty, inStock := line.StockQuantity, line.InStock
	e.mu.Unlock()

	var refreshed *commerce.Product
	if e.remote != nil {
		if product, err := e.remote.FetchProduct(ctx, productID); err == nil {
			refreshed = product
			stockQty, inStock = product.StockFor(selection)
		} else if e.logg != nil {
			e.logg.Warn(ctx, "stock refresh failed, using cached snapshot: "+err.Error())
		}
	}

	if err := checkStock(stockQty, inStock, quantity); err != nil {
		return e.fail(err)
	}

	e.mu.Lock()
	line = e.findByID(target)
	if line == nil {
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}
	line.Quantity = quantity
	line.StockQuantity = stockQty
	line.InStock = inStock
	if refreshed != nil {
		line.OriginalPrice = refreshed.OriginalPrice
		line.DiscountedPrice = refreshed.DiscountedPrice
	}
	e.lastErr = nil
	e.persistLocked()
	e.mu.Unlock()

	e.enqueuePush(ctx)
	return nil
}

// Clear empties the cart.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	e.lines = nil
	e.persistLocked()
	e.mu.Unlock()

	e.enqueuePush(ctx)
}

// Eject silently removes every line for a product. The wishlist calls
// this when the product is saved for later. Reports whether anything
// was removed.
func (e *Engine) Eject(ctx context.Context, productID string) bool {
	target := types.SafeString(productID)
	if target == "" {
		return false
	}

	e.mu.Lock()
	removed := e.removeLocked(target)
	if removed {
		e.persistLocked()
	}
	e.mu.Unlock()

	if removed {
		e.enqueuePush(ctx)
	}
	return removed
}

// LastError reports the outcome of the most recent guarded mutation:
// nil after a success, the rejection error after a failed add or
// quantity change.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) fail(err error) error {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	return err
}

// Contains reports whether any line holds the product.
func (e *Engine) Contains(productID string) bool {
	return e.Quantity(productID) > 0
}

// Quantity sums the held quantity across every line of a product.
func (e *Engine) Quantity(productID string) int {
	target := types.SafeString(productID)
	e.mu.Lock()
	defer e.mu.Unlock()

	total := 0
	for _, line := range e.lines {
		if line.ProductID == target {
			total += line.Quantity
		}
	}
	return total
}

// LineCount is the number of distinct lines.
func (e *Engine) LineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines)
}

// TotalQuantity is the number of units across all lines.
func (e *Engine) TotalQuantity() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := 0
	for _, line := range e.lines {
		total += line.Quantity
	}
	return total
}

// Snapshot returns a copy of the cart lines, safe to hand out.
func (e *Engine) Snapshot() []*Line {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Line, len(e.lines))
	for i, line := range e.lines {
		out[i] = line.clone()
	}
	return out
}

// Totals derives the money view of the current cart.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	lines := e.lines
	totals := ComputeTotals(lines, e.pricing)
	e.mu.Unlock()
	return totals
}

func (e *Engine) findLine(productID, variantKey string) *Line {
	for _, line := range e.lines {
		if line.ProductID == productID && line.VariantKey() == variantKey {
			return line
		}
	}
	return nil
}

func (e *Engine) findByID(id string) *Line {
	for _, line := range e.lines {
		if line.ID == id || line.ProductID == id {
			return line
		}
	}
	return nil
}

func (e *Engine) removeLocked(id string) bool {
	kept := e.lines[:0]
	removed := false
	for _, line := range e.lines {
		if line.ID == id || line.ProductID == id {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	e.lines = kept
	return removed
}

func (e *Engine) persistLocked() {
	items := make([]*Line, len(e.lines))
	copy(items, e.lines)
	e.store.Save(persist.KeyCart, items)
}

// enqueuePush schedules a remote mirror of the current cart. Pushes
// are keyed, so rapid edits collapse into the newest snapshot. Only
// authenticated sessions are mirrored.
func (e *Engine) enqueuePush(ctx context.Context) {
	if e.queue == nil || e.remote == nil {
		return
	}
	if e.session == nil || !e.session.IsAuthenticated(ctx) {
		return
	}

	payload := e.pushPayload()
	e.queue.Enqueue(syncer.Job{
		Key:  pushJobKey,
		Kind: pushJobKey,
		Run: func(jobCtx context.Context) error {
			return e.remote.SaveCart(jobCtx, payload)
		},
	})
}

func (e *Engine) pushPayload() []commerce.CartItemPayload {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload := make([]commerce.CartItemPayload, 0, len(e.lines))
	for _, line := range e.lines {
		payload = append(payload, commerce.CartItemPayload{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return payload
}

func checkStock(stockQuantity int, inStock *bool, wanted int) error {
	if inStock != nil && !*inStock {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "this item is out of stock")
	}
	if stockQuantity > 0 && wanted > stockQuantity {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for the requested quantity").
			WithDetails(map[string]any{"available": stockQuantity, "requested": wanted})
	}
	return nil
}

// sameComposition compares carts by line count and the set of
// product/variant pairs, ignoring quantities, line ids and ordering.
func sameComposition(a, b []*Line) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, line := range a {
		counts[compositionKey(line)]++
	}
	for _, line := range b {
		counts[compositionKey(line)]--
	}
	for _, diff := range counts {
		if diff != 0 {
			return false
		}
	}
	return true
}

func compositionKey(line *Line) string {
	return strings.Join([]string{line.ProductID, line.VariantKey()}, "#")
}

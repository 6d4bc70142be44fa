package cart

import (
	"context"
	"sync"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/domain"
)

// Line is one product-quantity pairing within an in-progress order. A cart
// holds at most one line per product, in insertion order.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderCreator is the slice of the order service the composer needs to
// submit. The real implementation lives in the api package.
type OrderCreator interface {
	CreateOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, error)
}

// Composer holds the order-composition state for one browser session: a
// catalog snapshot supplied by the host page and the lines the user has
// picked. Stock checks are made against the snapshot as last observed; the
// order service re-validates authoritatively on submit.
type Composer struct {
	mu         sync.Mutex
	catalog    []domain.Product
	lines      []Line
	submitting bool
	ended      bool
}

func NewComposer() *Composer {
	return &Composer{}
}

// SetCatalog replaces the catalog snapshot. Existing lines are kept as-is:
// a line whose product disappeared from the snapshot simply prices as zero
// until the backend rejects it.
func (c *Composer) SetCatalog(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = append([]domain.Product(nil), products...)
}

// Lines returns a copy of the cart in insertion order.
func (c *Composer) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

func (c *Composer) findProduct(productID int64) (domain.Product, bool) {
	for _, p := range c.catalog {
		if p.ID == productID {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (c *Composer) findLine(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds one unit of the product to the cart. A new line starts at
// quantity 1 and appends to the end; an existing line increments in place.
// The call fails without mutating state when the product is unknown, out
// of stock, or already at its observed stock level.
func (c *Composer) AddItem(productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return ErrSessionEnded
	}

	product, ok := c.findProduct(productID)
	if !ok {
		return ErrUnknownProduct
	}
	if product.Quantity <= 0 {
		return ErrOutOfStock
	}

	if i := c.findLine(productID); i >= 0 {
		if c.lines[i].Quantity+1 > product.Quantity {
			return ErrStockExceeded
		}
		c.lines[i].Quantity++
		return nil
	}

	c.lines = append(c.lines, Line{ProductID: productID, Quantity: 1})
	return nil
}

// SetQuantity sets a line's quantity directly. Zero or negative removes the
// line. Unlike AddItem, direct edits are not clamped to observed stock;
// the order service rejects over-stock quantities on submit.
func (c *Composer) SetQuantity(productID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return ErrSessionEnded
	}

	if quantity <= 0 {
		c.removeLocked(productID)
		return nil
	}
	if i := c.findLine(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
	return nil
}

// RemoveItem deletes the line for the product, if present.
func (c *Composer) RemoveItem(productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return ErrSessionEnded
	}
	c.removeLocked(productID)
	return nil
}

func (c *Composer) removeLocked(productID int64) {
	if i := c.findLine(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Total recomputes the preview total from the current lines and catalog
// snapshot on every call. Products no longer in the snapshot contribute
// zero. The result is display-only; the order service computes the
// authoritative amount.
func (c *Composer) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Composer) totalLocked() float64 {
	var total float64
	for _, line := range c.lines {
		if product, ok := c.findProduct(line.ProductID); ok {
			total += product.Price * float64(line.Quantity)
		}
	}
	return total
}

// Snapshot is one consistent view of the cart. Catalog, lines, and total
// are captured under a single lock, so the total always matches the lines
// even while another request is mutating the cart.
type Snapshot struct {
	Catalog []domain.Product
	Lines   []Line
	Total   float64
}

func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Catalog: append([]domain.Product(nil), c.catalog...),
		Lines:   append([]Line(nil), c.lines...),
		Total:   c.totalLocked(),
	}
}

// BuildSubmission maps the cart to an order payload, preserving line order.
// It fails with ErrEmptyCart when there is nothing to submit.
func (c *Composer) BuildSubmission() (domain.OrderSubmission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildSubmissionLocked()
}

func (c *Composer) buildSubmissionLocked() (domain.OrderSubmission, error) {
	if len(c.lines) == 0 {
		return domain.OrderSubmission{}, ErrEmptyCart
	}
	items := make([]domain.SubmissionItem, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, domain.SubmissionItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return domain.OrderSubmission{Items: items}, nil
}

// Submit sends the cart to the order service. At most one submission can
// be in flight per cart; a failed submission leaves the cart untouched so
// the user can edit and retry. On success the composition session ends and
// the cart state is discarded. A success that lands after Discard does not
// resurrect state.
func (c *Composer) Submit(ctx context.Context, orders OrderCreator) (*domain.Order, error) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return nil, ErrSessionEnded
	}
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	sub, err := c.buildSubmissionLocked()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.submitting = true
	c.mu.Unlock()

	order, err := orders.CreateOrder(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		return nil, err
	}
	if !c.ended {
		c.lines = nil
		c.ended = true
	}
	return order, nil
}

// Discard ends the composition session, dropping all state. Navigating
// away from the order page does this with no confirmation and no
// persistence.
func (c *Composer) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.ended = true
}

// Ended reports whether the composition session is over.
func (c *Composer) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

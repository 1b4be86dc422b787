// Package orders is the client's view of the order lifecycle: cached reads that survive
// a dead network, writes that never half-apply, and the courier claim flow.
package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	log "github.com/sirupsen/logrus"
)

// availableKey caches the courier pool next to the per-actor lists.
const availableKey = "available"

type API interface {
	CreateOrder(ctx context.Context, customer model.Identity, cart []model.CartLine) (*model.Order, error)
	ListOrders(ctx context.Context, actorID string, role model.Role, activeOnly bool) ([]model.Order, error)
	ListAvailable(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.Status, actor model.Identity) (*model.Order, error)
	Claim(ctx context.Context, orderID string, courier model.Identity) (*model.Order, error)
}

type Cache interface {
	SaveOrders(actorID string, role model.Role, orders []model.Order) error
	LoadOrders(actorID string, role model.Role) ([]model.Order, error)
}

type Cart interface {
	Lines() ([]model.CartLine, error)
	Clear() error
}

// Snapshot is a list result. Err is set when the server could not be reached; Orders then
// holds the last cached copy (possibly empty) and Stale is true. An empty list with a nil
// Err means there really is nothing yet.
type Snapshot struct {
	Orders    []model.Order
	Stale     bool
	Err       error
	FetchedAt time.Time
}

type Repository struct {
	Viewer model.Identity

	api   API
	cache Cache

	mu   sync.Mutex
	pool Snapshot
}

func NewRepository(viewer model.Identity, api API, cache Cache) *Repository {
	return &Repository{Viewer: viewer, api: api, cache: cache}
}

// Load fetches the viewer's orders, newest first, falling back to the cache.
func (r *Repository) Load(ctx context.Context, activeOnly bool) Snapshot {
	orders, err := r.api.ListOrders(ctx, r.Viewer.ID, r.Viewer.Role, activeOnly)
	if err == nil {
		if !activeOnly {
			r.save(r.Viewer.ID, orders)
		}
		return Snapshot{Orders: orders, FetchedAt: time.Now()}
	}

	cached := r.load(r.Viewer.ID)
	if activeOnly {
		cached = filterActive(cached)
	}
	log.Warnf("Serving %d cached orders for %s: %v", len(cached), r.Viewer.ID, err)
	return Snapshot{Orders: cached, Stale: true, Err: err}
}

// Available fetches the unclaimed READY pool and remembers it as the current pool.
func (r *Repository) Available(ctx context.Context) Snapshot {
	var snap Snapshot
	orders, err := r.api.ListAvailable(ctx)
	if err == nil {
		r.save(availableKey, orders)
		snap = Snapshot{Orders: orders, FetchedAt: time.Now()}
	} else {
		snap = Snapshot{Orders: r.load(availableKey), Stale: true, Err: err}
	}

	r.mu.Lock()
	r.pool = snap
	r.mu.Unlock()
	return snap
}

// Pool returns the last result of Available, as adjusted by claims since.
func (r *Repository) Pool() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool
}

// Claim takes orderID for the viewing courier. A lost race comes back as ErrConflict
// after the pool has been re-synced, so the order is gone from Pool() rather than
// offered again.
func (r *Repository) Claim(ctx context.Context, orderID string) (*model.Order, error) {
	if r.Viewer.Role != model.RoleCourier {
		return nil, apperr.InvalidTransition("claim", "only couriers can claim orders")
	}

	order, err := r.api.Claim(ctx, orderID, r.Viewer)
	switch {
	case err == nil:
		r.dropFromPool(orderID)
		return order, nil
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrNotFound):
		log.Infof("Order %s no longer available, re-syncing pool", orderID)
		r.Available(ctx)
		return nil, err
	default:
		return nil, err
	}
}

// UpdateStatus moves an order as the viewer. Nothing local changes unless the server
// accepted the transition.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status model.Status) (*model.Order, error) {
	order, err := r.api.UpdateStatus(ctx, orderID, status, r.Viewer)
	if err != nil {
		return nil, err
	}

	cached := r.load(r.Viewer.ID)
	for i := range cached {
		if cached[i].ID == order.ID {
			cached[i] = *order
			r.save(r.Viewer.ID, cached)
			break
		}
	}
	return order, nil
}

// Checkout submits the cart as one order and empties it once the server has the order.
// An empty or mixed cart never leaves the device.
func (r *Repository) Checkout(ctx context.Context, cart Cart) (*model.Order, error) {
	lines, err := cart.Lines()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperr.Validation("createOrder", "cart is empty")
	}
	for _, l := range lines[1:] {
		if l.RestaurantID != lines[0].RestaurantID {
			return nil, apperr.Validation("createOrder", "cart mixes restaurants")
		}
	}

	order, err := r.api.CreateOrder(ctx, r.Viewer, lines)
	if err != nil {
		return nil, err
	}
	if err := cart.Clear(); err != nil {
		log.Warnf("Order %s placed but cart not cleared: %v", order.ID, err)
	}
	return order, nil
}

func (r *Repository) dropFromPool(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make([]model.Order, 0, len(r.pool.Orders))
	for _, o := range r.pool.Orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	r.pool.Orders = kept
}

func (r *Repository) save(key string, orders []model.Order) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SaveOrders(key, r.Viewer.Role, orders); err != nil {
		log.Warnf("Failed to cache orders: %v", err)
	}
}

func (r *Repository) load(key string) []model.Order {
	if r.cache == nil {
		return nil
	}
	orders, err := r.cache.LoadOrders(key, r.Viewer.Role)
	if err != nil {
		log.Warnf("Failed to read cached orders: %v", err)
		return nil
	}
	return orders
}

func filterActive(orders []model.Order) []model.Order {
	kept := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status.Active() {
			kept = append(kept, o)
		}
	}
	return kept
}

package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/mocks"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryOrders mirrors the compare-and-set semantics of the Postgres repository.
type memoryOrders struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newMemoryOrders(orders ...domain.Order) *memoryOrders {
	m := &memoryOrders{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memoryOrders) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *memoryOrders) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFound("getOrder", "order %s not found", id)
	}
	return &o, nil
}

func (m *memoryOrders) ListOrders(_ context.Context, _ domain.OrderQuery) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memoryOrders) UpdateStatus(_ context.Context, id string, from, to domain.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	m.orders[id] = o
	return true, nil
}

func (m *memoryOrders) ClaimOrder(_ context.Context, id string, courier domain.Actor) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != domain.StatusReady || o.CourierID != "" {
		return false, nil
	}
	o.Status = domain.StatusPickedUp
	o.CourierID = courier.ID
	o.CourierName = courier.Name
	m.orders[id] = o
	return true, nil
}

func (m *memoryOrders) SaveQRCode(context.Context, string, []byte) error { return nil }

func (m *memoryOrders) GetQRCode(context.Context, string) ([]byte, error) { return nil, nil }

func TestOrderService_ConcurrentClaims(t *testing.T) {
	const couriers = 16

	repo := newMemoryOrders(domain.Order{ID: "o1", UserID: "cust-1", RestaurantID: "rest-1", Status: domain.StatusReady})
	svc := service.NewOrderService(repo, mocks.NewRestaurantRepository(t), nil, nil, nil)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < couriers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			<-start
			_, err := svc.Claim(ctx, "o1", domain.Actor{ID: id, Role: domain.RoleCourier})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, id)
			case errors.Is(err, apperr.ErrConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(fmt.Sprintf("cour-%d", i))
	}
	close(start)
	wg.Wait()

	require.Empty(t, others)
	require.Len(t, winners, 1)
	assert.Equal(t, couriers-1, conflicts)

	stored, err := repo.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, winners[0], stored.CourierID)
	assert.Equal(t, domain.StatusPickedUp, stored.Status)
}

func TestOrderService_FullLifecycle(t *testing.T) {
	repo := newMemoryOrders(domain.Order{ID: "o1", UserID: "cust-1", RestaurantID: "rest-1", Status: domain.StatusPending})
	svc := service.NewOrderService(repo, mocks.NewRestaurantRepository(t), nil, nil, nil)
	ctx := context.Background()

	owner := domain.Actor{ID: "rest-1", Role: domain.RoleRestaurant}
	courier := domain.Actor{ID: "cour-1", Role: domain.RoleCourier}
	rival := domain.Actor{ID: "cour-2", Role: domain.RoleCourier}

	steps := []struct {
		next  domain.Status
		actor domain.Actor
		err   error
	}{
		{domain.StatusAccepted, owner, nil},
		{domain.StatusPreparing, owner, nil},
		{domain.StatusReady, owner, nil},
		{domain.StatusPickedUp, courier, nil},
		{domain.StatusOnWay, rival, apperr.ErrInvalidTransition},
		{domain.StatusCancelled, domain.Actor{ID: "cust-1", Role: domain.RoleCustomer}, apperr.ErrInvalidTransition},
		{domain.StatusOnWay, courier, nil},
		{domain.StatusDelivered, courier, nil},
		{domain.StatusCancelled, owner, apperr.ErrInvalidTransition},
	}

	for _, step := range steps {
		_, err := svc.UpdateStatus(ctx, "o1", step.next, step.actor)
		if step.err != nil {
			assert.ErrorIs(t, err, step.err, "%s by %s", step.next, step.actor.ID)
			continue
		}
		require.NoError(t, err, "%s by %s", step.next, step.actor.ID)
	}

	final, err := repo.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, final.Status)
	assert.Equal(t, "cour-1", final.CourierID)
}

package service

import (
	"context"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ListAvailable returns the courier pool: READY orders nobody has claimed, newest first.
func (s *OrderService) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx, domain.OrderQuery{IncludeAvailable: true})
	if err != nil {
		return nil, err
	}
	pool := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if domain.Available(order) {
			pool = append(pool, order)
		}
	}
	sortNewestFirst(pool)
	return pool, nil
}

// Claim assigns a READY order to courier. The repository performs a compare-and-set, so
// of several couriers racing for one order exactly one wins and the rest get ErrConflict.
func (s *OrderService) Claim(ctx context.Context, orderID string, courier domain.Actor) (*domain.Order, error) {
	const op = "claim"

	if courier.ID == "" {
		return nil, apperr.Validation(op, "courier id is required")
	}
	if courier.Role != domain.RoleCourier {
		return nil, apperr.InvalidTransition(op, "only couriers can pick up orders")
	}

	claimed, err := s.repo.ClaimOrder(ctx, orderID, courier)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !claimed {
		switch {
		case order.CourierID == courier.ID && order.Status != domain.StatusReady:
			return order, nil
		case order.CourierID != "":
			return nil, apperr.Conflict(op, "order %s was already claimed by another courier", orderID)
		default:
			return nil, apperr.InvalidTransition(op, "order %s is %s, not READY", orderID, order.Status)
		}
	}

	s.emit(ctx, statusEvent(order, domain.StatusReady))
	log.Infof("Order %s claimed by courier %s", orderID, courier.ID)
	return order, nil
}

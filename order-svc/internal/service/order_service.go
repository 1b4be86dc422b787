package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
)

type OrderService struct {
	repo        OrderRepository
	restaurants RestaurantRepository
	publisher   EventPublisher
	dashboard   DashboardStore
	qrEncoder   QRGenerator
	now         func() time.Time
}

// NewOrderService wires the order lifecycle. publisher, dashboard and qr may be nil.
func NewOrderService(repo OrderRepository, restaurants RestaurantRepository, publisher EventPublisher, dashboard DashboardStore, qr QRGenerator) *OrderService {
	return &OrderService{
		repo:        repo,
		restaurants: restaurants,
		publisher:   publisher,
		dashboard:   dashboard,
		qrEncoder:   qr,
		now:         time.Now,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, customer domain.Actor, cart []domain.CartLine) (*domain.Order, error) {
	const op = "createOrder"

	if strings.TrimSpace(customer.ID) == "" {
		return nil, apperr.Validation(op, "customer id is required")
	}
	if len(cart) == 0 {
		return nil, apperr.Validation(op, "cart is empty")
	}

	restaurantID := cart[0].RestaurantID
	for _, line := range cart {
		if line.RestaurantID != restaurantID {
			return nil, apperr.Validation(op, "cart spans more than one restaurant")
		}
		if line.Quantity < 1 {
			return nil, apperr.Validation(op, "item %q has quantity %d", line.Name, line.Quantity)
		}
		if line.Price <= 0 {
			return nil, apperr.Validation(op, "item %q has non-positive price", line.Name)
		}
	}

	restaurant, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsActive {
		return nil, apperr.Validation(op, "restaurant %s is not accepting orders", restaurant.Name)
	}

	order := &domain.Order{
		ID:             cuid.New(),
		UserID:         customer.ID,
		CustomerName:   customer.Name,
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		Status:         domain.StatusPending,
		OrderItems:     make([]domain.OrderItem, 0, len(cart)),
	}
	var total float64
	for _, line := range cart {
		order.OrderItems = append(order.OrderItems, domain.OrderItem{
			ID:         cuid.New(),
			MenuItemID: line.ItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			Price:      line.Price,
		})
		total += line.Price * float64(line.Quantity)
	}
	order.TotalAmount = math.Round(total*100) / 100

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	if s.qrEncoder != nil {
		if qr, err := s.qrEncoder.Generate(order.ID); err == nil {
			if err := s.repo.SaveQRCode(ctx, order.ID, qr); err != nil {
				log.Warnf("Failed to store QR code for order %s: %v", order.ID, err)
			}
		}
	}

	s.emit(ctx, domain.OrderEvent{
		Type:         domain.EventOrderCreated,
		OrderID:      order.ID,
		UserID:       order.UserID,
		CustomerName: order.CustomerName,
		RestaurantID: order.RestaurantID,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		Items:        order.OrderItems,
	})

	log.Infof("Order %s created for restaurant %s (total %.2f)", order.ID, order.RestaurantID, order.TotalAmount)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor, filter domain.Filter) ([]domain.Order, error) {
	query := domain.OrderQuery{ActiveOnly: filter.ActiveOnly}
	switch actor.Role {
	case domain.RoleCustomer:
		query.CustomerID = actor.ID
	case domain.RoleRestaurant:
		query.RestaurantID = actor.ID
	case domain.RoleCourier:
		query.CourierID = actor.ID
		query.IncludeAvailable = true
	default:
		return nil, apperr.Validation("listOrders", "unknown role %q", actor.Role)
	}
	if actor.ID == "" {
		return nil, apperr.Validation("listOrders", "actor id is required")
	}

	orders, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if !domain.VisibleTo(order, actor) {
			continue
		}
		if filter.ActiveOnly && !order.Status.Active() {
			continue
		}
		visible = append(visible, order)
	}
	sortNewestFirst(visible)
	return visible, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next domain.Status, actor domain.Actor) (*domain.Order, error) {
	const op = "updateStatus"

	if !next.Valid() {
		return nil, apperr.Validation(op, "unknown status %q", next)
	}
	if actor.ID == "" {
		return nil, apperr.Validation(op, "actor id is required")
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role == "" {
		actor.Role = domain.InferRole(*order, actor.ID)
	}

	if next == domain.StatusPickedUp && order.Status == domain.StatusReady {
		return s.Claim(ctx, orderID, actor)
	}

	if !domain.CanTransition(*order, next, actor) {
		return nil, apperr.InvalidTransition(op, "%s %s cannot move order %s from %s to %s",
			strings.ToLower(string(actor.Role)), actor.ID, orderID, order.Status, next)
	}

	from := order.Status
	moved, err := s.repo.UpdateStatus(ctx, orderID, from, next)
	if err != nil {
		return nil, err
	}
	if !moved {
		current, err := s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, apperr.InvalidTransition(op, "order %s moved to %s before %s could be applied",
			orderID, current.Status, next)
	}

	order.Status = next
	s.emit(ctx, statusEvent(order, from))
	log.Infof("Order %s moved %s -> %s by %s", orderID, from, next, actor.ID)
	return order, nil
}

func (s *OrderService) QRCode(ctx context.Context, orderID string) ([]byte, error) {
	qr, err := s.repo.GetQRCode(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(qr) == 0 && s.qrEncoder != nil {
		regenerated, err := s.qrEncoder.Generate(orderID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SaveQRCode(ctx, orderID, regenerated); err != nil {
			log.Warnf("Failed to cache regenerated QR code for order %s: %v", orderID, err)
		}
		return regenerated, nil
	}
	return qr, nil
}

// emit fans an event out to Kafka and the dashboard counters. Neither is allowed to
// fail the write that already committed.
func (s *OrderService) emit(ctx context.Context, event domain.OrderEvent) {
	event.Timestamp = s.now()
	if s.publisher != nil {
		if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
			log.Errorf("Failed to publish %s for order %s: %v", event.Type, event.OrderID, err)
		}
	}
	if s.dashboard != nil {
		if err := s.dashboard.Record(ctx, event); err != nil {
			log.Warnf("Failed to update dashboard for restaurant %s: %v", event.RestaurantID, err)
		}
	}
}

func statusEvent(order *domain.Order, from domain.Status) domain.OrderEvent {
	return domain.OrderEvent{
		Type:           domain.EventOrderStatusChanged,
		OrderID:        order.ID,
		UserID:         order.UserID,
		RestaurantID:   order.RestaurantID,
		Status:         order.Status,
		PreviousStatus: from,
		CourierID:      order.CourierID,
		TotalAmount:    order.TotalAmount,
	}
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

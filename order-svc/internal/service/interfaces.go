package service

import (
	"context"
	"io"

	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error)
	// UpdateStatus moves the order only if it is still in from. It reports false when
	// the row was absent or had already moved.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) (bool, error)
	ClaimOrder(ctx context.Context, id string, courier domain.Actor) (bool, error)
	SaveQRCode(ctx context.Context, id string, qr []byte) error
	GetQRCode(ctx context.Context, id string) ([]byte, error)
}

type RestaurantRepository interface {
	UpsertRestaurant(ctx context.Context, rest *domain.Restaurant) error
	ListRestaurants(ctx context.Context, activeOnly bool) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	SetRestaurantActive(ctx context.Context, id string, active bool) (int64, error)
	DeleteRestaurant(ctx context.Context, id string) (int64, error)
	UpdateRestaurantImage(ctx context.Context, id, imageURL string) error

	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	ListMenuItems(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) (int64, error)
	SetMenuItemAvailability(ctx context.Context, restaurantID, itemID string, available bool) (int64, error)
	DeleteMenuItem(ctx context.Context, restaurantID, itemID string) (int64, error)
	UpdateMenuItemImage(ctx context.Context, restaurantID, itemID, imageURL string) (int64, error)
}

type MenuCache interface {
	GetMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, bool, error)
	SetMenu(ctx context.Context, restaurantID string, items []domain.MenuItem) error
	Invalidate(ctx context.Context, restaurantID string) error
}

type DashboardStore interface {
	Record(ctx context.Context, event domain.OrderEvent) error
	Stats(ctx context.Context, restaurantID string) (*domain.DashboardStats, error)
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type ImageStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, customer domain.Actor, cart []domain.CartLine) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Actor, filter domain.Filter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, next domain.Status, actor domain.Actor) (*domain.Order, error)
	ListAvailable(ctx context.Context) ([]domain.Order, error)
	Claim(ctx context.Context, orderID string, courier domain.Actor) (*domain.Order, error)
	QRCode(ctx context.Context, orderID string) ([]byte, error)
}

type RestaurantServiceInterface interface {
	Upsert(ctx context.Context, rest *domain.Restaurant) error
	List(ctx context.Context, activeOnly bool) ([]domain.Restaurant, error)
	Get(ctx context.Context, id string) (*domain.Restaurant, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	UploadCover(ctx context.Context, id, filename, contentType string, body io.Reader) (string, error)

	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	Menu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	SetAvailability(ctx context.Context, restaurantID, itemID string, available bool) error
	DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error
	UploadMenuImage(ctx context.Context, restaurantID, itemID, filename, contentType string, body io.Reader) (string, error)
}

type DashboardServiceInterface interface {
	Stats(ctx context.Context, restaurantID string) (*domain.DashboardStats, error)
}

var (
	_ OrderServiceInterface      = (*OrderService)(nil)
	_ RestaurantServiceInterface = (*RestaurantService)(nil)
	_ DashboardServiceInterface  = (*DashboardService)(nil)
)

package domain

import "time"

type Restaurant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CoverImage string    `json:"coverImage,omitempty"`
	IsActive   bool      `json:"isActive"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type MenuItem struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	ImageURI     string    `json:"imageUri,omitempty"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CartLine struct {
	ItemID         string  `json:"itemId"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
}

type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	CustomerName   string      `json:"customerName"`
	RestaurantID   string      `json:"restaurantId"`
	RestaurantName string      `json:"restaurantName"`
	Status         Status      `json:"status"`
	TotalAmount    float64     `json:"totalAmount"`
	OrderItems     []OrderItem `json:"orderItems"`
	CreatedAt      time.Time   `json:"createdAt"`
	CourierID      string      `json:"courierId,omitempty"`
	CourierName    string      `json:"courierName,omitempty"`
}

// OrderItem is a snapshot of a menu item taken when the order was placed.
type OrderItem struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type Filter struct {
	ActiveOnly bool
}

// OrderQuery selects rows at the storage layer. Empty fields do not constrain.
type OrderQuery struct {
	CustomerID       string
	RestaurantID     string
	CourierID        string
	IncludeAvailable bool
	ActiveOnly       bool
}

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

type OrderEvent struct {
	Type           string      `json:"type"`
	OrderID        string      `json:"orderId"`
	UserID         string      `json:"userId"`
	CustomerName   string      `json:"customerName,omitempty"`
	RestaurantID   string      `json:"restaurantId"`
	Status         Status      `json:"status"`
	PreviousStatus Status      `json:"previousStatus,omitempty"`
	CourierID      string      `json:"courierId,omitempty"`
	TotalAmount    float64     `json:"totalAmount"`
	Items          []OrderItem `json:"items,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

type DashboardStats struct {
	RestaurantID   string           `json:"restaurantId"`
	CountsByStatus map[Status]int64 `json:"countsByStatus"`
	OrdersToday    int64            `json:"ordersToday"`
	RevenueToday   float64          `json:"revenueToday"`
}

// Package model holds the client's view of the wire types exchanged with the backend.
package model

import "time"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleRestaurant Role = "RESTAURANT"
	RoleCourier    Role = "COURIER"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusPickedUp  Status = "PICKED_UP"
	StatusOnWay     Status = "ON_WAY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Active() bool {
	return s != StatusDelivered && s != StatusCancelled
}

// Identity is the locally fabricated login. Nothing about it is verified by the backend.
type Identity struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Role        Role   `json:"role"`
	VehicleInfo string `json:"vehicleInfo,omitempty"`
}

type Restaurant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CoverImage string    `json:"coverImage,omitempty"`
	IsActive   bool      `json:"isActive"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type MenuItem struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	ImageURI     string  `json:"imageUri,omitempty"`
	IsAvailable  bool    `json:"isAvailable"`
}

type CartLine struct {
	ItemID         string  `json:"itemId"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
}

type OrderItem struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
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

type ChatType string

const (
	ChatRestaurant ChatType = "RESTAURANT_CHAT"
	ChatCourier    ChatType = "COURIER_CHAT"
)

type Message struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	IsFromUser bool      `json:"isFromUser"`
	Timestamp  time.Time `json:"timestamp"`
	ChatType   ChatType  `json:"chatType"`
	Seq        int64     `json:"seq,omitempty"`
	ClientID   string    `json:"clientId,omitempty"`
}

const (
	FrameJoin       = "join"
	FrameLeave      = "leave"
	FrameNewMessage = "new_message"
)

type Envelope struct {
	Type    string   `json:"type"`
	OrderID string   `json:"orderId,omitempty"`
	Data    *Message `json:"data,omitempty"`
}

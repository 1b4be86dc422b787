package domain

import (
	"fmt"
	"strings"
	"time"
)

type ChatType string

const (
	ChatRestaurant ChatType = "RESTAURANT_CHAT"
	ChatCourier    ChatType = "COURIER_CHAT"
)

var ChatTypes = []ChatType{ChatRestaurant, ChatCourier}

func (c ChatType) Valid() bool {
	return c == ChatRestaurant || c == ChatCourier
}

const DefaultMaxLength = 500

// Message is immutable once appended. Seq orders messages inside one (OrderID, ChatType)
// partition; ClientID lets a sender retry without creating a duplicate.
type Message struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	IsFromUser bool      `json:"isFromUser"`
	Timestamp  time.Time `json:"timestamp"`
	ChatType   ChatType  `json:"chatType"`
	Seq        int64     `json:"seq"`
	ClientID   string    `json:"clientId,omitempty"`
}

const (
	FrameJoin       = "join"
	FrameLeave      = "leave"
	FrameNewMessage = "new_message"
)

// Envelope is the websocket frame. Control frames carry OrderID only.
type Envelope struct {
	Type    string   `json:"type"`
	OrderID string   `json:"orderId,omitempty"`
	Data    *Message `json:"data,omitempty"`
}

// Room returns the order the frame is addressed to.
func (e Envelope) Room() string {
	if e.OrderID != "" {
		return e.OrderID
	}
	if e.Data != nil {
		return e.Data.OrderID
	}
	return ""
}

const EventOrderCreated = "order_created"

// OrderEvent is the subset of the order-events payload chat-svc reacts to.
type OrderEvent struct {
	Type         string      `json:"type"`
	OrderID      string      `json:"orderId"`
	UserID       string      `json:"userId"`
	CustomerName string      `json:"customerName"`
	RestaurantID string      `json:"restaurantId"`
	TotalAmount  float64     `json:"totalAmount"`
	Items        []OrderLine `json:"items"`
	Timestamp    time.Time   `json:"timestamp"`
}

type OrderLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderSummary renders the message a customer's checkout posts into the restaurant chat.
func OrderSummary(event OrderEvent) string {
	var b strings.Builder
	b.WriteString("New Order:\n")
	for i, item := range event.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%dx %s", item.Quantity, item.Name)
	}
	fmt.Fprintf(&b, "\n\nTotal: $%.2f", event.TotalAmount)
	return b.String()
}

package service

import (
	"context"
	"encoding/json"

	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Consumer pushes chat-messages to local sockets and turns order_created events into
// the customer's order summary in the restaurant chat.
type Consumer struct {
	Messages MessageReader
	Orders   MessageReader
	Hub      Broadcaster
	Chat     MessageServiceInterface
}

func NewConsumer(messages, orders MessageReader, hub Broadcaster, chat MessageServiceInterface) *Consumer {
	return &Consumer{
		Messages: messages,
		Orders:   orders,
		Hub:      hub,
		Chat:     chat,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Println("Starting chat consumer...")
	if c.Orders != nil {
		go c.consume(ctx, "order-events", c.Orders, c.ProcessOrderEvent)
	}
	c.consume(ctx, "chat-messages", c.Messages, c.ProcessChatMessage)
}

func (c *Consumer) consume(ctx context.Context, topic string, reader MessageReader, handle func(context.Context, []byte)) {
	for {
		message, err := reader.ReadMessage(ctx)
		if ctx.Err() != nil {
			log.Printf("Consumer for %s stopped", topic)
			return
		}
		if err != nil {
			log.Errorf("Error reading %s: %v", topic, err)
			continue
		}
		handle(ctx, message.Value)
	}
}

func (c *Consumer) ProcessChatMessage(_ context.Context, payload []byte) {
	var msg domain.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Warnf("Error unmarshaling chat message: %v", err)
		return
	}
	if msg.OrderID == "" {
		log.Warnf("Dropping chat message %s without order id", msg.ID)
		return
	}
	c.Hub.Broadcast(msg.OrderID, domain.Envelope{Type: domain.FrameNewMessage, OrderID: msg.OrderID, Data: &msg})
}

func (c *Consumer) ProcessOrderEvent(ctx context.Context, payload []byte) {
	var event domain.OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Warnf("Error unmarshaling order event: %v", err)
		return
	}
	if event.Type != domain.EventOrderCreated {
		return
	}

	// ClientID makes a redelivered event land on the message already written.
	_, err := c.Chat.Send(ctx, domain.Message{
		OrderID:    event.OrderID,
		ChatType:   domain.ChatRestaurant,
		SenderID:   event.UserID,
		IsFromUser: true,
		Content:    domain.OrderSummary(event),
		ClientID:   "order-created-" + event.OrderID,
	})
	if err != nil {
		log.Errorf("Error posting order summary for %s: %v", event.OrderID, err)
		return
	}
	log.Printf("Posted order summary for order %s", event.OrderID)
}

package service

import (
	"context"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
)

type MessageServiceInterface interface {
	Send(ctx context.Context, msg domain.Message) (*domain.Message, error)
	History(ctx context.Context, orderID string, chatType domain.ChatType) ([]domain.Message, error)
}

type MessageRepository interface {
	// Append assigns msg.Seq, stamps msg.Timestamp inside the partition lock and stores it. When msg.ClientID was already used in the
	// partition, msg is overwritten with the stored copy and created is false.
	Append(ctx context.Context, msg *domain.Message) (created bool, err error)
	History(ctx context.Context, orderID string, chatType domain.ChatType, since time.Time) ([]domain.Message, error)
}

type RecentLog interface {
	Add(ctx context.Context, msg domain.Message) error
	Recent(ctx context.Context, orderID string, chatType domain.ChatType, since time.Time) ([]domain.Message, bool, error)
	Fill(ctx context.Context, orderID string, chatType domain.ChatType, msgs []domain.Message) error
	Invalidate(ctx context.Context, orderID string, chatType domain.ChatType) error
}

type MessagePublisher interface {
	PublishMessage(ctx context.Context, msg domain.Message) error
}

// Broadcaster delivers a frame to every connection joined to room.
type Broadcaster interface {
	Broadcast(room string, env domain.Envelope)
}

var _ MessageServiceInterface = (*MessageService)(nil)

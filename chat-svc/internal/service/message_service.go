package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
)

type MessageService struct {
	repo      MessageRepository
	recent    RecentLog
	publisher MessagePublisher
	local     Broadcaster
	retention time.Duration
	maxLength int
	now       func() time.Time
}

// NewMessageService wires message persistence and fan-out. recent, publisher and local
// may be nil. A zero retention keeps history forever.
func NewMessageService(repo MessageRepository, recent RecentLog, publisher MessagePublisher, local Broadcaster, retention time.Duration, maxLength int) *MessageService {
	if maxLength <= 0 {
		maxLength = domain.DefaultMaxLength
	}
	return &MessageService{
		repo:      repo,
		recent:    recent,
		publisher: publisher,
		local:     local,
		retention: retention,
		maxLength: maxLength,
		now:       time.Now,
	}
}

func (s *MessageService) Send(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	const op = "sendMessage"

	if msg.OrderID == "" {
		return nil, apperr.Validation(op, "order id is required")
	}
	if !msg.ChatType.Valid() {
		return nil, apperr.Validation(op, "unknown chat type %q", msg.ChatType)
	}
	if msg.SenderID == "" {
		return nil, apperr.Validation(op, "sender id is required")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil, apperr.Validation(op, "message is empty")
	}
	if n := utf8.RuneCountInString(msg.Content); n > s.maxLength {
		return nil, apperr.Validation(op, "message is %d characters, limit is %d", n, s.maxLength)
	}

	msg.ID = cuid.New()
	// Postgres keeps microseconds; the stored copy and the cached copy must agree.
	msg.Timestamp = s.now().UTC().Truncate(time.Microsecond)
	msg.Seq = 0

	created, err := s.repo.Append(ctx, &msg)
	if err != nil {
		return nil, err
	}
	if !created {
		log.Debugf("Duplicate send %s for order %s, returning stored message %s", msg.ClientID, msg.OrderID, msg.ID)
		return &msg, nil
	}

	if s.recent != nil {
		if err := s.recent.Add(ctx, msg); err != nil {
			log.Warnf("Failed to cache message %s: %v", msg.ID, err)
			if err := s.recent.Invalidate(ctx, msg.OrderID, msg.ChatType); err != nil {
				log.Errorf("Failed to invalidate recent log %s/%s: %v", msg.OrderID, msg.ChatType, err)
			}
		}
	}
	s.fanOut(ctx, msg)

	return &msg, nil
}

// fanOut hands the message to Kafka so every instance pushes it to its own sockets. When
// Kafka is unavailable only this instance's sockets are reached; pollers catch up the rest.
func (s *MessageService) fanOut(ctx context.Context, msg domain.Message) {
	if s.publisher != nil {
		err := s.publisher.PublishMessage(ctx, msg)
		if err == nil {
			return
		}
		log.Errorf("Failed to publish message %s for order %s: %v", msg.ID, msg.OrderID, err)
	}
	if s.local != nil {
		s.local.Broadcast(msg.OrderID, domain.Envelope{Type: domain.FrameNewMessage, OrderID: msg.OrderID, Data: &msg})
	}
}

// History returns one partition in seq order. An empty chatType returns every chat of
// the order, ordered by time.
func (s *MessageService) History(ctx context.Context, orderID string, chatType domain.ChatType) ([]domain.Message, error) {
	if orderID == "" {
		return nil, apperr.Validation("history", "order id is required")
	}
	if chatType != "" && !chatType.Valid() {
		return nil, apperr.Validation("history", "unknown chat type %q", chatType)
	}

	if chatType != "" {
		return s.partition(ctx, orderID, chatType)
	}

	var all []domain.Message
	for _, ct := range domain.ChatTypes {
		msgs, err := s.partition(ctx, orderID, ct)
		if err != nil {
			return nil, err
		}
		all = append(all, msgs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all, nil
}

func (s *MessageService) partition(ctx context.Context, orderID string, chatType domain.ChatType) ([]domain.Message, error) {
	var since time.Time
	if s.retention > 0 {
		since = s.now().Add(-s.retention)
	}

	if s.recent != nil {
		msgs, ok, err := s.recent.Recent(ctx, orderID, chatType, since)
		if err != nil {
			log.Warnf("Recent log read failed for %s/%s: %v", orderID, chatType, err)
		} else if ok {
			return msgs, nil
		}
	}

	msgs, err := s.repo.History(ctx, orderID, chatType, since)
	if err != nil {
		return nil, err
	}
	if s.recent != nil {
		if err := s.recent.Fill(ctx, orderID, chatType, msgs); err != nil {
			log.Warnf("Recent log fill failed for %s/%s: %v", orderID, chatType, err)
		}
	}
	return msgs, nil
}

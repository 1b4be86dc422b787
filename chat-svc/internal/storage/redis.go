package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RecentLog caches each partition as a sorted set of message ids scored by seq, with the
// encoded messages in a hash beside it. One id is one member however often it is written.
// The "filled" marker is set only after the set was loaded from Postgres, so a partial
// set is never served.
type RecentLog struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRecentLog(client *redis.Client, ttl time.Duration) *RecentLog {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RecentLog{Client: client, TTL: ttl}
}

func (l *RecentLog) LogKey(orderID string, chatType domain.ChatType) string {
	return "chat:" + orderID + ":" + string(chatType)
}

func (l *RecentLog) payloadKey(orderID string, chatType domain.ChatType) string {
	return l.LogKey(orderID, chatType) + ":msgs"
}

func (l *RecentLog) filledKey(orderID string, chatType domain.ChatType) string {
	return l.LogKey(orderID, chatType) + ":filled"
}

func (l *RecentLog) Add(ctx context.Context, msg domain.Message) error {
	return l.write(ctx, msg.OrderID, msg.ChatType, []domain.Message{msg}, false)
}

func (l *RecentLog) Fill(ctx context.Context, orderID string, chatType domain.ChatType, msgs []domain.Message) error {
	return l.write(ctx, orderID, chatType, msgs, true)
}

func (l *RecentLog) write(ctx context.Context, orderID string, chatType domain.ChatType, msgs []domain.Message, markFilled bool) error {
	key := l.LogKey(orderID, chatType)
	payloads := l.payloadKey(orderID, chatType)

	members := make([]redis.Z, 0, len(msgs))
	fields := make(map[string]any, len(msgs))
	for _, msg := range msgs {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		members = append(members, redis.Z{Score: float64(msg.Seq), Member: msg.ID})
		fields[msg.ID] = payload
	}

	pipe := l.Client.TxPipeline()
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
		pipe.HSet(ctx, payloads, fields)
		pipe.Expire(ctx, key, l.TTL)
		pipe.Expire(ctx, payloads, l.TTL)
	}
	if markFilled {
		pipe.Set(ctx, l.filledKey(orderID, chatType), "1", l.TTL)
	} else {
		pipe.Expire(ctx, l.filledKey(orderID, chatType), l.TTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the cached partition so the next read goes back to Postgres.
func (l *RecentLog) Invalidate(ctx context.Context, orderID string, chatType domain.ChatType) error {
	return l.Client.Del(ctx,
		l.filledKey(orderID, chatType),
		l.LogKey(orderID, chatType),
		l.payloadKey(orderID, chatType),
	).Err()
}

// Recent returns the cached partition in seq order with everything older than since
// removed, from the result and from the cache.
func (l *RecentLog) Recent(ctx context.Context, orderID string, chatType domain.ChatType, since time.Time) ([]domain.Message, bool, error) {
	filled, err := l.Client.Exists(ctx, l.filledKey(orderID, chatType)).Result()
	if err != nil {
		return nil, false, err
	}
	if filled == 0 {
		return nil, false, nil
	}

	key := l.LogKey(orderID, chatType)
	payloads := l.payloadKey(orderID, chatType)
	ids, err := l.Client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, false, err
	}
	if len(ids) == 0 {
		return []domain.Message{}, true, nil
	}
	raw, err := l.Client.HMGet(ctx, payloads, ids...).Result()
	if err != nil {
		return nil, false, err
	}

	msgs := make([]domain.Message, 0, len(ids))
	var stale []string
	for i, value := range raw {
		encoded, ok := value.(string)
		if !ok {
			// payload expired or was never written; Postgres is the only full copy
			return nil, false, nil
		}
		var msg domain.Message
		if err := json.Unmarshal([]byte(encoded), &msg); err != nil {
			log.Warnf("Dropping undecodable entry %s in %s: %v", ids[i], key, err)
			stale = append(stale, ids[i])
			continue
		}
		if msg.Timestamp.Before(since) {
			stale = append(stale, ids[i])
			continue
		}
		msgs = append(msgs, msg)
	}

	if len(stale) > 0 {
		pipe := l.Client.TxPipeline()
		pipe.ZRem(ctx, key, toAny(stale)...)
		pipe.HDel(ctx, payloads, stale...)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warnf("Failed to trim %d entries from %s: %v", len(stale), key, err)
		}
	}
	return msgs, true, nil
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

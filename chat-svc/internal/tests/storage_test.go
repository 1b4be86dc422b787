package tests

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecentLog(t *testing.T) (*miniredis.Miniredis, *storage.RecentLog) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, storage.NewRecentLog(client, time.Hour)
}

func TestRecentLog_MissUntilFilled(t *testing.T) {
	_, recent := newRecentLog(t)
	ctx := context.Background()

	// an Add before any fill must not make a partial partition look complete
	require.NoError(t, recent.Add(ctx, domain.Message{ID: "m3", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 3, Timestamp: time.Now()}))
	_, ok, err := recent.Recent(ctx, "o1", domain.ChatRestaurant, time.Time{})
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	require.NoError(t, recent.Fill(ctx, "o1", domain.ChatRestaurant, []domain.Message{
		{ID: "m1", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 1, Timestamp: now.Add(-2 * time.Minute)},
		{ID: "m2", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 2, Timestamp: now.Add(-time.Minute)},
	}))
	require.NoError(t, recent.Add(ctx, domain.Message{ID: "m4", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 4, Timestamp: now}))

	msgs, ok, err := recent.Recent(ctx, "o1", domain.ChatRestaurant, time.Time{})
	require.NoError(t, err)
	require.True(t, ok)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"m1", "m2", "m3", "m4"}, ids)

	_, ok, err = recent.Recent(ctx, "o1", domain.ChatCourier, time.Time{})
	require.NoError(t, err)
	assert.False(t, ok, "partitions are cached independently")
}

func TestRecentLog_RetentionDropsPrefix(t *testing.T) {
	mr, recent := newRecentLog(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, recent.Fill(ctx, "o1", domain.ChatCourier, []domain.Message{
		{ID: "old1", OrderID: "o1", ChatType: domain.ChatCourier, Seq: 1, Timestamp: now.Add(-5 * time.Hour)},
		{ID: "old2", OrderID: "o1", ChatType: domain.ChatCourier, Seq: 2, Timestamp: now.Add(-4 * time.Hour)},
		{ID: "new1", OrderID: "o1", ChatType: domain.ChatCourier, Seq: 3, Timestamp: now.Add(-time.Hour)},
		{ID: "new2", OrderID: "o1", ChatType: domain.ChatCourier, Seq: 4, Timestamp: now},
	}))

	msgs, ok, err := recent.Recent(ctx, "o1", domain.ChatCourier, now.Add(-3*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "new1", msgs[0].ID)
	assert.Equal(t, "new2", msgs[1].ID)

	members, err := mr.ZMembers(recent.LogKey("o1", domain.ChatCourier))
	require.NoError(t, err)
	assert.Len(t, members, 2, "expired entries are removed from the cache as well")
}

func TestRecentLog_FillOverlapsAdd(t *testing.T) {
	mr, recent := newRecentLog(t)
	ctx := context.Background()
	sent := time.Date(2026, 5, 1, 12, 0, 0, 123456789, time.UTC)

	require.NoError(t, recent.Add(ctx, domain.Message{ID: "m1", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 1, Content: "one", Timestamp: sent}))
	// the database copy of the same message: microsecond precision, local zone
	stored := domain.Message{ID: "m1", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 1, Content: "one",
		Timestamp: sent.Truncate(time.Microsecond).Local()}
	require.NoError(t, recent.Fill(ctx, "o1", domain.ChatRestaurant, []domain.Message{stored}))
	require.NoError(t, recent.Add(ctx, domain.Message{ID: "m1", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 1, Content: "one", Timestamp: sent}))

	msgs, ok, err := recent.Recent(ctx, "o1", domain.ChatRestaurant, time.Time{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)

	members, err := mr.ZMembers(recent.LogKey("o1", domain.ChatRestaurant))
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, members)
}

func TestRecentLog_TrimsOnlyExpiredMembers(t *testing.T) {
	mr, recent := newRecentLog(t)
	ctx := context.Background()
	now := time.Now()

	// seq and time disagree at the boundary: the expired entry is not a prefix
	require.NoError(t, recent.Fill(ctx, "o1", domain.ChatRestaurant, []domain.Message{
		{ID: "fresh", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 1, Timestamp: now.Add(-time.Minute)},
		{ID: "stale", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 2, Timestamp: now.Add(-4 * time.Hour)},
	}))

	msgs, ok, err := recent.Recent(ctx, "o1", domain.ChatRestaurant, now.Add(-3*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "fresh", msgs[0].ID)

	members, err := mr.ZMembers(recent.LogKey("o1", domain.ChatRestaurant))
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, members)
}

func TestRecentLog_Invalidate(t *testing.T) {
	_, recent := newRecentLog(t)
	ctx := context.Background()

	require.NoError(t, recent.Fill(ctx, "o1", domain.ChatRestaurant, []domain.Message{
		{ID: "m1", OrderID: "o1", ChatType: domain.ChatRestaurant, Seq: 1, Timestamp: time.Now()},
	}))
	require.NoError(t, recent.Invalidate(ctx, "o1", domain.ChatRestaurant))

	_, ok, err := recent.Recent(ctx, "o1", domain.ChatRestaurant, time.Time{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecentLog_Expires(t *testing.T) {
	mr, recent := newRecentLog(t)
	ctx := context.Background()

	require.NoError(t, recent.Fill(ctx, "o1", domain.ChatRestaurant, nil))
	_, ok, err := recent.Recent(ctx, "o1", domain.ChatRestaurant, time.Time{})
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Hour)
	_, ok, err = recent.Recent(ctx, "o1", domain.ChatRestaurant, time.Time{})
	require.NoError(t, err)
	assert.False(t, ok)
}

type capturingWriter struct {
	messages []kafka.Message
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestKafkaPublisher_PublishMessage(t *testing.T) {
	writer := &capturingWriter{}
	err := storage.NewKafkaPublisher(writer).PublishMessage(context.Background(), domain.Message{
		ID: "m1", OrderID: "o1", ChatType: domain.ChatRestaurant, Content: "hi",
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "o1", string(writer.messages[0].Key))
	assert.Contains(t, string(writer.messages[0].Value), `"chatType":"RESTAURANT_CHAT"`)
}

// TestMessageStore_Postgres runs against a real database when CHAT_TEST_DATABASE_URL is set.
func TestMessageStore_Postgres(t *testing.T) {
	dsn := os.Getenv("CHAT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CHAT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := storage.NewMessageStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	orderID := "test-" + cuid.New()
	const senders = 8

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := &domain.Message{
				ID: cuid.New(), OrderID: orderID, ChatType: domain.ChatRestaurant, SenderID: "cust-1",
				Content: fmt.Sprintf("msg %d", i), Timestamp: time.Now().UTC(),
			}
			created, err := store.Append(ctx, msg)
			assert.NoError(t, err)
			assert.True(t, created)
		}(i)
	}
	wg.Wait()

	msgs, err := store.History(ctx, orderID, domain.ChatRestaurant, time.Time{})
	require.NoError(t, err)
	require.Len(t, msgs, senders)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
	}

	retry := &domain.Message{
		ID: cuid.New(), OrderID: orderID, ChatType: domain.ChatRestaurant, SenderID: "cust-1",
		Content: "once", ClientID: "client-1", Timestamp: time.Now().UTC(),
	}
	created, err := store.Append(ctx, retry)
	require.NoError(t, err)
	require.True(t, created)
	firstID := retry.ID

	again := &domain.Message{
		ID: cuid.New(), OrderID: orderID, ChatType: domain.ChatRestaurant, SenderID: "cust-1",
		Content: "once", ClientID: "client-1", Timestamp: time.Now().UTC(),
	}
	created, err = store.Append(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstID, again.ID)
	assert.Equal(t, int64(senders+1), again.Seq)
}

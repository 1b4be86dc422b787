package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) MenuKey(restaurantID string) string {
	return "menu:" + restaurantID
}

func (c *RedisCache) GetMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, bool, error) {
	raw, err := c.Client.Get(ctx, c.MenuKey(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []domain.MenuItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisCache) SetMenu(ctx context.Context, restaurantID string, items []domain.MenuItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.MenuKey(restaurantID), payload, c.TTL).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, restaurantID string) error {
	return c.Client.Del(ctx, c.MenuKey(restaurantID)).Err()
}

// DashboardStore keeps per-restaurant live counters: one hash of order counts by status
// and one hash per day for order count and delivered revenue.
type DashboardStore struct {
	Client *redis.Client
	now    func() time.Time
}

func NewDashboardStore(client *redis.Client) *DashboardStore {
	return &DashboardStore{Client: client, now: time.Now}
}

func statusKey(restaurantID string) string {
	return "dashboard:" + restaurantID + ":status"
}

func dailyKey(restaurantID string, day time.Time) string {
	return "dashboard:" + restaurantID + ":daily:" + day.Format("2006-01-02")
}

func (s *DashboardStore) Record(ctx context.Context, event domain.OrderEvent) error {
	day := event.Timestamp
	if day.IsZero() {
		day = s.now()
	}
	daily := dailyKey(event.RestaurantID, day)

	pipe := s.Client.TxPipeline()
	switch event.Type {
	case domain.EventOrderCreated:
		pipe.HIncrBy(ctx, statusKey(event.RestaurantID), string(event.Status), 1)
		pipe.HIncrBy(ctx, daily, "orders", 1)
	case domain.EventOrderStatusChanged:
		pipe.HIncrBy(ctx, statusKey(event.RestaurantID), string(event.PreviousStatus), -1)
		pipe.HIncrBy(ctx, statusKey(event.RestaurantID), string(event.Status), 1)
		if event.Status == domain.StatusDelivered {
			pipe.HIncrByFloat(ctx, daily, "revenue", event.TotalAmount)
		}
	default:
		return nil
	}
	pipe.Expire(ctx, daily, 7*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *DashboardStore) Stats(ctx context.Context, restaurantID string) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		RestaurantID:   restaurantID,
		CountsByStatus: make(map[domain.Status]int64, len(domain.AllStatuses)),
	}

	counts, err := s.Client.HGetAll(ctx, statusKey(restaurantID)).Result()
	if err != nil {
		return nil, err
	}
	for status, raw := range counts {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		stats.CountsByStatus[domain.Status(status)] = n
	}

	daily, err := s.Client.HGetAll(ctx, dailyKey(restaurantID, s.now())).Result()
	if err != nil {
		return nil, err
	}
	stats.OrdersToday, _ = strconv.ParseInt(daily["orders"], 10, 64)
	stats.RevenueToday, _ = strconv.ParseFloat(daily["revenue"], 64)
	return stats, nil
}

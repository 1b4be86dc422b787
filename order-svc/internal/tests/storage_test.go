package tests

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T) (*storage.PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewPostgresRepository(db), mock
}

func TestPostgresRepository_UpdateStatusIsGuarded(t *testing.T) {
	repo, mock := newSQLMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $3 WHERE id = $1 AND status = $2")).
		WithArgs("o1", "PENDING", "ACCEPTED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $3 WHERE id = $1 AND status = $2")).
		WithArgs("o1", "PENDING", "ACCEPTED").
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.UpdateStatus(ctx, "o1", domain.StatusPending, domain.StatusAccepted)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.UpdateStatus(ctx, "o1", domain.StatusPending, domain.StatusAccepted)
	require.NoError(t, err)
	assert.False(t, moved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ClaimOrder(t *testing.T) {
	repo, mock := newSQLMock(t)
	ctx := context.Background()
	courier := domain.Actor{ID: "cour-1", Name: "Max", Role: domain.RoleCourier}

	claim := regexp.QuoteMeta("WHERE id = $1 AND status = 'READY' AND courier_id IS NULL")
	mock.ExpectExec(claim).WithArgs("o1", "cour-1", "Max").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(claim).WithArgs("o1", "cour-1", "Max").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ClaimOrder(ctx, "o1", courier)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ClaimOrder(ctx, "o1", courier)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

var orderRowColumns = []string{"id", "user_id", "customer_name", "restaurant_id", "restaurant_name", "status",
	"total_amount", "courier_id", "courier_name", "created_at"}

func TestPostgresRepository_GetOrder(t *testing.T) {
	repo, mock := newSQLMock(t)
	ctx := context.Background()
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM orders WHERE id = \\$1").
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow("o1", "cust-1", "Ada", "rest-1", "Burger Place", "READY", 19.98, "", "", createdAt))
	mock.ExpectQuery("FROM order_items").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "id", "menu_item_id", "name", "quantity", "price"}).
			AddRow("o1", "oi-1", "item-burger", "Burger", 2, 9.99))

	order, err := repo.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, order.Status)
	assert.Equal(t, 19.98, order.TotalAmount)
	assert.Empty(t, order.CourierID)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)

	mock.ExpectQuery("FROM orders WHERE id = \\$1").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	_, err = repo.GetOrder(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListOrdersForCourier(t *testing.T) {
	repo, mock := newSQLMock(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (courier_id = $1 OR (status = 'READY' AND courier_id IS NULL)) AND status NOT IN ('DELIVERED', 'CANCELLED') ORDER BY created_at DESC")).
		WithArgs("cour-1").
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow("o2", "cust-2", "", "rest-1", "Burger Place", "ON_WAY", 12.5, "cour-1", "Max", time.Now()).
			AddRow("o1", "cust-1", "", "rest-1", "Burger Place", "READY", 19.98, "", "", time.Now().Add(-time.Hour)))
	mock.ExpectQuery("FROM order_items").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "id", "menu_item_id", "name", "quantity", "price"}))

	orders, err := repo.ListOrders(ctx, domain.OrderQuery{CourierID: "cour-1", IncludeAvailable: true, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "cour-1", orders[0].CourierID)
	assert.NotNil(t, orders[1].OrderItems)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateOrder(t *testing.T) {
	repo, mock := newSQLMock(t)
	ctx := context.Background()
	createdAt := time.Now().UTC()

	order := &domain.Order{
		ID: "o1", UserID: "cust-1", CustomerName: "Ada", RestaurantID: "rest-1", RestaurantName: "Burger Place",
		Status: domain.StatusPending, TotalAmount: 23.49,
		OrderItems: []domain.OrderItem{
			{ID: "oi-1", MenuItemID: "item-burger", Name: "Burger", Quantity: 2, Price: 9.99},
			{ID: "oi-2", MenuItemID: "item-fries", Name: "Fries", Quantity: 1, Price: 3.51},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("o1", "cust-1", "Ada", "rest-1", "Burger Place", "PENDING", 23.49).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("oi-1", "o1", 0, "item-burger", "Burger", 2, 9.99).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("oi-2", "o1", 1, "item-fries", "Fries", 1, 3.51).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.Equal(t, createdAt, order.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateOrderRollsBack(t *testing.T) {
	repo, mock := newSQLMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CreateOrder(ctx, &domain.Order{
		ID: "o1", Status: domain.StatusPending,
		OrderItems: []domain.OrderItem{{ID: "oi-1", Quantity: 1, Price: 1}},
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_MenuMutationsReportRows(t *testing.T) {
	repo, mock := newSQLMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE menu_items SET is_available = $1")).
		WithArgs(false, "item-burger", "rest-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2")).
		WithArgs("ghost", "rest-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.SetMenuItemAvailability(ctx, "rest-1", "item-burger", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteMenuItem(ctx, "rest-1", "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisCache_Menu(t *testing.T) {
	mr, client := newMiniRedis(t)
	cache := storage.NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.GetMenu(ctx, "rest-1")
	require.NoError(t, err)
	assert.False(t, ok)

	menu := []domain.MenuItem{{ID: "item-burger", RestaurantID: "rest-1", Name: "Burger", Price: 9.99}}
	require.NoError(t, cache.SetMenu(ctx, "rest-1", menu))
	assert.Equal(t, time.Minute, mr.TTL("menu:rest-1"))

	got, ok, err := cache.GetMenu(ctx, "rest-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Burger", got[0].Name)

	require.NoError(t, cache.Invalidate(ctx, "rest-1"))
	assert.False(t, mr.Exists("menu:rest-1"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.GetMenu(ctx, "rest-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDashboardStore_RecordAndStats(t *testing.T) {
	_, client := newMiniRedis(t)
	store := storage.NewDashboardStore(client)
	ctx := context.Background()
	now := time.Now()

	events := []domain.OrderEvent{
		{Type: domain.EventOrderCreated, OrderID: "o1", RestaurantID: "rest-1", Status: domain.StatusPending, TotalAmount: 19.98, Timestamp: now},
		{Type: domain.EventOrderCreated, OrderID: "o2", RestaurantID: "rest-1", Status: domain.StatusPending, TotalAmount: 5, Timestamp: now},
		{Type: domain.EventOrderStatusChanged, OrderID: "o1", RestaurantID: "rest-1", PreviousStatus: domain.StatusPending, Status: domain.StatusAccepted, TotalAmount: 19.98, Timestamp: now},
		{Type: domain.EventOrderStatusChanged, OrderID: "o1", RestaurantID: "rest-1", PreviousStatus: domain.StatusOnWay, Status: domain.StatusDelivered, TotalAmount: 19.98, Timestamp: now},
		{Type: "unknown", RestaurantID: "rest-1", Timestamp: now},
	}
	for _, event := range events {
		require.NoError(t, store.Record(ctx, event))
	}

	stats, err := store.Stats(ctx, "rest-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.OrdersToday)
	assert.InDelta(t, 19.98, stats.RevenueToday, 0.001)
	assert.Equal(t, int64(1), stats.CountsByStatus[domain.StatusPending])
	assert.Equal(t, int64(1), stats.CountsByStatus[domain.StatusAccepted])
	assert.Equal(t, int64(1), stats.CountsByStatus[domain.StatusDelivered])
	_, hasOnWay := stats.CountsByStatus[domain.StatusOnWay]
	assert.False(t, hasOnWay)
}

type capturingWriter struct {
	messages []kafka.Message
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestKafkaPublisher_KeysByOrder(t *testing.T) {
	writer := &capturingWriter{}
	publisher := storage.NewKafkaPublisher(writer)

	err := publisher.PublishOrderEvent(context.Background(), domain.OrderEvent{
		Type: domain.EventOrderCreated, OrderID: "o1", RestaurantID: "rest-1", Status: domain.StatusPending,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "o1", string(writer.messages[0].Key))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, "order_created", decoded["type"])
	assert.Equal(t, "o1", decoded["orderId"])
}

func TestDiskImageStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := storage.DiskImageStore{Dir: dir}

	url, err := store.Save(context.Background(), "cover.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cover.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "cover.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

type fakeS3 struct {
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	return &s3.PutObjectOutput{}, nil
}

func TestS3ImageStore_Save(t *testing.T) {
	client := &fakeS3{}
	store := storage.NewS3ImageStoreWithClient(client, "delivy-media", "eu-central-1")

	url, err := store.Save(context.Background(), "menu.jpg", "image/jpeg", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "https://delivy-media.s3.eu-central-1.amazonaws.com/images/menu.jpg", url)
	assert.Equal(t, "images/menu.jpg", aws.ToString(client.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(client.input.ContentType))
}

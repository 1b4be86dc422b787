package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cover_image TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10, 2) NOT NULL CHECK (price > 0),
		category TEXT NOT NULL DEFAULT '',
		image_uri TEXT,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		restaurant_id TEXT NOT NULL,
		restaurant_name TEXT NOT NULL,
		status TEXT NOT NULL,
		total_amount NUMERIC(10, 2) NOT NULL,
		courier_id TEXT,
		courier_name TEXT,
		qr_code BYTEA,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position INT NOT NULL,
		menu_item_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		price NUMERIC(10, 2) NOT NULL
	)`,
	"CREATE INDEX IF NOT EXISTS orders_restaurant_idx ON orders (restaurant_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS orders_pool_idx ON orders (status) WHERE courier_id IS NULL",
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", strings.SplitN(stmt, "\n", 2)[0], err)
		}
	}
	return nil
}

const orderColumns = `id, user_id, customer_name, restaurant_id, restaurant_name, status, total_amount,
	COALESCE(courier_id, ''), COALESCE(courier_name, ''), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (domain.Order, error) {
	var order domain.Order
	err := row.Scan(&order.ID, &order.UserID, &order.CustomerName, &order.RestaurantID, &order.RestaurantName,
		&order.Status, &order.TotalAmount, &order.CourierID, &order.CourierName, &order.CreatedAt)
	return order, err
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, customer_name, restaurant_id, restaurant_name, status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, order.ID, order.UserID, order.CustomerName, order.RestaurantID, order.RestaurantName,
		order.Status, order.TotalAmount).Scan(&order.CreatedAt); err != nil {
		return err
	}

	for i, item := range order.OrderItems {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, menu_item_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, order.ID, i, item.MenuItemID, item.Name, item.Quantity, item.Price); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("getOrder", "order %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.OrderItems = items[id]
	if order.OrderItems == nil {
		order.OrderItems = []domain.OrderItem{}
	}
	return &order, nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if query.CustomerID != "" {
		conds = append(conds, "user_id = "+arg(query.CustomerID))
	}
	if query.RestaurantID != "" {
		conds = append(conds, "restaurant_id = "+arg(query.RestaurantID))
	}
	var held []string
	if query.CourierID != "" {
		held = append(held, "courier_id = "+arg(query.CourierID))
	}
	if query.IncludeAvailable {
		held = append(held, "(status = 'READY' AND courier_id IS NULL)")
	}
	if len(held) > 0 {
		conds = append(conds, "("+strings.Join(held, " OR ")+")")
	}
	if query.ActiveOnly {
		conds = append(conds, "status NOT IN ('DELIVERED', 'CANCELLED')")
	}

	stmt := "SELECT " + orderColumns + " FROM orders"
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	stmt += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].OrderItems = items[orders[i].ID]
		if orders[i].OrderItems == nil {
			orders[i].OrderItems = []domain.OrderItem{}
		}
	}
	return orders, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT order_id, id, menu_item_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status = $3 WHERE id = $1 AND status = $2", id, from, to)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected == 1, err
}

func (r *PostgresRepository) ClaimOrder(ctx context.Context, id string, courier domain.Actor) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET status = 'PICKED_UP', courier_id = $2, courier_name = $3
		WHERE id = $1 AND status = 'READY' AND courier_id IS NULL
	`, id, courier.ID, courier.Name)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected == 1, err
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, id string, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE orders SET qr_code = $1 WHERE id = $2", qr, id)
	return err
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, id string) ([]byte, error) {
	var qr []byte
	err := r.DB.QueryRowContext(ctx, "SELECT qr_code FROM orders WHERE id = $1", id).Scan(&qr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("getQRCode", "order %s not found", id)
	}
	return qr, err
}

func (r *PostgresRepository) UpsertRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO restaurants (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING COALESCE(cover_image, ''), is_active, updated_at
	`, rest.ID, rest.Name).Scan(&rest.CoverImage, &rest.IsActive, &rest.UpdatedAt)
}

func (r *PostgresRepository) ListRestaurants(ctx context.Context, activeOnly bool) ([]domain.Restaurant, error) {
	stmt := "SELECT id, name, COALESCE(cover_image, ''), is_active, updated_at FROM restaurants"
	if activeOnly {
		stmt += " WHERE is_active"
	}
	rows, err := r.DB.QueryContext(ctx, stmt+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []domain.Restaurant{}
	for rows.Next() {
		var rest domain.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.CoverImage, &rest.IsActive, &rest.UpdatedAt); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

func (r *PostgresRepository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(cover_image, ''), is_active, updated_at
		FROM restaurants
		WHERE id = $1`, id).
		Scan(&rest.ID, &rest.Name, &rest.CoverImage, &rest.IsActive, &rest.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("getRestaurant", "restaurant %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *PostgresRepository) SetRestaurantActive(ctx context.Context, id string, active bool) (int64, error) {
	return r.exec(ctx, "UPDATE restaurants SET is_active = $1, updated_at = NOW() WHERE id = $2", active, id)
}

func (r *PostgresRepository) DeleteRestaurant(ctx context.Context, id string) (int64, error) {
	return r.exec(ctx, "DELETE FROM restaurants WHERE id = $1", id)
}

func (r *PostgresRepository) UpdateRestaurantImage(ctx context.Context, id, imageURL string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE restaurants SET cover_image = $1, updated_at = NOW() WHERE id = $2", imageURL, id)
	return err
}

func (r *PostgresRepository) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO menu_items (id, restaurant_id, name, description, price, category, image_uri, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		RETURNING created_at, updated_at
	`, item.ID, item.RestaurantID, item.Name, item.Description, item.Price, item.Category, item.ImageURI, item.IsAvailable).
		Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *PostgresRepository) ListMenuItems(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, restaurant_id, name, description, price, category, COALESCE(image_uri, ''), is_available, created_at, updated_at
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
			&item.Category, &item.ImageURI, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) (int64, error) {
	return r.exec(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, is_available = $5, updated_at = NOW()
		WHERE id = $6 AND restaurant_id = $7`,
		item.Name, item.Description, item.Price, item.Category, item.IsAvailable, item.ID, item.RestaurantID)
}

func (r *PostgresRepository) SetMenuItemAvailability(ctx context.Context, restaurantID, itemID string, available bool) (int64, error) {
	return r.exec(ctx,
		"UPDATE menu_items SET is_available = $1, updated_at = NOW() WHERE id = $2 AND restaurant_id = $3",
		available, itemID, restaurantID)
}

func (r *PostgresRepository) DeleteMenuItem(ctx context.Context, restaurantID, itemID string) (int64, error) {
	return r.exec(ctx, "DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2", itemID, restaurantID)
}

func (r *PostgresRepository) UpdateMenuItemImage(ctx context.Context, restaurantID, itemID, imageURL string) (int64, error) {
	return r.exec(ctx,
		"UPDATE menu_items SET image_uri = $1, updated_at = NOW() WHERE id = $2 AND restaurant_id = $3",
		imageURL, itemID, restaurantID)
}

func (r *PostgresRepository) exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	result, err := r.DB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the part of *pgxpool.Pool the store uses.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type MessageStore struct {
	pool PgxPool
}

func NewMessageStore(pool PgxPool) *MessageStore {
	return &MessageStore{pool: pool}
}

var messageSchema = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		chat_type TEXT NOT NULL,
		seq BIGINT NOT NULL,
		content TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		is_from_user BOOLEAN NOT NULL DEFAULT FALSE,
		client_id TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (order_id, chat_type, seq)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS messages_client_idx
		ON messages (order_id, chat_type, client_id) WHERE client_id IS NOT NULL`,
}

func (s *MessageStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range messageSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", strings.SplitN(stmt, "\n", 2)[0], err)
		}
	}
	return nil
}

const messageColumns = "id, order_id, chat_type, seq, content, sender_id, is_from_user, COALESCE(client_id, ''), created_at"

func scanMessage(row pgx.Row) (domain.Message, error) {
	var msg domain.Message
	err := row.Scan(&msg.ID, &msg.OrderID, &msg.ChatType, &msg.Seq, &msg.Content,
		&msg.SenderID, &msg.IsFromUser, &msg.ClientID, &msg.Timestamp)
	return msg, err
}

// Append serializes writers of one partition on a transaction-scoped advisory lock, so
// seq is gap-free and matches commit order.
func (s *MessageStore) Append(ctx context.Context, msg *domain.Message) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", msg.OrderID+"/"+string(msg.ChatType)); err != nil {
		return false, fmt.Errorf("lock partition: %w", err)
	}

	if msg.ClientID != "" {
		existing, err := scanMessage(tx.QueryRow(ctx,
			"SELECT "+messageColumns+" FROM messages WHERE order_id = $1 AND chat_type = $2 AND client_id = $3",
			msg.OrderID, string(msg.ChatType), msg.ClientID))
		switch {
		case err == nil:
			existing.Timestamp = existing.Timestamp.UTC()
			*msg = existing
			return false, tx.Commit(ctx)
		case !errors.Is(err, pgx.ErrNoRows):
			return false, err
		}
	}

	// clock_timestamp is read after the lock, so created_at grows with seq.
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (id, order_id, chat_type, seq, content, sender_id, is_from_user, client_id, created_at)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE order_id = $2 AND chat_type = $3),
			$4, $5, $6, NULLIF($7, ''), clock_timestamp())
		RETURNING seq, created_at`,
		msg.ID, msg.OrderID, string(msg.ChatType), msg.Content, msg.SenderID, msg.IsFromUser, msg.ClientID).
		Scan(&msg.Seq, &msg.Timestamp)
	if err != nil {
		return false, err
	}
	msg.Timestamp = msg.Timestamp.UTC()
	return true, tx.Commit(ctx)
}

func (s *MessageStore) History(ctx context.Context, orderID string, chatType domain.ChatType, since time.Time) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE order_id = $1 AND chat_type = $2 AND created_at >= $3 ORDER BY seq",
		orderID, string(chatType), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msg.Timestamp = msg.Timestamp.UTC()
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

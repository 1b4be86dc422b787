// Package store keeps the device-local state: who is logged in, the cart, and the
// read-through caches for orders, menus and chat history. Everything lives in a single
// SQLite key-value table; values are JSON.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	keyIdentity    = "identity"
	keyCart        = "cart"
	prefixMenu     = "menu:"
	prefixOrders   = "orders:"
	prefixMessages = "messages:"
	prefixRead     = "read:"
)

type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     string
	UpdatedAt time.Time
}

type KV struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite file at path. ":memory:" works for tests.
func Open(path string) (*KV, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	// One connection keeps ":memory:" databases intact and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &KV{db: db}, nil
}

func (s *KV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get decodes the value under key into out. It reports false when the key is absent.
func (s *KV) Get(key string, out any) (bool, error) {
	var e Entry
	err := s.db.First(&e, "entry_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(e.Value), out); err != nil {
		log.Warnf("Discarding unreadable local value %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (s *KV) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	e := Entry{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *KV) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.Where("entry_key IN ?", keys).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *KV) DeletePrefix(prefix string) error {
	if err := s.db.Where("entry_key LIKE ?", prefix+"%").Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("delete %s*: %w", prefix, err)
	}
	return nil
}

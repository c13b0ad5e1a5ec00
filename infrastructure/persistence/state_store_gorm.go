package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateEntry is the gorm model of one tracker_state row.
type StateEntry struct {
	Key       string    `gorm:"column:state_key;primaryKey;size:191"`
	Value     string    `gorm:"column:value;type:longtext;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (StateEntry) TableName() string { return "tracker_state" }

// EnsureStateSchemaGorm migrates tracker_state through gorm.
func EnsureStateSchemaGorm(db *gorm.DB) error {
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return fmt.Errorf("migrate tracker_state: %w", err)
	}
	return nil
}

// StateStoreGorm stores tracker keys through gorm, used for MySQL.
type StateStoreGorm struct {
	db     *gorm.DB
	prefix string
}

func NewStateStoreGorm(db *gorm.DB, prefix string) *StateStoreGorm {
	return &StateStoreGorm{db: db, prefix: prefix}
}

func (s *StateStoreGorm) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var entry StateEntry
	err := s.db.WithContext(ctx).Where("state_key = ?", prefixedKey(s.prefix, key)).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

func (s *StateStoreGorm) Save(ctx context.Context, key string, value []byte) error {
	entry := StateEntry{Key: prefixedKey(s.prefix, key), Value: string(value), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *StateStoreGorm) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

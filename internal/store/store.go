// Package store persists conversations keyed by normalized phone
// number. Callers are expected to normalize before calling; the store
// treats the key as opaque.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vertexaitech/supportbot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationStore loads and saves conversation state. Save replaces
// the whole row; there is no version check, so concurrent handlers for
// the same phone are last-write-wins.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, phone string) (*models.Conversation, error)
	Save(ctx context.Context, conv *models.Conversation) error
}

// GormStore is the PostgreSQL-backed ConversationStore.
type GormStore struct {
	db *gorm.DB
}

// New creates a GormStore.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetOrCreate returns the conversation for phone, inserting a fresh
// pending one when none exists.
func (s *GormStore) GetOrCreate(ctx context.Context, phone string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("phone_number = ?", phone).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv = models.Conversation{
		PhoneNumber: phone,
		NameState:   models.NameNotAsked,
		Turns:       models.TurnList{},
		Status:      models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

// Save upserts the full conversation row keyed by phone number.
func (s *GormStore) Save(ctx context.Context, conv *models.Conversation) error {
	conv.UpdatedAt = time.Now().UTC()
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone_number"}},
			UpdateAll: true,
		}).
		Create(conv).Error
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

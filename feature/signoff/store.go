package signoff

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrRunNotFound is returned when a batch id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store persists batches and their cell results.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the schema and returns a Store on db.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Batch{}, &CellResult{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sign-off tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Save inserts a finished batch with all of its results.
func (s *Store) Save(ctx context.Context, b *Batch) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to save batch %s: %w", b.ID, err)
	}
	return nil
}

// List returns the most recent batches first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Batch, error) {
	var batches []Batch
	q := s.db.WithContext(ctx).Preload("Results", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

// Get loads a single batch.
func (s *Store) Get(ctx context.Context, id string) (*Batch, error) {
	var b Batch
	err := s.db.WithContext(ctx).Preload("Results", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", id, err)
	}
	return &b, nil
}

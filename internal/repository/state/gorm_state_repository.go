package state

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) StateRepository {
	return &gormStateRepository{db: db}
}

func (r *gormStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("invalid state key")
	}

	var record Record
	err := r.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		log.Printf("[StateRepository] Database error loading key %q: %v", key, err)
		return nil, errors.New("database error loading state")
	}

	return record.Value, nil
}

func (r *gormStateRepository) Save(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("invalid state key")
	}

	record := Record{Key: key, Value: value}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		log.Printf("[StateRepository] Database error saving key %q: %v", key, err)
		return errors.New("database error saving state")
	}

	return nil
}

func (r *gormStateRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("invalid state key")
	}

	result := r.db.WithContext(ctx).Where("key = ?", key).Delete(&Record{})
	if result.Error != nil {
		log.Printf("[StateRepository] Database error deleting key %q: %v", key, result.Error)
		return errors.New("database error deleting state")
	}

	// Deleting an absent key is not an error.
	return nil
}

package repo

import (
	"context"

	"gorm.io/gorm"

	"repairdesk/internal/models"
)

type HistoryStore struct{ db *gorm.DB }

func NewHistoryStore(db *gorm.DB) *HistoryStore { return &HistoryStore{db: db} }

func (s *HistoryStore) Append(ctx context.Context, c *models.StatusChange) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *HistoryStore) ListForDevice(ctx context.Context, deviceID string) ([]models.StatusChange, error) {
	var rows []models.StatusChange
	if err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

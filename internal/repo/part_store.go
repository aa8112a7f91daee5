package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

type PartStore struct{ db *gorm.DB }

func NewPartStore(db *gorm.DB) *PartStore { return &PartStore{db: db} }

func (s *PartStore) Create(ctx context.Context, p *models.RepairPart) error {
	if p.Status == "" {
		p.Status = string(workflow.PartNeeded)
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *PartStore) ListForDevice(ctx context.Context, deviceID string) ([]models.RepairPart, error) {
	var rows []models.RepairPart
	if err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetStatus переводит запчасти устройства в статус; только строки этого устройства.
func (s *PartStore) SetStatus(ctx context.Context, deviceID string, ids []string, to workflow.PartStatus, actor, note string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	upd := map[string]any{
		"status":     string(to),
		"updated_by": actor,
	}
	if strings.TrimSpace(note) != "" {
		upd["notes"] = note
	}
	res := s.db.WithContext(ctx).Model(&models.RepairPart{}).
		Where("device_id = ? AND id IN ?", deviceID, ids).
		Updates(upd)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

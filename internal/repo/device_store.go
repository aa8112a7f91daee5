package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

var (
	ErrNotFound = errors.New("device not found")
	ErrNoRows   = errors.New("no rows matched")
)

type DeviceStore struct{ db *gorm.DB }

func NewDeviceStore(db *gorm.DB) *DeviceStore { return &DeviceStore{db: db} }

func (s *DeviceStore) Create(ctx context.Context, d *models.Device) error {
	if d.Status == "" {
		d.Status = string(workflow.StatusAssigned)
	}
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *DeviceStore) GetByID(ctx context.Context, id string) (*models.Device, error) {
	var d models.Device
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListFilter — фильтр списка устройств (по статусу и технику).
type ListFilter struct {
	Status     string
	AssignedTo string
	Query      string
	Limit      int
}

func (s *DeviceStore) List(ctx context.Context, f ListFilter) ([]models.Device, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	q := s.db.WithContext(ctx).Order("updated_at desc").Limit(limit)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if v := strings.TrimSpace(f.Query); v != "" {
		like := "%" + v + "%"
		q = q.Where("serial_number LIKE ? OR brand LIKE ? OR model LIKE ? OR customer_name LIKE ?", like, like, like, like)
	}
	var rows []models.Device
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus — коллаборатор обновления статуса: false, если строка не найдена.
// Заметки живут в журнале смен статуса, в карточку не пишутся.
func (s *DeviceStore) UpdateStatus(ctx context.Context, id string, to workflow.Status, _ string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Device{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

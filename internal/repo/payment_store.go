package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

type PaymentStore struct{ db *gorm.DB }

func NewPaymentStore(db *gorm.DB) *PaymentStore { return &PaymentStore{db: db} }

func (s *PaymentStore) Create(ctx context.Context, ps ...*models.Payment) error {
	if len(ps) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(ps).Error
}

func (s *PaymentStore) ListForDevice(ctx context.Context, deviceID, status string) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Where("device_id = ?", deviceID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.Payment
	if err := q.Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Summary — суммы по статусам (completed/pending/failed).
func (s *PaymentStore) Summary(ctx context.Context, deviceID string) (workflow.PaymentSummary, error) {
	var rows []struct {
		Status string
		Total  float64
	}
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Where("device_id = ?", deviceID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return workflow.PaymentSummary{}, err
	}
	var t tally
	for _, r := range rows {
		t.add(r.Status, r.Total)
	}
	return t.summary(), nil
}

// tally копит суммы в копейках, чтобы погрешность float не доживала до проверки выдачи.
type tally struct{ paid, pending, failed int64 }

func (t *tally) add(status string, amount float64) {
	switch status {
	case models.PaymentCompleted:
		t.paid += workflow.Cents(amount)
	case models.PaymentPending:
		t.pending += workflow.Cents(amount)
	case models.PaymentFailed:
		t.failed += workflow.Cents(amount)
	}
}

func (t tally) summary() workflow.PaymentSummary {
	return workflow.PaymentSummary{
		TotalPaid:    workflow.FromCents(t.paid),
		TotalPending: workflow.FromCents(t.pending),
		TotalFailed:  workflow.FromCents(t.failed),
	}
}

// Complete закрывает pending-платёж.
func (s *PaymentStore) Complete(ctx context.Context, id, method, reference string, paidAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Updates(map[string]any{
			"status":    models.PaymentCompleted,
			"method":    method,
			"reference": reference,
			"paid_at":   paidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

// SetPendingAmount уменьшает остаток по pending-платежу после частичной оплаты.
func (s *PaymentStore) SetPendingAmount(ctx context.Context, id string, amount float64) error {
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Update("amount", amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

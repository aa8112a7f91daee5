package repair

import (
	"context"
	"time"

	"repairdesk/internal/models"
	"repairdesk/internal/repo"
	"repairdesk/internal/workflow"
)

// Контракты внешних коллабораторов. Реализации — internal/repo (gorm и in-memory).

type Devices interface {
	Create(ctx context.Context, d *models.Device) error
	GetByID(ctx context.Context, id string) (*models.Device, error)
	List(ctx context.Context, f repo.ListFilter) ([]models.Device, error)
}

// StatusUpdater — updateStatus(deviceId, newStatus, notes) -> success.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, deviceID string, to workflow.Status, notes string) (bool, error)
}

type Parts interface {
	Create(ctx context.Context, p *models.RepairPart) error
	ListForDevice(ctx context.Context, deviceID string) ([]models.RepairPart, error)
	SetStatus(ctx context.Context, deviceID string, ids []string, to workflow.PartStatus, actor, note string) (int, error)
}

type Payments interface {
	Summary(ctx context.Context, deviceID string) (workflow.PaymentSummary, error)
	ListForDevice(ctx context.Context, deviceID, status string) ([]models.Payment, error)
	Create(ctx context.Context, ps ...*models.Payment) error
	Complete(ctx context.Context, id, method, reference string, paidAt time.Time) error
	SetPendingAmount(ctx context.Context, id string, amount float64) error
}

type History interface {
	Append(ctx context.Context, c *models.StatusChange) error
	ListForDevice(ctx context.Context, deviceID string) ([]models.StatusChange, error)
}

// Cache — кэш снапшотов для отрисовки списка действий (может быть устаревшим).
type Cache interface {
	Load(ctx context.Context, deviceID string, dst any) (bool, error)
	Store(ctx context.Context, deviceID string, v any) error
	Invalidate(ctx context.Context, deviceID string) error
}

// Observer — метрики по действиям.
type Observer interface {
	ObserveAction(action, result string, took time.Duration)
	ObserveMessage(result string)
}

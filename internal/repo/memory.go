package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

// Memory — in-memory хранилище (режим без БД и тесты).
// Отдаёт те же контракты, что и gorm-сторы, через Devices()/Parts()/Payments()/History().
type Memory struct {
	mu       sync.RWMutex
	devices  map[string]*models.Device
	parts    map[string]*models.RepairPart
	payments map[string]*models.Payment
	history  []models.StatusChange
	seq      uint
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		devices:  make(map[string]*models.Device),
		parts:    make(map[string]*models.RepairPart),
		payments: make(map[string]*models.Payment),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type (
	MemDevices  struct{ m *Memory }
	MemParts    struct{ m *Memory }
	MemPayments struct{ m *Memory }
	MemHistory  struct{ m *Memory }
)

func (m *Memory) Devices() *MemDevices   { return &MemDevices{m} }
func (m *Memory) Parts() *MemParts       { return &MemParts{m} }
func (m *Memory) Payments() *MemPayments { return &MemPayments{m} }
func (m *Memory) History() *MemHistory   { return &MemHistory{m} }

/* ───── devices ───── */

func (s *MemDevices) Create(_ context.Context, d *models.Device) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = string(workflow.StatusAssigned)
	}
	now := s.m.now()
	d.CreatedAt, d.UpdatedAt = now, now
	cp := *d
	s.m.devices[d.ID] = &cp
	return nil
}

func (s *MemDevices) GetByID(_ context.Context, id string) (*models.Device, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	d, ok := s.m.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemDevices) List(_ context.Context, f ListFilter) ([]models.Device, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Device, 0, len(s.m.devices))
	for _, d := range s.m.devices {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && d.AssignedTo != f.AssignedTo {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(d.SerialNumber+" "+d.Brand+" "+d.Model+" "+d.CustomerName), q) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemDevices) UpdateStatus(_ context.Context, id string, to workflow.Status, _ string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	d, ok := s.m.devices[id]
	if !ok {
		return false, nil
	}
	d.Status = string(to)
	d.UpdatedAt = s.m.now()
	return true, nil
}

/* ───── parts ───── */

func (s *MemParts) Create(_ context.Context, p *models.RepairPart) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = string(workflow.PartNeeded)
	}
	now := s.m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	s.m.parts[p.ID] = &cp
	return nil
}

func (s *MemParts) ListForDevice(_ context.Context, deviceID string) ([]models.RepairPart, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []models.RepairPart
	for _, p := range s.m.parts {
		if p.DeviceID == deviceID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemParts) SetStatus(_ context.Context, deviceID string, ids []string, to workflow.PartStatus, actor, note string) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	n := 0
	for _, id := range ids {
		p, ok := s.m.parts[id]
		if !ok || p.DeviceID != deviceID {
			continue
		}
		p.Status = string(to)
		p.UpdatedBy = actor
		if strings.TrimSpace(note) != "" {
			p.Notes = note
		}
		p.UpdatedAt = s.m.now()
		n++
	}
	return n, nil
}

/* ───── payments ───── */

func (s *MemPayments) Create(_ context.Context, ps ...*models.Payment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range ps {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		now := s.m.now()
		p.CreatedAt, p.UpdatedAt = now, now
		cp := *p
		s.m.payments[p.ID] = &cp
	}
	return nil
}

func (s *MemPayments) ListForDevice(_ context.Context, deviceID, status string) ([]models.Payment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []models.Payment
	for _, p := range s.m.payments {
		if p.DeviceID != deviceID || (status != "" && p.Status != status) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemPayments) Summary(ctx context.Context, deviceID string) (workflow.PaymentSummary, error) {
	rows, _ := s.ListForDevice(ctx, deviceID, "")
	var t tally
	for _, p := range rows {
		t.add(p.Status, p.Amount)
	}
	return t.summary(), nil
}

func (s *MemPayments) Complete(_ context.Context, id, method, reference string, paidAt time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.payments[id]
	if !ok || p.Status != models.PaymentPending {
		return ErrNoRows
	}
	p.Status = models.PaymentCompleted
	p.Method = method
	p.Reference = reference
	p.PaidAt = paidAt
	p.UpdatedAt = s.m.now()
	return nil
}

func (s *MemPayments) SetPendingAmount(_ context.Context, id string, amount float64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.payments[id]
	if !ok || p.Status != models.PaymentPending {
		return ErrNoRows
	}
	p.Amount = amount
	p.UpdatedAt = s.m.now()
	return nil
}

/* ───── history ───── */

func (s *MemHistory) Append(_ context.Context, c *models.StatusChange) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.seq++
	c.ID = s.m.seq
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.m.now()
	}
	s.m.history = append(s.m.history, *c)
	return nil
}

func (s *MemHistory) ListForDevice(_ context.Context, deviceID string) ([]models.StatusChange, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []models.StatusChange
	for _, c := range s.m.history {
		if c.DeviceID == deviceID {
			out = append(out, c)
		}
	}
	return out, nil
}

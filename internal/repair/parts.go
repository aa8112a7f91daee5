package repair

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

// Статусы, в которых техник может дозаказать запчасти.
var addPartsFrom = map[workflow.Status]bool{
	workflow.StatusDiagnosisStarted: true,
	workflow.StatusAwaitingParts:    true,
	workflow.StatusInRepair:         true,
}

// AddParts — техник дозаказывает запчасти по ходу диагностики или ремонта.
func (s *Service) AddParts(ctx context.Context, deviceID string, u workflow.User, in []PartInput) ([]models.RepairPart, error) {
	switch u.Role {
	case workflow.RoleTechnician, workflow.RoleAdmin:
	case workflow.RoleCustomerCare, workflow.RoleUnknown:
		return nil, fmt.Errorf("%w: parts are requested by the technician", ErrActionNotAllowed)
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: no parts given", ErrInvalidInput)
	}
	parts, err := partModels(in, u.ID)
	if err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if u.Role == workflow.RoleTechnician && snap.Device.AssignedTo != u.ID {
		return nil, fmt.Errorf("%w: device is assigned to another technician", ErrActionNotAllowed)
	}
	status := workflow.Status(snap.Device.Status)
	if !addPartsFrom[status] {
		return nil, fmt.Errorf("%w: parts cannot be added while device is %s", ErrActionNotAllowed, status)
	}
	if err := s.createParts(ctx, deviceID, parts); err != nil {
		return nil, err
	}
	s.invalidate(ctx, deviceID)
	s.record(ctx, deviceID, status, status, "add-parts", u, "", map[string]any{"parts": len(parts)})
	s.log.WithFields(logrus.Fields{"device_id": deviceID, "parts": len(parts), "status": status}).Info("parts requested")

	out := make([]models.RepairPart, 0, len(parts))
	for _, p := range parts {
		out = append(out, *p)
	}
	return out, nil
}

// AcceptParts — клиентская служба подтверждает заказанные запчасти.
func (s *Service) AcceptParts(ctx context.Context, deviceID string, u workflow.User, ids []string) (int, error) {
	return s.moveParts(ctx, deviceID, u, ids, workflow.PartAccepted, "")
}

// RejectParts возвращает запчасти в needed с причиной.
func (s *Service) RejectParts(ctx context.Context, deviceID string, u workflow.User, ids []string, reason string) (int, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	return s.moveParts(ctx, deviceID, u, ids, workflow.PartNeeded, "Rejected by customer care: "+reason)
}

func (s *Service) moveParts(ctx context.Context, deviceID string, u workflow.User, ids []string, to workflow.PartStatus, note string) (int, error) {
	if !careOrAdmin(u) {
		return 0, fmt.Errorf("%w: parts are approved by customer care", ErrActionNotAllowed)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no parts selected", ErrInvalidInput)
	}
	if _, err := s.load(ctx, deviceID); err != nil {
		return 0, err
	}
	n, err := s.parts.SetStatus(ctx, deviceID, ids, to, u.ID, note)
	if err != nil {
		return 0, fmt.Errorf("update parts: %w", err)
	}
	s.invalidate(ctx, deviceID)
	s.log.WithFields(logrus.Fields{"device_id": deviceID, "parts": n, "to": to}).Info("parts updated")
	return n, nil
}

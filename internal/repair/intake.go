package repair

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

// DeviceInput — приём устройства в ремонт.
type DeviceInput struct {
	Brand         string      `json:"brand"`
	Model         string      `json:"model"`
	SerialNumber  string      `json:"serial_number"`
	CustomerID    string      `json:"customer_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	AssignedTo    string      `json:"assigned_to"`
	Remarks       string      `json:"remarks"`
	RepairCost    float64     `json:"repair_cost"`
	DepositAmount float64     `json:"deposit_amount"`
	Parts         []PartInput `json:"parts"`
}

// PartInput — запчасть под ремонт. Status: needed (по умолчанию) или ordered.
type PartInput struct {
	SparePartID string  `json:"spare_part_id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	Status      string  `json:"status"`
}

func (p PartInput) model(actor string) (*models.RepairPart, error) {
	if strings.TrimSpace(p.Name) == "" || p.Quantity < 0 || p.UnitCost < 0 {
		return nil, fmt.Errorf("%w: part needs a name and non-negative quantity and cost", ErrInvalidInput)
	}
	st := workflow.PartNeeded
	if p.Status != "" {
		v, err := workflow.ParsePartStatus(p.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if !v.Pending() {
			return nil, fmt.Errorf("%w: new parts start as needed or ordered", ErrInvalidInput)
		}
		st = v
	}
	qty := p.Quantity
	if qty == 0 {
		qty = 1
	}
	return &models.RepairPart{
		SparePartID:    p.SparePartID,
		Name:           strings.TrimSpace(p.Name),
		QuantityNeeded: qty,
		CostPerUnit:    p.UnitCost,
		Status:         string(st),
		UpdatedBy:      actor,
	}, nil
}

func partModels(in []PartInput, actor string) ([]*models.RepairPart, error) {
	out := make([]*models.RepairPart, 0, len(in))
	for _, p := range in {
		m, err := p.model(actor)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Service) createParts(ctx context.Context, deviceID string, parts []*models.RepairPart) error {
	for _, p := range parts {
		p.DeviceID = deviceID
		if err := s.parts.Create(ctx, p); err != nil {
			return fmt.Errorf("create part: %w", err)
		}
	}
	return nil
}

// Register создаёт устройство в статусе assigned вместе с заказанными запчастями.
func (s *Service) Register(ctx context.Context, u workflow.User, in DeviceInput) (*Details, error) {
	if !careOrAdmin(u) {
		return nil, fmt.Errorf("%w: devices are registered by customer care", ErrActionNotAllowed)
	}
	if strings.TrimSpace(in.Brand) == "" && strings.TrimSpace(in.Model) == "" {
		return nil, fmt.Errorf("%w: brand or model is required", ErrInvalidInput)
	}
	if in.RepairCost < 0 || in.DepositAmount < 0 {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
	}
	parts, err := partModels(in.Parts, u.ID)
	if err != nil {
		return nil, err
	}

	d := &models.Device{
		Brand:         strings.TrimSpace(in.Brand),
		Model:         strings.TrimSpace(in.Model),
		SerialNumber:  strings.TrimSpace(in.SerialNumber),
		CustomerID:    in.CustomerID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		Status:        string(workflow.StatusAssigned),
		AssignedTo:    in.AssignedTo,
		Remarks:       in.Remarks,
		RepairCost:    in.RepairCost,
		DepositAmount: in.DepositAmount,
	}
	if err := s.devices.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	if err := s.createParts(ctx, d.ID, parts); err != nil {
		return nil, err
	}
	s.record(ctx, d.ID, "", workflow.StatusAssigned, "register", u, in.Remarks, nil)
	s.log.WithFields(logrus.Fields{"device_id": d.ID, "assigned_to": d.AssignedTo}).Info("device registered")
	return s.Details(ctx, d.ID, u)
}

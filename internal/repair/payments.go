package repair

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

// PaymentInput — оплата, принятая на стойке.
type PaymentInput struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

// createPendingPayments — счёт клиенту после завершения ремонта.
// Если ожидающие платежи уже есть, ничего не создаём.
func (s *Service) createPendingPayments(ctx context.Context, d *models.Device) error {
	pending, err := s.payments.ListForDevice(ctx, d.ID, models.PaymentPending)
	if err != nil {
		return fmt.Errorf("list pending payments: %w", err)
	}
	if len(pending) > 0 {
		return nil
	}
	var rows []*models.Payment
	if d.DepositAmount > 0 {
		rows = append(rows, &models.Payment{
			DeviceID: d.ID, CustomerID: d.CustomerID, Amount: d.DepositAmount,
			PaymentType: models.PaymentTypeDeposit, Status: models.PaymentPending,
			Notes: "Deposit for repair",
		})
	}
	if balance := workflow.Cents(d.RepairCost) - workflow.Cents(d.DepositAmount); balance > 0 {
		rows = append(rows, &models.Payment{
			DeviceID: d.ID, CustomerID: d.CustomerID, Amount: workflow.FromCents(balance),
			PaymentType: models.PaymentTypePayment, Status: models.PaymentPending,
			Notes: "Repair cost",
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return s.payments.Create(ctx, rows...)
}

// RecordPayment гасит ожидающие платежи (старые первыми). Строку, на которую денег
// не хватило, гасим частично: оплаченная часть уходит отдельной completed-строкой,
// в pending остаётся долг. Переплата — отдельной строкой.
func (s *Service) RecordPayment(ctx context.Context, deviceID string, u workflow.User, in PaymentInput) (workflow.PaymentSummary, error) {
	if !careOrAdmin(u) {
		return workflow.PaymentSummary{}, fmt.Errorf("%w: payments are taken by customer care", ErrActionNotAllowed)
	}
	left := workflow.Cents(in.Amount)
	if left <= 0 {
		return workflow.PaymentSummary{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = "cash"
	}
	snap, err := s.load(ctx, deviceID)
	if err != nil {
		return workflow.PaymentSummary{}, err
	}
	pending, err := s.payments.ListForDevice(ctx, deviceID, models.PaymentPending)
	if err != nil {
		return workflow.PaymentSummary{}, fmt.Errorf("list pending payments: %w", err)
	}
	now := s.now()
	paid := func(amount int64, kind, notes string) error {
		return s.payments.Create(ctx, &models.Payment{
			DeviceID: deviceID, CustomerID: snap.Device.CustomerID, Amount: workflow.FromCents(amount),
			Method: method, PaymentType: kind, Status: models.PaymentCompleted,
			Reference: in.Reference, Notes: notes, PaidAt: now,
		})
	}
	for _, p := range pending {
		if left == 0 {
			break
		}
		due := workflow.Cents(p.Amount)
		if due <= left {
			if err := s.payments.Complete(ctx, p.ID, method, in.Reference, now); err != nil {
				return workflow.PaymentSummary{}, fmt.Errorf("complete payment %s: %w", p.ID, err)
			}
			left -= due
			continue
		}
		if err := paid(left, p.PaymentType, p.Notes); err != nil {
			return workflow.PaymentSummary{}, fmt.Errorf("create payment: %w", err)
		}
		if err := s.payments.SetPendingAmount(ctx, p.ID, workflow.FromCents(due-left)); err != nil {
			return workflow.PaymentSummary{}, fmt.Errorf("reduce payment %s: %w", p.ID, err)
		}
		left = 0
	}
	if left > 0 {
		if err := paid(left, models.PaymentTypePayment, ""); err != nil {
			return workflow.PaymentSummary{}, fmt.Errorf("create payment: %w", err)
		}
	}
	s.invalidate(ctx, deviceID)
	s.log.WithFields(logrus.Fields{"device_id": deviceID, "amount": in.Amount, "method": method}).Info("payment recorded")
	return s.payments.Summary(ctx, deviceID)
}

func careOrAdmin(u workflow.User) bool {
	switch u.Role {
	case workflow.RoleAdmin, workflow.RoleCustomerCare:
		return true
	case workflow.RoleTechnician, workflow.RoleUnknown:
		return false
	}
	return false
}

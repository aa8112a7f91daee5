package repair

import (
	"repairdesk/internal/models"
	"repairdesk/internal/workflow"
)

// Snapshot — строки, загруженные из хранилища для одного устройства.
type Snapshot struct {
	Device   models.Device           `json:"device"`
	Parts    []models.RepairPart     `json:"parts"`
	Payments workflow.PaymentSummary `json:"payments"`
}

// State — проекция для таблицы переходов.
func (s *Snapshot) State() workflow.Snapshot {
	out := workflow.Snapshot{
		Device: workflow.DeviceState{
			ID:            s.Device.ID,
			Status:        workflow.Status(s.Device.Status),
			AssignedTo:    s.Device.AssignedTo,
			CustomerID:    s.Device.CustomerID,
			CustomerPhone: s.Device.CustomerPhone,
		},
		Payments: s.Payments,
	}
	for _, p := range s.Parts {
		out.Parts = append(out.Parts, workflow.Part{
			ID:       p.ID,
			Status:   workflow.PartStatus(p.Status),
			Quantity: p.QuantityNeeded,
			UnitCost: p.CostPerUnit,
		})
	}
	return out
}

func (s *Snapshot) pendingPartIDs() []string {
	var ids []string
	for _, p := range s.Parts {
		if workflow.PartStatus(p.Status).Pending() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (s *Snapshot) pendingPartsByStatus() map[workflow.PartStatus][]string {
	out := make(map[workflow.PartStatus][]string)
	for _, p := range s.Parts {
		if st := workflow.PartStatus(p.Status); st.Pending() {
			out[st] = append(out[st], p.ID)
		}
	}
	return out
}

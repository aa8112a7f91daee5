package workflow

// DeviceState — то, что нужно таблице переходов от карточки устройства.
type DeviceState struct {
	ID            string
	Status        Status
	AssignedTo    string
	CustomerID    string
	CustomerPhone string
}

// Part — запчасть ремонта в разрезе статуса.
type Part struct {
	ID       string
	Status   PartStatus
	Quantity int
	UnitCost float64
}

// PaymentSummary — агрегаты платежей по устройству.
type PaymentSummary struct {
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
	TotalFailed  float64 `json:"total_failed"`
}

// Snapshot — последнее известное состояние, по которому считаются действия.
// Может быть устаревшим: источник истины — хранилище.
type Snapshot struct {
	Device   DeviceState
	Parts    []Part
	Payments PaymentSummary
}

// WithStatus возвращает копию снапшота с другим статусом устройства.
func (s Snapshot) WithStatus(st Status) Snapshot {
	out := s
	out.Device.Status = st
	out.Parts = append([]Part(nil), s.Parts...)
	return out
}

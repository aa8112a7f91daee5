package workflow

import (
	"fmt"
	"math"
	"strings"
)

// Result — итог проверки; ошибкой не является, сообщение показывается пользователю.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func ok() Result { return Result{Valid: true} }

func fail(format string, args ...any) Result {
	return Result{Valid: false, Message: fmt.Sprintf(format, args...)}
}

// Predicate — проверка поверх снапшота.
type Predicate func(Snapshot) Result

func countPending(parts []Part) int {
	n := 0
	for _, p := range parts {
		if p.Status.Pending() {
			n++
		}
	}
	return n
}

// PartsReady: список не пуст и ни одна запчасть не в needed/ordered.
func PartsReady(parts []Part) Result {
	if len(parts) == 0 {
		return fail("No parts have been requested for this repair.")
	}
	if n := countPending(parts); n > 0 {
		return fail("Cannot start repair: %d part(s) are still pending. Mark them as received first.", n)
	}
	return ok()
}

// PartsPending: есть что принимать (гейт для "Receive Spare Parts").
func PartsPending(parts []Part) Result {
	if len(parts) == 0 {
		return fail("No parts have been requested yet.")
	}
	if countPending(parts) == 0 {
		return fail("All parts have already been received.")
	}
	return ok()
}

// PaymentsSettled: выдача клиенту только при нулевом остатке pending.
func PaymentsSettled(sum PaymentSummary) Result {
	if Cents(sum.TotalPending) > 0 {
		return fail("Cannot hand over device: %.2f in pending payments must be completed first.", sum.TotalPending)
	}
	return ok()
}

// CustomerReachable: у устройства есть клиент с телефоном.
func CustomerReachable(d DeviceState) Result {
	if strings.TrimSpace(d.CustomerID) == "" {
		return fail("No customer assigned to this device.")
	}
	if strings.TrimSpace(d.CustomerPhone) == "" {
		return fail("Customer has no phone number on file.")
	}
	return ok()
}

// Progress — сколько запчастей готово.
type Progress struct {
	Total     int     `json:"total"`
	Ready     int     `json:"ready"`
	Pending   int     `json:"pending"`
	Percent   int     `json:"percent"`
	TotalCost float64 `json:"total_cost"`
}

func PartsProgress(parts []Part) Progress {
	p := Progress{Total: len(parts)}
	for _, part := range parts {
		switch {
		case part.Status.Ready():
			p.Ready++
		case part.Status.Pending():
			p.Pending++
		}
		p.TotalCost += part.UnitCost * float64(part.Quantity)
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Ready) / float64(p.Total) * 100))
	}
	return p
}

// адаптеры под Predicate

func partsReady(s Snapshot) Result      { return PartsReady(s.Parts) }
func partsPending(s Snapshot) Result    { return PartsPending(s.Parts) }
func paymentsSettled(s Snapshot) Result { return PaymentsSettled(s.Payments) }
func customerReachable(s Snapshot) Result {
	return CustomerReachable(s.Device)
}

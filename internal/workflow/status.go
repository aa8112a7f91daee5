package workflow

import (
	"fmt"
	"strings"
)

// Status — текущий статус ремонта устройства.
type Status string

const (
	StatusAssigned         Status = "assigned"
	StatusDiagnosisStarted Status = "diagnosis-started"
	StatusAwaitingParts    Status = "awaiting-parts"
	StatusPartsArrived     Status = "parts-arrived"
	StatusInRepair         Status = "in-repair"
	StatusTesting          Status = "reassembled-testing"
	StatusRepairComplete   Status = "repair-complete"
	StatusReturnedToCare   Status = "returned-to-customer-care"
	StatusDone             Status = "done"
	StatusFailed           Status = "failed"
)

// порядок жизненного цикла (для прогресса и списков)
var allStatuses = []Status{
	StatusAssigned,
	StatusDiagnosisStarted,
	StatusAwaitingParts,
	StatusPartsArrived,
	StatusInRepair,
	StatusTesting,
	StatusRepairComplete,
	StatusReturnedToCare,
	StatusDone,
	StatusFailed,
}

// Statuses возвращает копию списка всех статусов.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal — из статуса нет ни одного перехода.
func (s Status) Terminal() bool { return s == StatusDone }

// Handover — статусы передачи устройства клиенту (требуют оплаты).
func (s Status) Handover() bool {
	return s == StatusReturnedToCare || s == StatusDone
}

// Progress — доля пройденного пути ремонта (0..1).
func (s Status) Progress() float64 {
	switch s {
	case StatusAssigned:
		return 0.1
	case StatusDiagnosisStarted:
		return 0.2
	case StatusAwaitingParts:
		return 0.3
	case StatusPartsArrived:
		return 0.4
	case StatusInRepair:
		return 0.6
	case StatusTesting:
		return 0.8
	case StatusRepairComplete:
		return 0.9
	case StatusReturnedToCare:
		return 0.95
	case StatusDone:
		return 1.0
	default:
		return 0
	}
}

func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown device status %q, expected one of %v", v, Statuses())
	}
	return s, nil
}

// PartStatus — статус запчасти, заказанной под ремонт.
type PartStatus string

const (
	PartNeeded   PartStatus = "needed"
	PartOrdered  PartStatus = "ordered"
	PartAccepted PartStatus = "accepted"
	PartReceived PartStatus = "received"
	PartUsed     PartStatus = "used"
)

func (p PartStatus) Valid() bool {
	switch p {
	case PartNeeded, PartOrdered, PartAccepted, PartReceived, PartUsed:
		return true
	}
	return false
}

// Pending — запчасть ещё не пришла.
func (p PartStatus) Pending() bool { return p == PartNeeded || p == PartOrdered }

// Ready — запчасть на руках у техника.
func (p PartStatus) Ready() bool { return p == PartReceived || p == PartUsed }

func ParsePartStatus(v string) (PartStatus, error) {
	p := PartStatus(strings.ToLower(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown part status %q", v)
	}
	return p, nil
}

package workflow

import (
	"errors"
	"strings"
)

// Kind различает смену статуса и действие без смены статуса (SMS клиенту).
type Kind string

const (
	KindTransition Kind = "transition"
	KindNotify     Kind = "notify"
)

var ErrNotesRequired = errors.New("notes are required for this status change")

// Rule — одна строка таблицы переходов.
type Rule struct {
	ID            string
	From          Status
	To            Status
	Label         string
	Kind          Kind
	RequiresNotes bool
	Roles         RoleSet
	Priority      *int // nil — после всех заданных
	Validate      Predicate
}

// SelfTransition — действие не меняет статус.
func (r Rule) SelfTransition() bool { return r.From == r.To }

// CheckNotes — гейт обязательных заметок, до любого вызова коллабораторов.
func (r Rule) CheckNotes(notes string) error {
	if r.RequiresNotes && strings.TrimSpace(notes) == "" {
		return ErrNotesRequired
	}
	return nil
}

// Check прогоняет предикат (если есть).
func (r Rule) Check(s Snapshot) Result {
	if r.Validate == nil {
		return ok()
	}
	return r.Validate(s)
}

func (r Rule) priority() (int, bool) {
	if r.Priority == nil {
		return 0, false
	}
	return *r.Priority, true
}

func prio(v int) *int { return &v }

// Table — упорядоченный набор правил.
type Table []Rule

var (
	techOrAdmin  = RoleSet{RoleTechnician, RoleAdmin}
	careOrAdmin  = RoleSet{RoleAdmin, RoleCustomerCare}
	notifyRoles  = RoleSet{RoleCustomerCare, RoleAdmin}
	receiveFrom  = []Status{StatusAssigned, StatusDiagnosisStarted, StatusAwaitingParts, StatusInRepair}
	notifyFrom   = []Status{StatusAssigned, StatusDiagnosisStarted, StatusAwaitingParts, StatusInRepair, StatusRepairComplete}
	defaultTable = buildDefault()
)

// receiveParts — одно параметризованное правило вместо копий на каждый исходный статус.
func receiveParts(from ...Status) []Rule {
	out := make([]Rule, 0, len(from))
	for _, f := range from {
		out = append(out, Rule{
			ID:       ActionReceiveParts,
			From:     f,
			To:       StatusPartsArrived,
			Label:    "Receive Spare Parts",
			Kind:     KindTransition,
			Roles:    techOrAdmin,
			Priority: prio(1),
			Validate: partsPending,
		})
	}
	return out
}

func notifyCustomer(from ...Status) []Rule {
	out := make([]Rule, 0, len(from))
	for _, f := range from {
		out = append(out, Rule{
			ID:       ActionNotifyCustomer,
			From:     f,
			To:       f,
			Label:    "Send SMS to Customer",
			Kind:     KindNotify,
			Roles:    notifyRoles,
			Priority: prio(2),
			Validate: customerReachable,
		})
	}
	return out
}

// идентификаторы действий (стабильны для API)
const (
	ActionReceiveParts          = "receive-parts"
	ActionNotifyCustomer        = "notify-customer"
	ActionStartDiagnosis        = "start-diagnosis"
	ActionAwaitParts            = "await-parts"
	ActionStartRepair           = "start-repair"
	ActionStartRepairPartsReady = "start-repair-parts-ready"
	ActionStartRepairArrived    = "start-repair-arrived"
	ActionStartTesting          = "start-testing"
	ActionMarkFailed            = "mark-failed"
	ActionTestingPassed         = "testing-passed"
	ActionBackToRepair          = "back-to-repair"
	ActionSendToCustomerCare    = "send-to-customer-care"
	ActionGiveToCustomer        = "give-to-customer"
	ActionMarkDone              = "mark-done"
	ActionFailedToCustomerCare  = "failed-to-customer-care"
	ActionReturnFailed          = "return-failed"
)

func buildDefault() Table {
	t := Table{}
	t = append(t, receiveParts(receiveFrom...)...)
	t = append(t,
		Rule{ID: ActionStartDiagnosis, From: StatusAssigned, To: StatusDiagnosisStarted,
			Label: "Start Diagnosis", Kind: KindTransition, Roles: techOrAdmin},
		Rule{ID: ActionAwaitParts, From: StatusDiagnosisStarted, To: StatusAwaitingParts,
			Label: "Awaiting Parts", Kind: KindTransition, RequiresNotes: true, Roles: techOrAdmin},
		Rule{ID: ActionStartRepair, From: StatusDiagnosisStarted, To: StatusInRepair,
			Label: "Start Repair", Kind: KindTransition, Roles: techOrAdmin},
		Rule{ID: ActionStartRepairPartsReady, From: StatusAwaitingParts, To: StatusInRepair,
			Label: "Start Repair (Parts Available)", Kind: KindTransition, Roles: techOrAdmin, Validate: partsReady},
		Rule{ID: ActionStartRepairArrived, From: StatusPartsArrived, To: StatusInRepair,
			Label: "Start Repair", Kind: KindTransition, Roles: techOrAdmin},
		Rule{ID: ActionStartTesting, From: StatusInRepair, To: StatusTesting,
			Label: "Start Testing", Kind: KindTransition, RequiresNotes: true, Roles: techOrAdmin},
		Rule{ID: ActionMarkFailed, From: StatusInRepair, To: StatusFailed,
			Label: "Mark Failed", Kind: KindTransition, RequiresNotes: true, Roles: techOrAdmin},
		Rule{ID: ActionTestingPassed, From: StatusTesting, To: StatusRepairComplete,
			Label: "Testing Passed", Kind: KindTransition, RequiresNotes: true, Roles: techOrAdmin},
		Rule{ID: ActionBackToRepair, From: StatusTesting, To: StatusInRepair,
			Label: "Back to Repair", Kind: KindTransition, RequiresNotes: true, Roles: techOrAdmin},
		Rule{ID: ActionSendToCustomerCare, From: StatusRepairComplete, To: StatusReturnedToCare,
			Label: "Send to Customer Care", Kind: KindTransition, Roles: techOrAdmin},
		Rule{ID: ActionGiveToCustomer, From: StatusRepairComplete, To: StatusReturnedToCare,
			Label: "Give to Customer", Kind: KindTransition, Roles: careOrAdmin, Validate: paymentsSettled},
		Rule{ID: ActionMarkDone, From: StatusReturnedToCare, To: StatusDone,
			Label: "Mark Done", Kind: KindTransition, Roles: careOrAdmin, Validate: paymentsSettled},
		Rule{ID: ActionFailedToCustomerCare, From: StatusFailed, To: StatusReturnedToCare,
			Label: "Send to Customer Care", Kind: KindTransition, RequiresNotes: true, Roles: techOrAdmin},
		Rule{ID: ActionReturnFailed, From: StatusFailed, To: StatusDone,
			Label: "Return to Customer", Kind: KindTransition, RequiresNotes: true, Roles: careOrAdmin},
	)
	t = append(t, notifyCustomer(notifyFrom...)...)
	return t
}

// DefaultTable — таблица переходов мастерской (копия, можно модифицировать).
func DefaultTable() Table {
	out := make(Table, len(defaultTable))
	copy(out, defaultTable)
	return out
}

// Find ищет правило по id и исходному статусу.
func (t Table) Find(id string, from Status) (Rule, bool) {
	for _, r := range t {
		if r.ID == id && r.From == from {
			return r, true
		}
	}
	return Rule{}, false
}

// From — все правила из статуса, без учёта ролей и проверок.
func (t Table) From(s Status) []Rule {
	var out []Rule
	for _, r := range t {
		if r.From == s {
			out = append(out, r)
		}
	}
	return out
}

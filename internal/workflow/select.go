package workflow

import "sort"

// Reason — почему правило не предложено.
type Reason string

const (
	ReasonRole       Reason = "role"
	ReasonAssignment Reason = "assignment"
	ReasonValidation Reason = "validation"
)

// Rejection — правило из текущего статуса, отсеянное фильтром.
type Rejection struct {
	Rule    Rule
	Reason  Reason
	Message string
}

// Action — то, что показываем пользователю.
type Action struct {
	ID            string `json:"id"`
	From          Status `json:"from"`
	To            Status `json:"to"`
	Label         string `json:"label"`
	Kind          Kind   `json:"kind"`
	RequiresNotes bool   `json:"requires_notes"`
	Priority      *int   `json:"priority,omitempty"`
}

func (r Rule) Action() Action {
	a := Action{
		ID:            r.ID,
		From:          r.From,
		To:            r.To,
		Label:         r.Label,
		Kind:          r.Kind,
		RequiresNotes: r.RequiresNotes,
	}
	if p, ok := r.priority(); ok {
		a.Priority = &p
	}
	return a
}

// Evaluate делит правила текущего статуса на предложенные и отсеянные.
// Предложенные отсортированы стабильно по приоритету (nil — в конце).
func (t Table) Evaluate(s Snapshot, u User) (offered []Rule, rejected []Rejection) {
	for _, r := range t.From(s.Device.Status) {
		if !r.Roles.Has(u.Role) {
			rejected = append(rejected, Rejection{Rule: r, Reason: ReasonRole,
				Message: "Your role is not allowed to perform this action."})
			continue
		}
		if !assignedOK(s.Device, u) {
			rejected = append(rejected, Rejection{Rule: r, Reason: ReasonAssignment,
				Message: "Only the assigned technician can perform this action."})
			continue
		}
		if res := r.Check(s); !res.Valid {
			msg := res.Message
			if msg == "" {
				msg = "Validation failed"
			}
			rejected = append(rejected, Rejection{Rule: r, Reason: ReasonValidation, Message: msg})
			continue
		}
		offered = append(offered, r)
	}
	sortByPriority(offered)
	return offered, rejected
}

// Available — список легальных действий для пользователя.
func (t Table) Available(s Snapshot, u User) []Rule {
	offered, _ := t.Evaluate(s, u)
	return offered
}

// Actions — то же, в виде DTO.
func (t Table) Actions(s Snapshot, u User) []Action { return actionsOf(t.Available(s, u)) }

func actionsOf(rules []Rule) []Action {
	out := make([]Action, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Action())
	}
	return out
}

func assignedOK(d DeviceState, u User) bool {
	switch u.Role {
	case RoleTechnician:
		return d.AssignedTo != "" && d.AssignedTo == u.ID
	case RoleAdmin, RoleCustomerCare:
		return true
	case RoleUnknown:
		return false
	}
	return false
}

func sortByPriority(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		pi, oki := rules[i].priority()
		pj, okj := rules[j].priority()
		switch {
		case oki && okj:
			return pi < pj
		case oki:
			return true
		default:
			return false
		}
	})
}

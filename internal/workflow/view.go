package workflow

// View — неизменяемая модель экрана карточки ремонта.
// Меняется только через функции ниже, каждая возвращает новую копию.
type View struct {
	Table    Table
	Snapshot Snapshot
	User     User
	Actions  []Rule
	Selected string
	Notes    string
	Message  string
	Busy     bool

	lastKnown Snapshot
}

// NewView строит модель и сразу считает доступные действия.
func NewView(t Table, s Snapshot, u User) View {
	v := View{Table: t, Snapshot: s, User: u, lastKnown: s}
	v.Actions = t.Available(s, u)
	return v
}

func (v View) clone() View {
	out := v
	out.Actions = append([]Rule(nil), v.Actions...)
	out.Snapshot = v.Snapshot.WithStatus(v.Snapshot.Device.Status)
	return out
}

func (v View) Select(actionID string) View {
	out := v.clone()
	out.Selected = actionID
	out.Message = ""
	return out
}

func (v View) SetNotes(notes string) View {
	out := v.clone()
	out.Notes = notes
	return out
}

// Submitting — запрос ушёл, ждём ответа.
func (v View) Submitting() View {
	out := v.clone()
	out.Busy = true
	return out
}

// Applied — оптимистично принимаем новый статус и пересчитываем действия.
func (v View) Applied(to Status) View {
	out := v.clone()
	out.Snapshot = v.Snapshot.WithStatus(to)
	out.lastKnown = out.Snapshot
	out.Actions = out.Table.Available(out.Snapshot, out.User)
	out.Selected = ""
	out.Notes = ""
	out.Message = ""
	out.Busy = false
	return out
}

// Failed — откат к последнему известному состоянию, сообщение для пользователя.
func (v View) Failed(msg string) View {
	out := v.clone()
	out.Snapshot = v.lastKnown.WithStatus(v.lastKnown.Device.Status)
	out.Actions = out.Table.Available(out.Snapshot, out.User)
	out.Message = msg
	out.Busy = false
	return out
}

// Reset — снять выбор без смены статуса (например, после отправки сообщения).
func (v View) Reset() View {
	out := v.clone()
	out.Selected = ""
	out.Notes = ""
	out.Message = ""
	out.Busy = false
	return out
}

// Offered — предложенные действия в виде DTO.
func (v View) Offered() []Action { return actionsOf(v.Actions) }

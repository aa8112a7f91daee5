package repair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"repairdesk/internal/logs"
	"repairdesk/internal/messaging"
	"repairdesk/internal/models"
	"repairdesk/internal/repo"
	"repairdesk/internal/workflow"
)

// Deps — обязательные коллабораторы сервиса.
type Deps struct {
	Devices   Devices
	Updater   StatusUpdater
	Parts     Parts
	Payments  Payments
	History   History
	Messenger messaging.Messenger
}

type Option func(*Service)

func WithTable(t workflow.Table) Option { return func(s *Service) { s.table = t } }
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }
func WithObserver(o Observer) Option { return func(s *Service) { s.obs = o } }
func WithSignature(sig string) Option { return func(s *Service) { s.signature = sig } }
func WithLogger(l *logrus.Logger) Option { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service — применяет действия таблицы переходов к устройствам.
type Service struct {
	table     workflow.Table
	devices   Devices
	updater   StatusUpdater
	parts     Parts
	payments  Payments
	history   History
	messenger messaging.Messenger
	cache     Cache
	obs       Observer
	signature string
	log       *logrus.Logger
	now       func() time.Time
}

func New(d Deps, opts ...Option) (*Service, error) {
	if d.Devices == nil || d.Updater == nil || d.Parts == nil || d.Payments == nil {
		return nil, errors.New("repair: devices, updater, parts and payments are required")
	}
	s := &Service{
		table:     workflow.DefaultTable(),
		devices:   d.Devices,
		updater:   d.Updater,
		parts:     d.Parts,
		payments:  d.Payments,
		history:   d.History,
		messenger: d.Messenger,
		log:       logs.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	if s.messenger == nil {
		s.messenger = messaging.Noop{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s, nil
}

// Outcome — результат применённого действия.
type Outcome struct {
	DeviceID string            `json:"device_id"`
	Action   string            `json:"action"`
	Kind     workflow.Kind     `json:"kind"`
	From     workflow.Status   `json:"from"`
	To       workflow.Status   `json:"to"`
	Message  *messaging.Result `json:"message,omitempty"`
	Actions  []workflow.Action `json:"actions"`
}

// Details — карточка устройства для API. StatusProgress — доля пройденного пути (0..1).
type Details struct {
	Device         models.Device           `json:"device"`
	Parts          []models.RepairPart     `json:"parts"`
	Payments       workflow.PaymentSummary `json:"payments"`
	Progress       workflow.Progress       `json:"progress"`
	StatusProgress float64                 `json:"status_progress"`
	Actions        []workflow.Action       `json:"actions"`
}

/* ───── чтение ───── */

func (s *Service) load(ctx context.Context, deviceID string) (*Snapshot, error) {
	d, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("load device: %w", err)
	}
	parts, err := s.parts.ListForDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("load parts: %w", err)
	}
	sum, err := s.payments.Summary(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	return &Snapshot{Device: *d, Parts: parts, Payments: sum}, nil
}

// cached — снапшот для отображения; для Apply всегда читаем свежий.
func (s *Service) cached(ctx context.Context, deviceID string) (*Snapshot, error) {
	if s.cache != nil {
		var snap Snapshot
		hit, err := s.cache.Load(ctx, deviceID, &snap)
		if err != nil {
			s.log.WithError(err).WithField("device_id", deviceID).Warn("snapshot cache read failed")
		} else if hit {
			return &snap, nil
		}
	}
	snap, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Store(ctx, deviceID, snap); err != nil {
			s.log.WithError(err).WithField("device_id", deviceID).Warn("snapshot cache write failed")
		}
	}
	return snap, nil
}

func (s *Service) invalidate(ctx context.Context, deviceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, deviceID); err != nil {
		s.log.WithError(err).WithField("device_id", deviceID).Warn("snapshot cache invalidate failed")
	}
}

// Actions — действия, доступные пользователю для устройства.
func (s *Service) Actions(ctx context.Context, deviceID string, u workflow.User) ([]workflow.Action, error) {
	snap, err := s.cached(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return s.table.Actions(snap.State(), u), nil
}

func (s *Service) Details(ctx context.Context, deviceID string, u workflow.User) (*Details, error) {
	snap, err := s.cached(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	st := snap.State()
	return &Details{
		Device:         snap.Device,
		Parts:          snap.Parts,
		Payments:       snap.Payments,
		Progress:       workflow.PartsProgress(st.Parts),
		StatusProgress: st.Device.Status.Progress(),
		Actions:        s.table.Actions(st, u),
	}, nil
}

// List — очередь устройств; техник видит только назначенные ему.
func (s *Service) List(ctx context.Context, u workflow.User, f repo.ListFilter) ([]models.Device, error) {
	switch u.Role {
	case workflow.RoleTechnician:
		f.AssignedTo = u.ID
	case workflow.RoleAdmin, workflow.RoleCustomerCare:
	case workflow.RoleUnknown:
		return nil, ErrActionNotAllowed
	}
	if f.Status != "" {
		st, err := workflow.ParseStatus(f.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		f.Status = string(st)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return s.devices.List(ctx, f)
}

func (s *Service) History(ctx context.Context, deviceID string) ([]models.StatusChange, error) {
	if _, err := s.load(ctx, deviceID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []models.StatusChange{}, nil
	}
	hs, err := s.history.ListForDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if hs == nil {
		hs = []models.StatusChange{}
	}
	return hs, nil
}

/* ───── применение действий ───── */

// Apply выполняет действие actionID от имени пользователя.
func (s *Service) Apply(ctx context.Context, deviceID string, u workflow.User, actionID, notes string) (*Outcome, error) {
	start := time.Now()
	out, err := s.applyAction(ctx, deviceID, u, actionID, notes)
	s.observe(actionID, err, time.Since(start))
	return out, err
}

// Transition — смена статуса по целевому статусу (первое предложенное правило с таким To).
func (s *Service) Transition(ctx context.Context, deviceID string, u workflow.User, to workflow.Status, notes string) (*Outcome, error) {
	start := time.Now()
	out, err := s.transition(ctx, deviceID, u, to, notes)
	action := "status:" + string(to)
	if out != nil {
		action = out.Action
	}
	s.observe(action, err, time.Since(start))
	return out, err
}

func (s *Service) transition(ctx context.Context, deviceID string, u workflow.User, to workflow.Status, notes string) (*Outcome, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	snap, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if workflow.Status(snap.Device.Status) == to {
		return nil, ErrAlreadyInStatus
	}
	return s.applyTo(ctx, snap, u, notes, func(r workflow.Rule) bool {
		return r.Kind == workflow.KindTransition && r.To == to
	})
}

func (s *Service) applyAction(ctx context.Context, deviceID string, u workflow.User, actionID, notes string) (*Outcome, error) {
	snap, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	status := workflow.Status(snap.Device.Status)
	if _, ok := s.table.Find(actionID, status); !ok {
		return nil, fmt.Errorf("%w: action %q is not defined for status %s", ErrActionNotAllowed, actionID, status)
	}
	return s.applyTo(ctx, snap, u, notes, func(r workflow.Rule) bool { return r.ID == actionID })
}

func (s *Service) applyTo(ctx context.Context, snap *Snapshot, u workflow.User, notes string, match func(workflow.Rule) bool) (*Outcome, error) {
	st := snap.State()
	rule, err := s.resolve(st, u, match)
	if err != nil {
		return nil, err
	}
	v := workflow.NewView(s.table, st, u).Select(rule.ID).SetNotes(notes)
	if err := rule.CheckNotes(v.Notes); err != nil {
		return nil, err
	}
	v = v.Submitting()

	var out *Outcome
	if rule.Kind == workflow.KindNotify {
		out, err = s.notify(ctx, snap, rule, u, notes)
		v = v.Reset()
	} else {
		out, err = s.execute(ctx, snap, rule, u, notes)
		v = v.Applied(rule.To)
	}
	if err != nil {
		v = v.Failed(err.Error())
		s.log.WithFields(logrus.Fields{
			"device_id": snap.Device.ID,
			"action":    rule.ID,
			"status":    v.Snapshot.Device.Status,
		}).WithError(err).Debug("action failed")
		return nil, err
	}
	out.Actions = v.Offered()
	return out, nil
}

// resolve находит предложенное правило; иначе объясняет, почему его нет.
func (s *Service) resolve(st workflow.Snapshot, u workflow.User, match func(workflow.Rule) bool) (workflow.Rule, error) {
	offered, rejected := s.table.Evaluate(st, u)
	for _, r := range offered {
		if match(r) {
			return r, nil
		}
	}
	for _, rj := range rejected {
		if !match(rj.Rule) {
			continue
		}
		if rj.Reason == workflow.ReasonValidation {
			ve := &ValidationError{Action: rj.Rule.ID, Message: rj.Message}
			if rj.Rule.To.Handover() && workflow.Cents(st.Payments.TotalPending) > 0 {
				ve.Err = ErrPaymentsPending
			}
			return workflow.Rule{}, ve
		}
		return workflow.Rule{}, fmt.Errorf("%w: %s", ErrActionNotAllowed, rj.Message)
	}
	if st.Device.Status.Terminal() {
		return workflow.Rule{}, fmt.Errorf("%w: device is %s", ErrActionNotAllowed, st.Device.Status)
	}
	return workflow.Rule{}, fmt.Errorf("%w from status %s", ErrActionNotAllowed, st.Device.Status)
}

func (s *Service) execute(ctx context.Context, snap *Snapshot, rule workflow.Rule, u workflow.User, notes string) (*Outcome, error) {
	from := workflow.Status(snap.Device.Status)
	if rule.SelfTransition() {
		return nil, ErrAlreadyInStatus
	}
	l := s.log.WithFields(logrus.Fields{"device_id": snap.Device.ID, "action": rule.ID, "role": u.Role.String()})

	// передача клиенту: суммы могли измениться после загрузки
	if rule.To.Handover() && rule.Validate != nil {
		sum, err := s.payments.Summary(ctx, snap.Device.ID)
		if err != nil {
			return nil, fmt.Errorf("load payments: %w", err)
		}
		snap.Payments = sum
		if res := workflow.PaymentsSettled(sum); !res.Valid {
			return nil, &ValidationError{Action: rule.ID, Message: res.Message, Err: ErrPaymentsPending}
		}
	}

	// приёмка запчастей: при неудачной смене статуса возвращаем им прежние статусы
	var received map[workflow.PartStatus][]string
	if rule.ID == workflow.ActionReceiveParts {
		received = snap.pendingPartsByStatus()
		n, err := s.parts.SetStatus(ctx, snap.Device.ID, snap.pendingPartIDs(), workflow.PartReceived, u.ID, notes)
		if err != nil {
			return nil, fmt.Errorf("receive parts: %w", err)
		}
		l.WithField("parts", n).Info("spare parts received")
	}

	ok, err := s.updater.UpdateStatus(ctx, snap.Device.ID, rule.To, notes)
	if err != nil || !ok {
		s.restoreParts(ctx, snap.Device.ID, received, u, l)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	if !ok {
		return nil, ErrUpdateRejected
	}
	l.WithFields(logrus.Fields{"from": from, "to": rule.To}).Info("device status changed")

	s.record(ctx, snap.Device.ID, from, rule.To, rule.ID, u, notes, nil)
	if rule.To == workflow.StatusRepairComplete {
		if err := s.createPendingPayments(ctx, &snap.Device); err != nil {
			l.WithError(err).Warn("failed to create pending payments")
		}
	}
	s.invalidate(ctx, snap.Device.ID)

	return &Outcome{
		DeviceID: snap.Device.ID,
		Action:   rule.ID,
		Kind:     rule.Kind,
		From:     from,
		To:       rule.To,
	}, nil
}

// restoreParts откатывает приёмку запчастей к статусам из снапшота.
func (s *Service) restoreParts(ctx context.Context, deviceID string, prev map[workflow.PartStatus][]string, u workflow.User, l *logrus.Entry) {
	for st, ids := range prev {
		if _, err := s.parts.SetStatus(ctx, deviceID, ids, st, u.ID, ""); err != nil {
			l.WithError(err).WithField("part_status", st).Error("failed to roll back received parts")
		}
	}
	if len(prev) > 0 {
		l.Warn("status update failed, received parts rolled back")
	}
}

// notify — сообщение клиенту о текущем статусе; статус не меняется.
func (s *Service) notify(ctx context.Context, snap *Snapshot, rule workflow.Rule, u workflow.User, notes string) (*Outcome, error) {
	d := &snap.Device
	if d.CustomerPhone == "" {
		return nil, ErrNoCustomerPhone
	}
	status := workflow.Status(d.Status)
	text := messaging.StatusText(status, d.CustomerName, d.Name(), s.signature)
	res, err := s.messenger.Send(ctx, d.CustomerPhone, text)
	if err != nil {
		s.observeMessage("error")
		return nil, fmt.Errorf("%w: %w", ErrMessageFailed, err)
	}
	if !res.Success {
		s.observeMessage("failed")
		return nil, fmt.Errorf("%w: %s", ErrMessageFailed, res.Error)
	}
	s.observeMessage("sent")
	s.log.WithFields(logrus.Fields{"device_id": d.ID, "action": rule.ID, "message_id": res.MessageID}).Info("customer notified")

	s.record(ctx, d.ID, status, status, rule.ID, u, notes, map[string]any{"message_id": res.MessageID})
	return &Outcome{
		DeviceID: d.ID,
		Action:   rule.ID,
		Kind:     rule.Kind,
		From:     status,
		To:       status,
		Message:  &res,
	}, nil
}

// record пишет строку журнала; ошибка журнала не отменяет смену статуса.
func (s *Service) record(ctx context.Context, deviceID string, from, to workflow.Status, action string, u workflow.User, notes string, meta map[string]any) {
	if s.history == nil {
		return
	}
	c := &models.StatusChange{
		CreatedAt:  s.now(),
		DeviceID:   deviceID,
		FromStatus: string(from),
		ToStatus:   string(to),
		Action:     action,
		ActorID:    u.ID,
		ActorRole:  u.Role.String(),
		Notes:      notes,
	}
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			c.Metadata = datatypes.JSON(b)
		}
	}
	if err := s.history.Append(ctx, c); err != nil {
		s.log.WithError(err).WithField("device_id", deviceID).Warn("failed to write status history")
	}
}

func (s *Service) observe(action string, err error, took time.Duration) {
	if s.obs == nil {
		return
	}
	s.obs.ObserveAction(action, resultLabel(err), took)
}

func (s *Service) observeMessage(result string) {
	if s.obs != nil {
		s.obs.ObserveMessage(result)
	}
}

// resultLabel — короткая метка результата для метрик.
func resultLabel(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, ErrNotesRequired):
		return "notes_required"
	case errors.Is(err, ErrActionNotAllowed):
		return "forbidden"
	case errors.Is(err, ErrDeviceNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyInStatus):
		return "noop"
	case errors.Is(err, ErrUpdateRejected):
		return "rejected"
	default:
		return "error"
	}
}

package repair

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"repairdesk/internal/messaging"
	"repairdesk/internal/models"
	"repairdesk/internal/repo"
	"repairdesk/internal/workflow"
)

var (
	tech  = workflow.User{ID: "tech-1", Role: workflow.RoleTechnician}
	other = workflow.User{ID: "tech-2", Role: workflow.RoleTechnician}
	care  = workflow.User{ID: "care-1", Role: workflow.RoleCustomerCare}
	admin = workflow.User{ID: "admin-1", Role: workflow.RoleAdmin}
)

type sentMessage struct{ phone, text string }

type fakeMessenger struct {
	sent []sentMessage
	fail string
}

func (f *fakeMessenger) Send(_ context.Context, phone, text string) (messaging.Result, error) {
	f.sent = append(f.sent, sentMessage{phone, text})
	if f.fail != "" {
		return messaging.Result{Error: f.fail}, nil
	}
	return messaging.Result{Success: true, MessageID: "MSG-1"}, nil
}

type fakeObserver struct {
	actions  map[string]string
	messages []string
}

func (o *fakeObserver) ObserveAction(action, result string, _ time.Duration) {
	o.actions[action] = result
}
func (o *fakeObserver) ObserveMessage(result string) { o.messages = append(o.messages, result) }

type rejectingUpdater struct{}

func (rejectingUpdater) UpdateStatus(context.Context, string, workflow.Status, string) (bool, error) {
	return false, nil
}

type failingUpdater struct{}

func (failingUpdater) UpdateStatus(context.Context, string, workflow.Status, string) (bool, error) {
	return false, errors.New("connection reset")
}

type fixture struct {
	mem  *repo.Memory
	svc  *Service
	msgr *fakeMessenger
	obs  *fakeObserver
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	mem := repo.NewMemory()
	f := &fixture{mem: mem, msgr: &fakeMessenger{}, obs: &fakeObserver{actions: map[string]string{}}}
	deps := Deps{
		Devices:   mem.Devices(),
		Updater:   mem.Devices(),
		Parts:     mem.Parts(),
		Payments:  mem.Payments(),
		History:   mem.History(),
		Messenger: f.msgr,
	}
	opts = append([]Option{WithObserver(f.obs), WithSignature("LATS")}, opts...)
	svc, err := New(deps, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) device(t *testing.T, status workflow.Status, partStatuses ...workflow.PartStatus) string {
	t.Helper()
	ctx := context.Background()
	d := &models.Device{
		Brand: "Samsung", Model: "A52", SerialNumber: "SN-1",
		CustomerID: "cust-1", CustomerName: "Amina", CustomerPhone: "255712345678",
		Status: string(status), AssignedTo: tech.ID,
		RepairCost: 50000, DepositAmount: 10000,
	}
	if err := f.mem.Devices().Create(ctx, d); err != nil {
		t.Fatalf("create device: %v", err)
	}
	for i, ps := range partStatuses {
		p := &models.RepairPart{DeviceID: d.ID, Name: "part-" + string(rune('a'+i)), QuantityNeeded: 1, CostPerUnit: 1000, Status: string(ps)}
		if err := f.mem.Parts().Create(ctx, p); err != nil {
			t.Fatalf("create part: %v", err)
		}
	}
	return d.ID
}

func (f *fixture) status(t *testing.T, id string) workflow.Status {
	t.Helper()
	d, err := f.mem.Devices().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get device: %v", err)
	}
	return workflow.Status(d.Status)
}

func hasAction(as []workflow.Action, id string) bool {
	for _, a := range as {
		if a.ID == id {
			return true
		}
	}
	return false
}

func TestApply_StartDiagnosis(t *testing.T) {
	f := newFixture(t)
	id := f.device(t, workflow.StatusAssigned)

	out, err := f.svc.Apply(context.Background(), id, tech, workflow.ActionStartDiagnosis, "")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.From != workflow.StatusAssigned || out.To != workflow.StatusDiagnosisStarted {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got := f.status(t, id); got != workflow.StatusDiagnosisStarted {
		t.Fatalf("status = %s", got)
	}
	if !hasAction(out.Actions, workflow.ActionStartRepair) {
		t.Fatalf("next actions should offer start-repair: %+v", out.Actions)
	}
	h, _ := f.svc.History(context.Background(), id)
	if len(h) != 1 || h[0].ActorID != tech.ID || h[0].ToStatus != string(workflow.StatusDiagnosisStarted) {
		t.Fatalf("unexpected history %+v", h)
	}
	if f.obs.actions[workflow.ActionStartDiagnosis] != "ok" {
		t.Fatalf("metric not observed: %v", f.obs.actions)
	}
}

func TestApply_NotesRequired(t *testing.T) {
	f := newFixture(t)
	id := f.device(t, workflow.StatusInRepair)

	_, err := f.svc.Apply(context.Background(), id, tech, workflow.ActionStartTesting, "   ")
	if !errors.Is(err, ErrNotesRequired) {
		t.Fatalf("expected ErrNotesRequired, got %v", err)
	}
	if got := f.status(t, id); got != workflow.StatusInRepair {
		t.Fatalf("status must not change, got %s", got)
	}
	if _, err := f.svc.Apply(context.Background(), id, tech, workflow.ActionStartTesting, "screen replaced"); err != nil {
		t.Fatalf("apply with notes: %v", err)
	}
}

func TestApply_HandoverBlockedByPendingPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusRepairComplete)
	if err := f.mem.Payments().Create(ctx, &models.Payment{DeviceID: id, Amount: 100, Status: models.PaymentPending}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Apply(ctx, id, care, workflow.ActionGiveToCustomer, "")
	var ve *ValidationError
	if !errors.As(err, &ve) || !errors.Is(err, ErrPaymentsPending) {
		t.Fatalf("expected pending payments validation error, got %v", err)
	}
	if ve.Message == "" {
		t.Fatalf("validation message must be surfaced")
	}
	if got := f.status(t, id); got != workflow.StatusRepairComplete {
		t.Fatalf("status must not change, got %s", got)
	}

	sum, err := f.svc.RecordPayment(ctx, id, care, PaymentInput{Amount: 100, Method: "mpesa", Reference: "QK12"})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if sum.TotalPending != 0 || sum.TotalPaid != 100 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if _, err := f.svc.Apply(ctx, id, care, workflow.ActionGiveToCustomer, ""); err != nil {
		t.Fatalf("handover after payment: %v", err)
	}
	if got := f.status(t, id); got != workflow.StatusReturnedToCare {
		t.Fatalf("status = %s", got)
	}
}

func TestApply_DoneIsTerminal(t *testing.T) {
	f := newFixture(t)
	id := f.device(t, workflow.StatusDone)
	for _, u := range []workflow.User{tech, care, admin} {
		as, err := f.svc.Actions(context.Background(), id, u)
		if err != nil {
			t.Fatalf("actions: %v", err)
		}
		if len(as) != 0 {
			t.Fatalf("%s: done must offer nothing, got %+v", u.Role, as)
		}
	}
	_, err := f.svc.Apply(context.Background(), id, admin, workflow.ActionMarkDone, "")
	if !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("expected ErrActionNotAllowed, got %v", err)
	}
}

func TestTransition_SameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	id := f.device(t, workflow.StatusInRepair)
	_, err := f.svc.Transition(context.Background(), id, tech, workflow.StatusInRepair, "x")
	if !errors.Is(err, ErrAlreadyInStatus) {
		t.Fatalf("expected ErrAlreadyInStatus, got %v", err)
	}
	h, _ := f.svc.History(context.Background(), id)
	if len(h) != 0 {
		t.Fatalf("no-op must not write history")
	}
}

func TestTransition_ByTargetStatus(t *testing.T) {
	f := newFixture(t)
	id := f.device(t, workflow.StatusInRepair)
	out, err := f.svc.Transition(context.Background(), id, tech, workflow.StatusFailed, "board is dead")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if out.Action != workflow.ActionMarkFailed || f.status(t, id) != workflow.StatusFailed {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestApply_NotifyBypassesNoopGuard(t *testing.T) {
	f := newFixture(t)
	id := f.device(t, workflow.StatusInRepair)

	out, err := f.svc.Apply(context.Background(), id, care, workflow.ActionNotifyCustomer, "")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if out.From != out.To || out.Message == nil || out.Message.MessageID != "MSG-1" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(f.msgr.sent) != 1 || f.msgr.sent[0].phone != "255712345678" {
		t.Fatalf("unexpected messages %+v", f.msgr.sent)
	}
	if !strings.Contains(f.msgr.sent[0].text, "Samsung A52") || !strings.HasSuffix(f.msgr.sent[0].text, "LATS") {
		t.Fatalf("unexpected text %q", f.msgr.sent[0].text)
	}
	if got := f.status(t, id); got != workflow.StatusInRepair {
		t.Fatalf("notify must not change status, got %s", got)
	}
	h, _ := f.svc.History(context.Background(), id)
	if len(h) != 1 || h[0].FromStatus != h[0].ToStatus {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestApply_NotifyProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.msgr.fail = "quota exceeded"
	id := f.device(t, workflow.StatusInRepair)
	_, err := f.svc.Apply(context.Background(), id, care, workflow.ActionNotifyCustomer, "")
	if !errors.Is(err, ErrMessageFailed) || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected ErrMessageFailed, got %v", err)
	}
	if len(f.obs.messages) != 1 || f.obs.messages[0] != "failed" {
		t.Fatalf("message metric %v", f.obs.messages)
	}
}

func TestApply_TechnicianMustBeAssigned(t *testing.T) {
	f := newFixture(t)
	id := f.device(t, workflow.StatusAssigned)
	_, err := f.svc.Apply(context.Background(), id, other, workflow.ActionStartDiagnosis, "")
	if !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("expected ErrActionNotAllowed, got %v", err)
	}
	if f.obs.actions[workflow.ActionStartDiagnosis] != "forbidden" {
		t.Fatalf("metric %v", f.obs.actions)
	}
}

func TestApply_ReceivePartsMarksPartsReceived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusAwaitingParts, workflow.PartOrdered, workflow.PartNeeded, workflow.PartReceived)

	out, err := f.svc.Apply(ctx, id, tech, workflow.ActionReceiveParts, "")
	if err != nil {
		t.Fatalf("receive parts: %v", err)
	}
	if out.To != workflow.StatusPartsArrived {
		t.Fatalf("unexpected outcome %+v", out)
	}
	parts, _ := f.mem.Parts().ListForDevice(ctx, id)
	for _, p := range parts {
		if p.Status != string(workflow.PartReceived) {
			t.Fatalf("part %s still %s", p.Name, p.Status)
		}
	}
}

func TestApply_RepairCompleteCreatesPendingPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusTesting)

	if _, err := f.svc.Apply(ctx, id, tech, workflow.ActionTestingPassed, "all good"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	sum, _ := f.mem.Payments().Summary(ctx, id)
	if sum.TotalPending != 50000 {
		t.Fatalf("pending = %v, want 50000", sum.TotalPending)
	}
	rows, _ := f.mem.Payments().ListForDevice(ctx, id, models.PaymentPending)
	if len(rows) != 2 {
		t.Fatalf("expected deposit and balance rows, got %d", len(rows))
	}

	// при ожидающих платежах новый счёт не создаётся
	if _, err := f.svc.Apply(ctx, id, admin, workflow.ActionSendToCustomerCare, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := f.svc.createPendingPayments(ctx, &models.Device{ID: id, RepairCost: 1}); err != nil {
		t.Fatal(err)
	}
	if rows, _ := f.mem.Payments().ListForDevice(ctx, id, models.PaymentPending); len(rows) != 2 {
		t.Fatalf("pending rows duplicated: %d", len(rows))
	}
}

func TestApply_UpdateRejected(t *testing.T) {
	mem := repo.NewMemory()
	svc, err := New(Deps{Devices: mem.Devices(), Updater: rejectingUpdater{}, Parts: mem.Parts(), Payments: mem.Payments(), History: mem.History()})
	if err != nil {
		t.Fatal(err)
	}
	d := &models.Device{Status: string(workflow.StatusAssigned), AssignedTo: tech.ID}
	_ = mem.Devices().Create(context.Background(), d)

	_, err = svc.Apply(context.Background(), d.ID, tech, workflow.ActionStartDiagnosis, "")
	if !errors.Is(err, ErrUpdateRejected) {
		t.Fatalf("expected ErrUpdateRejected, got %v", err)
	}
	if h, _ := mem.History().ListForDevice(context.Background(), d.ID); len(h) != 0 {
		t.Fatalf("rejected update must not be recorded")
	}
}

func TestApply_ReceivePartsRolledBackWhenUpdateFails(t *testing.T) {
	cases := []struct {
		name    string
		updater StatusUpdater
		want    error
	}{
		{"rejected", rejectingUpdater{}, ErrUpdateRejected},
		{"error", failingUpdater{}, ErrUpdateFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			mem := repo.NewMemory()
			svc, err := New(Deps{Devices: mem.Devices(), Updater: tc.updater, Parts: mem.Parts(), Payments: mem.Payments(), History: mem.History()})
			if err != nil {
				t.Fatal(err)
			}
			d := &models.Device{Status: string(workflow.StatusAwaitingParts), AssignedTo: tech.ID}
			_ = mem.Devices().Create(ctx, d)
			_ = mem.Parts().Create(ctx, &models.RepairPart{DeviceID: d.ID, Name: "Screen", QuantityNeeded: 1, Status: string(workflow.PartOrdered)})
			_ = mem.Parts().Create(ctx, &models.RepairPart{DeviceID: d.ID, Name: "Glue", QuantityNeeded: 1, Status: string(workflow.PartNeeded)})

			if _, err := svc.Apply(ctx, d.ID, tech, workflow.ActionReceiveParts, ""); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			parts, _ := mem.Parts().ListForDevice(ctx, d.ID)
			want := map[string]string{"Screen": string(workflow.PartOrdered), "Glue": string(workflow.PartNeeded)}
			for _, p := range parts {
				if p.Status != want[p.Name] {
					t.Fatalf("part %s = %s, want %s", p.Name, p.Status, want[p.Name])
				}
			}
			got, _ := mem.Devices().GetByID(ctx, d.ID)
			if got.Status != string(workflow.StatusAwaitingParts) {
				t.Fatalf("status = %s", got.Status)
			}
			as, _ := svc.Actions(ctx, d.ID, tech)
			if !hasAction(as, workflow.ActionReceiveParts) {
				t.Fatalf("receive-parts must still be offered: %+v", as)
			}
		})
	}
}

func TestApply_UnknownDevice(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Apply(context.Background(), "missing", admin, workflow.ActionStartDiagnosis, "")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestRejectParts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusAwaitingParts, workflow.PartOrdered)
	parts, _ := f.mem.Parts().ListForDevice(ctx, id)
	ids := []string{parts[0].ID}

	if _, err := f.svc.RejectParts(ctx, id, care, ids, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("reason is required, got %v", err)
	}
	if _, err := f.svc.RejectParts(ctx, id, tech, ids, "too expensive"); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("technician cannot reject parts, got %v", err)
	}
	n, err := f.svc.RejectParts(ctx, id, care, ids, "too expensive")
	if err != nil || n != 1 {
		t.Fatalf("reject: %d %v", n, err)
	}
	parts, _ = f.mem.Parts().ListForDevice(ctx, id)
	if parts[0].Status != string(workflow.PartNeeded) || parts[0].Notes != "Rejected by customer care: too expensive" {
		t.Fatalf("unexpected part %+v", parts[0])
	}

	if n, err := f.svc.AcceptParts(ctx, id, admin, ids); err != nil || n != 1 {
		t.Fatalf("accept: %d %v", n, err)
	}
}

func TestAddParts_UnblocksAwaitingParts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusDiagnosisStarted)

	if _, err := f.svc.Apply(ctx, id, tech, workflow.ActionAwaitParts, "screen cracked"); err != nil {
		t.Fatalf("await parts: %v", err)
	}
	as, _ := f.svc.Actions(ctx, id, tech)
	if hasAction(as, workflow.ActionReceiveParts) {
		t.Fatalf("nothing to receive yet: %+v", as)
	}

	in := []PartInput{{Name: "Screen", UnitCost: 45000, Status: "ordered"}, {Name: "Adhesive", Quantity: 2}}
	if _, err := f.svc.AddParts(ctx, id, care, in); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("customer care cannot request parts, got %v", err)
	}
	if _, err := f.svc.AddParts(ctx, id, other, in); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("unassigned technician cannot request parts, got %v", err)
	}
	if _, err := f.svc.AddParts(ctx, id, tech, []PartInput{{Name: "Screen", Status: "received"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("new parts cannot start as received, got %v", err)
	}
	if _, err := f.svc.AddParts(ctx, id, tech, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty request must fail, got %v", err)
	}

	added, err := f.svc.AddParts(ctx, id, tech, in)
	if err != nil {
		t.Fatalf("add parts: %v", err)
	}
	if len(added) != 2 || added[0].Status != string(workflow.PartOrdered) || added[1].Status != string(workflow.PartNeeded) || added[1].QuantityNeeded != 2 {
		t.Fatalf("unexpected parts %+v", added)
	}

	as, _ = f.svc.Actions(ctx, id, tech)
	if !hasAction(as, workflow.ActionReceiveParts) {
		t.Fatalf("receive-parts must be offered after adding parts: %+v", as)
	}
	if _, err := f.svc.Apply(ctx, id, tech, workflow.ActionReceiveParts, ""); err != nil {
		t.Fatalf("receive parts: %v", err)
	}
	if got := f.status(t, id); got != workflow.StatusPartsArrived {
		t.Fatalf("status = %s", got)
	}
	if _, err := f.svc.AddParts(ctx, id, admin, in); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("parts cannot be added once they arrived, got %v", err)
	}
}

func TestRecordPayment_Instalments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusRepairComplete)
	_ = f.mem.Payments().Create(ctx, &models.Payment{DeviceID: id, Amount: 300, Status: models.PaymentPending, PaymentType: models.PaymentTypePayment})

	sum, err := f.svc.RecordPayment(ctx, id, care, PaymentInput{Amount: 200})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sum.TotalPending != 100 || sum.TotalPaid != 200 {
		t.Fatalf("first instalment: %+v", sum)
	}
	if _, err := f.svc.Apply(ctx, id, care, workflow.ActionGiveToCustomer, ""); !errors.Is(err, ErrPaymentsPending) {
		t.Fatalf("handover with debt must fail, got %v", err)
	}

	sum, err = f.svc.RecordPayment(ctx, id, care, PaymentInput{Amount: 100, Method: "mpesa"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sum.TotalPending != 0 || sum.TotalPaid != 300 {
		t.Fatalf("second instalment: %+v", sum)
	}
	if _, err := f.svc.Apply(ctx, id, care, workflow.ActionGiveToCustomer, ""); err != nil {
		t.Fatalf("handover after instalments: %v", err)
	}
	if got := f.status(t, id); got != workflow.StatusReturnedToCare {
		t.Fatalf("status = %s", got)
	}
}

func TestRecordPayment_Overpayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusRepairComplete)
	_ = f.mem.Payments().Create(ctx, &models.Payment{DeviceID: id, Amount: 300, Status: models.PaymentPending})

	sum, err := f.svc.RecordPayment(ctx, id, care, PaymentInput{Amount: 350})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sum.TotalPending != 0 || sum.TotalPaid != 350 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if _, err := f.svc.RecordPayment(ctx, id, care, PaymentInput{Amount: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero amount must fail, got %v", err)
	}
	if _, err := f.svc.RecordPayment(ctx, id, care, PaymentInput{Amount: 0.001}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("sub-cent amount must fail, got %v", err)
	}
}

func TestRecordPayment_FractionalAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.device(t, workflow.StatusRepairComplete)
	_ = f.mem.Payments().Create(ctx,
		&models.Payment{DeviceID: id, Amount: 0.1, Status: models.PaymentPending},
		&models.Payment{DeviceID: id, Amount: 0.2, Status: models.PaymentPending},
	)

	sum, err := f.svc.RecordPayment(ctx, id, care, PaymentInput{Amount: 0.3})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sum.TotalPending != 0 {
		t.Fatalf("pending = %v, want 0", sum.TotalPending)
	}
	if rows, _ := f.mem.Payments().ListForDevice(ctx, id, models.PaymentPending); len(rows) != 0 {
		t.Fatalf("pending rows left: %+v", rows)
	}
	if _, err := f.svc.Apply(ctx, id, care, workflow.ActionGiveToCustomer, ""); err != nil {
		t.Fatalf("handover: %v", err)
	}
}

func TestList_TechnicianSeesOwnDevices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.device(t, workflow.StatusInRepair)
	_ = f.mem.Devices().Create(ctx, &models.Device{Status: string(workflow.StatusInRepair), AssignedTo: other.ID})

	got, err := f.svc.List(ctx, tech, repo.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != mine {
		t.Fatalf("technician must see only assigned devices: %+v", got)
	}
	all, _ := f.svc.List(ctx, care, repo.ListFilter{Status: "in-repair"})
	if len(all) != 2 {
		t.Fatalf("customer care sees all, got %d", len(all))
	}
	if _, err := f.svc.List(ctx, care, repo.ListFilter{Status: "bogus"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown status filter must fail, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := DeviceInput{
		Brand: "iPhone", Model: "11", CustomerID: "c9", CustomerPhone: "0712345678", AssignedTo: tech.ID,
		Parts: []PartInput{{Name: "Battery", UnitCost: 35000}},
	}
	if _, err := f.svc.Register(ctx, tech, in); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("technician cannot register devices, got %v", err)
	}
	if _, err := f.svc.Register(ctx, care, DeviceInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty input must fail, got %v", err)
	}
	d, err := f.svc.Register(ctx, care, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if d.Device.Status != string(workflow.StatusAssigned) || len(d.Parts) != 1 || d.Parts[0].QuantityNeeded != 1 {
		t.Fatalf("unexpected details %+v", d)
	}
	as, _ := f.svc.Actions(ctx, d.Device.ID, tech)
	if !hasAction(as, workflow.ActionReceiveParts) || !hasAction(as, workflow.ActionStartDiagnosis) {
		t.Fatalf("unexpected actions %+v", as)
	}
}

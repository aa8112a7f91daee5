package repairctl

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"repairdesk/internal/auth"
	"repairdesk/internal/models"
	"repairdesk/internal/repair"
	"repairdesk/internal/repo"
	"repairdesk/internal/workflow"
)

type Handler struct {
	svc *repair.Service
}

func NewHandler(svc *repair.Service) *Handler { return &Handler{svc: svc} }

// user — вызывающий из контекста; без него 401.
func user(w http.ResponseWriter, r *http.Request) (workflow.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		models.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "missing caller identity", nil)
	}
	return u, ok
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := repo.ListFilter{Status: q.Get("status"), Query: q.Get("q")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			models.WriteProblem(w, http.StatusBadRequest, "Bad Request", "limit must be a number", nil)
			return
		}
		f.Limit = n
	}
	if u.Role != workflow.RoleTechnician {
		f.AssignedTo = q.Get("assigned_to")
	}
	list, err := h.svc.List(r.Context(), u, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	var in repair.DeviceInput
	if err := models.DecodeJSON(r, &in, false); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	d, err := h.svc.Register(r.Context(), u, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Details(r.Context(), mux.Vars(r)["id"], u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	as, err := h.svc.Actions(r.Context(), mux.Vars(r)["id"], u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, as)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	var req ActionRequest
	if err := models.DecodeJSON(r, &req, true); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	vars := mux.Vars(r)
	out, err := h.svc.Apply(r.Context(), vars["id"], u, vars["action"], req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if err := models.DecodeJSON(r, &req, false); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	to, err := workflow.ParseStatus(req.Status)
	if err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	out, err := h.svc.Transition(r.Context(), mux.Vars(r)["id"], u, to, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if _, ok := user(w, r); !ok {
		return
	}
	hs, err := h.svc.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, hs)
}

// AddParts — техник дозаказывает запчасти под ремонт.
func (h *Handler) AddParts(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	var req AddPartsRequest
	if err := models.DecodeJSON(r, &req, false); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	parts, err := h.svc.AddParts(r.Context(), mux.Vars(r)["id"], u, req.Parts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, parts)
}

func (h *Handler) AcceptParts(w http.ResponseWriter, r *http.Request) {
	h.parts(w, r, false)
}

func (h *Handler) RejectParts(w http.ResponseWriter, r *http.Request) {
	h.parts(w, r, true)
}

func (h *Handler) parts(w http.ResponseWriter, r *http.Request, reject bool) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	var req PartsRequest
	if err := models.DecodeJSON(r, &req, false); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	id := mux.Vars(r)["id"]
	var (
		n   int
		err error
	)
	if reject {
		n, err = h.svc.RejectParts(r.Context(), id, u, req.IDs, req.Reason)
	} else {
		n, err = h.svc.AcceptParts(r.Context(), id, u, req.IDs)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, PartsResponse{Updated: n})
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	u, ok := user(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := models.DecodeJSON(r, &req, false); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	sum, err := h.svc.RecordPayment(r.Context(), mux.Vars(r)["id"], u, repair.PaymentInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, sum)
}

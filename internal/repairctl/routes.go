package repairctl

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes вешает API ремонта на /api/v1; mws — auth и прочее.
func RegisterRoutes(r *mux.Router, h *Handler, mws ...mux.MiddlewareFunc) {
	sub := r.PathPrefix("/api/v1").Subrouter()
	sub.Use(mws...)

	sub.HandleFunc("/devices", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/devices", h.Register).Methods(http.MethodPost)
	sub.HandleFunc("/devices/{id}", h.Get).Methods(http.MethodGet)
	sub.HandleFunc("/devices/{id}/actions", h.Actions).Methods(http.MethodGet)
	sub.HandleFunc("/devices/{id}/actions/{action}", h.Apply).Methods(http.MethodPost)
	sub.HandleFunc("/devices/{id}/status", h.SetStatus).Methods(http.MethodPost)
	sub.HandleFunc("/devices/{id}/history", h.History).Methods(http.MethodGet)
	sub.HandleFunc("/devices/{id}/parts", h.AddParts).Methods(http.MethodPost)
	sub.HandleFunc("/devices/{id}/parts/accept", h.AcceptParts).Methods(http.MethodPost)
	sub.HandleFunc("/devices/{id}/parts/reject", h.RejectParts).Methods(http.MethodPost)
	sub.HandleFunc("/devices/{id}/payments", h.RecordPayment).Methods(http.MethodPost)
}

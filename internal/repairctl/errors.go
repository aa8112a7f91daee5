package repairctl

import (
	"errors"
	"net/http"

	"repairdesk/internal/logs"
	"repairdesk/internal/models"
	"repairdesk/internal/repair"
)

// writeError переводит ошибки сервиса в problem+json.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *repair.ValidationError
	switch {
	case errors.Is(err, repair.ErrDeviceNotFound):
		models.WriteProblem(w, http.StatusNotFound, "Not Found", err.Error(), nil)
	case errors.As(err, &ve):
		extra := map[string]any{"action": ve.Action}
		if errors.Is(err, repair.ErrPaymentsPending) {
			extra["reason"] = "payments_pending"
		}
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation Failed", ve.Message, extra)
	case errors.Is(err, repair.ErrNotesRequired), errors.Is(err, repair.ErrInvalidInput), errors.Is(err, repair.ErrNoCustomerPhone):
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error(), nil)
	case errors.Is(err, repair.ErrActionNotAllowed):
		models.WriteProblem(w, http.StatusForbidden, "Forbidden", err.Error(), nil)
	case errors.Is(err, repair.ErrAlreadyInStatus), errors.Is(err, repair.ErrUpdateRejected):
		models.WriteProblem(w, http.StatusConflict, "Conflict", err.Error(), nil)
	case errors.Is(err, repair.ErrMessageFailed):
		models.WriteProblem(w, http.StatusBadGateway, "Bad Gateway", err.Error(), nil)
	default:
		logs.Get().WithError(err).WithField("uri", r.RequestURI).Error("repair request failed")
		models.WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected server error", nil)
	}
}

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"repairdesk/internal/auth"
	"repairdesk/internal/logs"
	"repairdesk/internal/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// AccessLog — строка лога на запрос + счётчик http-запросов.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		// пользователь появляется в контексте после auth, поэтому пишем его через ссылку
		holder := &userHolder{}
		next.ServeHTTP(sw, r.WithContext(withHolder(r.Context(), holder)))
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		metrics.ObserveHTTP(r.Method, sw.status)

		f := logrus.Fields{
			"reqid":  GetRequestID(r),
			"method": r.Method,
			"uri":    r.RequestURI,
			"status": sw.status,
			"bytes":  sw.bytes,
			"dur":    time.Since(start).String(),
			"ip":     r.RemoteAddr,
		}
		if holder.id != "" {
			f["user"] = holder.id
			f["role"] = holder.role
		}
		logs.Get().WithFields(f).Info("request")
	})
}

// CaptureUser ставится после auth и отдаёт пользователя в AccessLog.
func CaptureUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := holderFrom(r.Context()); h != nil {
			if u, ok := auth.UserFromContext(r.Context()); ok {
				h.id, h.role = u.ID, u.Role.String()
			}
		}
		next.ServeHTTP(w, r)
	})
}

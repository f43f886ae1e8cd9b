package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Logger attaches a request-scoped logger to the context and logs every request once it completes.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				status:         http.StatusOK,
			}
			log := base.With(zap.String("method", r.Method), zap.String("path", r.URL.Path))

			next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), log)))

			log.Info("request",
				zap.Int("status", rec.status),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

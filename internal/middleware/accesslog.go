package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/coffersTech/loglab/internal/logging"
)

// AccessLog emits exactly one structured record per request/response
// cycle, or per request/panic. It is the sole source of access records;
// no framework access logger runs alongside it.
//
// On a panic the record carries no status_code (none was produced) and
// the panic value is re-raised unchanged.
func AccessLog(p *logging.Pipeline) func(http.Handler) http.Handler {
	log := p.Logger("access")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ip := clientIP(r)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Exception(r.Context(), "Request failed with exception", err,
						logging.F("method", r.Method),
						logging.F("path", r.URL.Path),
						logging.F("client_ip", ip),
						logging.F("duration_ms", roundMillis(time.Since(start))),
					)
					panic(rec)
				}
			}()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info(r.Context(), "Request completed",
				logging.F("method", r.Method),
				logging.F("path", r.URL.Path),
				logging.F("status_code", status),
				logging.F("duration_ms", roundMillis(time.Since(start))),
				logging.F("client_ip", ip),
			)
		})
	}
}

// roundMillis converts a duration to milliseconds rounded to two
// decimal places.
func roundMillis(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e5) / 100
}

// clientIP prefers the first X-Forwarded-For entry, then the transport
// peer address, then the literal "unknown".
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

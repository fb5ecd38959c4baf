package annotation

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/lewtec/cocotool/internal/domain"
)

// HTTPLogger logs one line per request with the status the handler wrote.
// Server errors get the error prefix used elsewhere.
func HTTPLogger(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		handler.ServeHTTP(rec, r)
		prefix := "http"
		if rec.status >= http.StatusInternalServerError {
			prefix = "error: http"
		}
		log.Printf("%s: %dms %d %s %s (%d bytes)", prefix, time.Since(start).Milliseconds(), rec.status, r.Method, r.URL.String(), rec.written)
	})
}

// statusRecorder remembers the status code and body size of a response
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.written += n
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: while encoding response: %s", err)
	}
}

// statusFor maps core errors to response codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfScope),
		errors.Is(err, domain.ErrMissingSection),
		errors.Is(err, domain.ErrInvalidDimensions),
		errors.Is(err, domain.ErrMalformedKeypoints),
		errors.Is(err, domain.ErrDanglingReference),
		errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("error: http: %s", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package errors

import (
	"fmt"
	"net/http"

	"bkpreport/internal/infrastructure"
)

// RecoveryMiddleware turns a panic in a report handler into a 500 problem
// response and marks the request span as failed. http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				infrastructure.RecordError(r.Context(), fmt.Errorf("panic: %v", rec))
				handler.HandlePanic(w, r, rec)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// PanicHandler receives a recovered panic as an error.
type PanicHandler func(w http.ResponseWriter, r *http.Request, err error)

// Recover turns a panic in a handler into an error passed to onPanic.
// The error carries the stack of the recover site, so the error page can
// show where it happened. http.ErrAbortHandler is re-panicked, as net/http
// expects.
func Recover(onPanic PanicHandler) func(http.Handler) http.Handler {
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

				var err error
				switch v := rec.(type) {
				case error:
					err = errors.WithStack(v)
				default:
					err = errors.New(fmt.Sprint(v))
				}
				onPanic(w, r, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

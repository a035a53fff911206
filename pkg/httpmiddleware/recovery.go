package httpmiddleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

const recoveredBody = `{"error":"internal server error"}`

// Recovery turns a panic in a handler into a JSON 500 and logs it with the
// stack trace. http.ErrAbortHandler is re-raised so the server can abort
// the connection.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
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

				logger.GetLoggerFromContext(r.Context(), log).Error("HTTP request panic recovered",
					logger.StringField("panic", fmt.Sprintf("%v", rec)),
					logger.HTTPMethodField(r.Method),
					logger.HTTPPathField(r.URL.Path),
					logger.ClientIPField(r.RemoteAddr),
					logger.StringField("stack_trace", string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Connection", "close")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(recoveredBody))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Package respond writes JSON responses. The handler, devtools and
// bootstrap packages all answer through it.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ContentType is the header value every JSON response carries.
const ContentType = "application/json; charset=utf-8"

// JSON sends data with the given status code. A nil data sends headers only.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body. Once Encode writes, the
// headers are sent and later changes are ignored, so an encoding failure
// can only be logged.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
}

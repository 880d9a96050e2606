// Package shared holds response helpers used by every HTTP handler so the
// error envelope stays identical across endpoints.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "brandcert/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every non-2xx response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are swallowed;
// by then the status line is already gone.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into the shared envelope. Uncoded
// errors surface as internal without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(err)
	response := ErrorResponse{Error: string(dErrors.CodeOf(err))}

	var de *dErrors.Error
	if errors.As(err, &de) {
		response.Message = de.Message
		response.Fields = de.Fields
	}
	WriteJSON(w, status, response)
}

// Package respond owns the API response envelope. Every endpoint, success or
// failure, answers with the same {code, message, data} shape so mobile
// clients have one parsing path.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the standard API response wrapper.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response with payload data.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := Envelope{Code: status, Message: message, Data: data}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("respond: encode %d response: %v", status, err)
	}
}

// Error writes a failure response carrying only the user-facing message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, message, nil)
}

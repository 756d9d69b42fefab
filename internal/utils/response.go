package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

// APIResponse is the envelope every JSON endpoint answers with. Failures set
// Error so the client can show a dismissible message; they are never empty.
type APIResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Redirect  string            `json:"redirect,omitempty"`
	Warning   string            `json:"warning,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, errMsg string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
}

// ValidationResponse carries field-keyed validation errors, distinct from
// mutation failures.
func ValidationResponse(fields map[string]string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   "validation failed",
		Fields:    fields,
		Timestamp: time.Now(),
	}
}

// RedirectResponse tells the client to navigate, used when a session check
// fails closed.
func RedirectResponse(path string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   "authentication required",
		Redirect:  path,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

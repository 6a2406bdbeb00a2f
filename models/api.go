package models

// APIResponse is the JSON envelope the console uses for its own non-HTML responses
type APIResponse struct {
	Status  string      `json:"status"`            // "success" or "error"
	Code    int         `json:"code"`              // HTTP status code
	Message string      `json:"message,omitempty"` // Human-readable message
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds detailed error information
type APIError struct {
	Type    string `json:"type,omitempty"` // e.g. "CSRFError", "InternalError"
	Details string `json:"details,omitempty"`
}

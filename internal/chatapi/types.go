// Package chatapi is the wire contract of the chat backend and an HTTP client
// for it.
package chatapi

const (
	ChatPath   = "/api/chat"
	ModelsPath = "/api/models"
	HealthPath = "/api/health"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

// ChatResponse is returned by POST /api/chat. Success false carries Error and
// may accompany any HTTP status.
type ChatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	Model     string `json:"model,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse is the body the backend sends with non-2xx statuses.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Path      string `json:"path,omitempty"`
}

// Error codes used in ErrorResponse.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeModelNotAvailable = "MODEL_NOT_AVAILABLE"
	CodeAPIConnection     = "API_CONNECTION_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeInternal          = "INTERNAL_ERROR"
)

package dto

const (
	StatusError = "error"
	StatusFail  = "fail"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Error builds an error body.
func Error(message string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Message: message}
}

// WebhookAck acknowledges a provider notification.
type WebhookAck struct {
	Received bool `json:"received"`
}

// HealthResponse reports dependency health.
type HealthResponse struct {
	Status string `json:"status"`
}

package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// HealthResponse is returned by every service's /health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Package dto defines request/response shapes for the HTTP API.
package dto

// IDResponse is returned when an entity is created.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success envelope.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

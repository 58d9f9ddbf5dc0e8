package dto

// ErrorRes is the common error body returned by auth endpoints.
type ErrorRes struct {
	Error string `json:"error"`
}

// MessageRes is a simple confirmation body.
type MessageRes struct {
	Message string `json:"message"`
}

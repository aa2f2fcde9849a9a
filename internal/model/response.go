package model

import (
	"encoding/json"
	"net/http"
)

// Confirmation messages returned in Response.Body.
const (
	MessageProcessed = "Data processed successfully!"
	MessageEmailSent = "Email sent successfully!"
)

// Response is returned by both Lambda handlers. Body holds a JSON encoded string.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// OK builds a 200 response carrying message as a JSON string.
func OK(message string) Response {
	body, err := json.Marshal(message)
	if err != nil {
		body = []byte(`""`)
	}
	return Response{StatusCode: http.StatusOK, Body: string(body)}
}

package models

import "encoding/json"

// Response is the REST envelope shared with the server.
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

package main

import (
	"encoding/json"
)

// RequestBody is the part of a chat request read for logging. It never
// gates forwarding.
type RequestBody struct {
	Model    string            `json:"model"`
	Stream   bool              `json:"stream"`
	Messages []json.RawMessage `json:"messages"`
}

func ParseRequestBody(data []byte) (RequestBody, error) {
	var requestBody RequestBody
	if err := json.Unmarshal(data, &requestBody); err != nil {
		return RequestBody{}, err
	}
	return requestBody, nil
}

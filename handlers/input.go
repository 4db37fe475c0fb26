package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/upb/identity-core/utils"
)

// inputEnvelope is the request body wrapper shared by all mutating
// endpoints: { "input": { ... } }.
type inputEnvelope[T any] struct {
	Input T `json:"input"`
}

// decodeInput decodes the input envelope from the request body and
// validates the payload struct.
func decodeInput[T any](r *http.Request) (T, error) {
	var envelope inputEnvelope[T]
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		var zero T
		return zero, fmt.Errorf("invalid request body: %w", err)
	}

	if err := utils.ValidateStruct(envelope.Input); err != nil {
		return envelope.Input, err
	}

	return envelope.Input, nil
}

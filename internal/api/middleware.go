package api

import (
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/http/response"
)

// EnvelopeVersion is the envelope format version sent as "v".
const EnvelopeVersion = response.Version

// APIEnvelope wraps successful responses and simple errors.
type APIEnvelope = response.Envelope //nolint:revive // API prefix is intentional for clarity

// APIErrorEnvelope wraps errors that carry a machine-readable code.
type APIErrorEnvelope = response.ErrorEnvelope //nolint:revive // API prefix is intentional for clarity

// EnvelopeTransformer wraps every huma response body in the envelope.
// Coded errors keep code, message and details at the top level so clients
// can switch on the code.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)
	isError := code >= 400

	var apiErr *APIError
	if e, ok := v.(error); ok && errors.As(e, &apiErr) && apiErr.Code != "" {
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if e, ok := v.(error); ok {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   e.Error(),
		}, nil
	}

	if isError {
		return APIEnvelope{Version: EnvelopeVersion, Success: false}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

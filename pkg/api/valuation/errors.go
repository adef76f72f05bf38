package valuation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"fcf_valuation/pkg/core/marketdata"
	"fcf_valuation/pkg/core/valerr"
)

type apiErrorBody struct {
	Code    string         `json:"code" example:"invalid_terminal_spread"`
	Message string         `json:"message" example:"discount rate 0.0200 must exceed terminal growth rate 0.0300"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope {"error": {...}}.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// installErrorEnvelope makes huma's own errors (validation, bad JSON) use the envelope.
func installErrorEnvelope() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}
}

// errorBody classifies err and echoes the submitted request so a client can redisplay it.
func errorBody(err error, request any) (int, apiErrorBody) {
	details := map[string]any{}
	if request != nil {
		details["request"] = request
	}

	if ve, ok := valerr.As(err); ok {
		details["kind"] = ve.Kind
		if ve.Field != "" {
			details["field"] = ve.Field
			details["input"] = ve.Input
		}
		status := http.StatusUnprocessableEntity
		switch ve.Kind {
		case valerr.KindInvalidAssumption, valerr.KindInvalidTerminalSpread:
			status = http.StatusBadRequest
		}
		return status, apiErrorBody{Code: strings.ToLower(string(ve.Kind)), Message: err.Error(), Details: details}
	}
	if errors.Is(err, marketdata.ErrTickerNotFound) {
		return http.StatusNotFound, apiErrorBody{Code: "ticker_not_found", Message: err.Error(), Details: details}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, apiErrorBody{Code: "timeout", Message: err.Error(), Details: details}
	}
	var upstream *marketdata.APIError
	if errors.As(err, &upstream) {
		details["upstream_status"] = upstream.StatusCode
	}
	return http.StatusBadGateway, apiErrorBody{Code: "upstream_error", Message: err.Error(), Details: details}
}

func handleError(err error, request any) huma.StatusError {
	if err == nil {
		return nil
	}
	status, body := errorBody(err, request)
	return &apiError{status: status, Body: body}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/valyala/fasthttp"
)

// APIError is a non-2xx response from the league API. Kind is decoded from the
// error code once here so callers never compare raw codes.
type APIError struct {
	Status  int
	Kind    league.ServerErrorKind
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("league api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("league api %d: %s", e.Status, e.Message)
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == fasthttp.StatusNotFound
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeError understands {"detail":{"code","message"}}, {"detail":"text"}
// and plain text bodies.
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Kind:    league.ServerErrorGeneric,
		Message: fmt.Sprintf("API %d %s", status, fasthttp.StatusMessage(status)),
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			apiErr.Message = text
		}
		return apiErr
	}

	var detail errorDetail
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		apiErr.Code = detail.Code
		apiErr.Kind = league.ServerErrorKindFromCode(detail.Code)
		if detail.Message != "" {
			apiErr.Message = detail.Message
		}
		return apiErr
	}

	var text string
	if err := json.Unmarshal(eb.Detail, &text); err == nil && text != "" {
		apiErr.Message = text
	}
	return apiErr
}

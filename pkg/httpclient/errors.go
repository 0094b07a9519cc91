package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

// downstreamError covers the error bodies the storefront backend produces:
//
//	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}}
//	{"success": false, "error": "Address not found"}
//	{"message": "Unauthorized"}
type downstreamError struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type downstreamErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseErrorBody extracts a code and message from a backend error body.
// Unstructured bodies come back as the trimmed raw text.
func ParseErrorBody(body []byte) (code, message string) {
	var env downstreamError
	if err := json.Unmarshal(body, &env); err != nil {
		return "", strings.TrimSpace(string(body))
	}

	if len(env.Error) > 0 && string(env.Error) != "null" {
		var detail downstreamErrorDetail
		if json.Unmarshal(env.Error, &detail) == nil && (detail.Code != "" || detail.Message != "") {
			return detail.Code, detail.Message
		}
		var text string
		if json.Unmarshal(env.Error, &text) == nil {
			return "", text
		}
	}

	return "", env.Message
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. The response body is fully consumed and
// closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	code, message := ParseErrorBody(bodyBytes)
	return mapDownstreamError(resp.StatusCode, code, message, serviceName)
}

// mapDownstreamError translates a downstream HTTP status code and error code
// into an AppError that preserves the error semantics.
func mapDownstreamError(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusGone:
		return apperrors.Gone(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualifiedMsg, nil)
	default:
		return apperrors.Upstream(status, code, qualifiedMsg)
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

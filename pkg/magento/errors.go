package magento

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a lookup that requires existence matches
// nothing.
var ErrNotFound = errors.New("not found")

// OperationNotAllowedError reports a violation of a model variant's
// lifecycle contract, such as constructing a read-only model for creation
// or saving an immutable model.
type OperationNotAllowedError struct {
	Op       string
	Resource ResourceType
}

func (e *OperationNotAllowedError) Error() string {
	return fmt.Sprintf("operation %q is not allowed for resource %q", e.Op, e.Resource)
}

// ValidationError reports a required field missing from a payload. It is
// returned before any network call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// APIError is a non-success response from the Magento API. Page is the
// 1-based search page being fetched when the failure occurred, or 0 for
// non-paginated requests.
type APIError struct {
	StatusCode int
	Page       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("magento API error (status %d, page %d): %s", e.StatusCode, e.Page, e.Message)
	}
	return fmt.Sprintf("magento API error (status %d): %s", e.StatusCode, e.Message)
}

// apiErrorBody is the error envelope Magento returns with non-2xx statuses.
// Message templates reference parameters as %name or %1, %2, ...
type apiErrorBody struct {
	Message    string          `json:"message"`
	Parameters json.RawMessage `json:"parameters"`
	Errors     []apiErrorItem  `json:"errors"`
}

type apiErrorItem struct {
	Message    string          `json:"message"`
	Parameters json.RawMessage `json:"parameters"`
}

// parseAPIMessage extracts a readable message from a Magento error body,
// substituting %param placeholders from the parameters object or list.
// An unparseable body is returned as-is.
func parseAPIMessage(body []byte) string {
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}
	if envelope.Message == "" && len(envelope.Errors) == 0 {
		return strings.TrimSpace(string(body))
	}

	parts := make([]string, 0, 1+len(envelope.Errors))
	if envelope.Message != "" {
		parts = append(parts, substituteParams(envelope.Message, envelope.Parameters))
	}
	for _, item := range envelope.Errors {
		parts = append(parts, substituteParams(item.Message, item.Parameters))
	}
	return strings.Join(parts, "; ")
}

// substituteParams fills %name placeholders from a parameters map, or
// %1..%n placeholders from a parameters list.
func substituteParams(message string, raw json.RawMessage) string {
	if len(raw) == 0 {
		return message
	}

	var named map[string]any
	if err := json.Unmarshal(raw, &named); err == nil {
		for name, value := range named {
			message = strings.ReplaceAll(message, "%"+name, fmt.Sprintf("%v", value))
		}
		return message
	}

	var listed []any
	if err := json.Unmarshal(raw, &listed); err == nil {
		for i, value := range listed {
			message = strings.ReplaceAll(message, "%"+strconv.Itoa(i+1), fmt.Sprintf("%v", value))
		}
	}
	return message
}

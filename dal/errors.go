package dal

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
)

// Error is the single error shape callers of the backend see. Status is 0
// for transport failures. Message is empty when nothing usable could be
// extracted from the response, in which case callers show their own fallback.
type Error struct {
	Status  int
	Message string
	// Fields holds per-field validation messages in document order
	Fields []FieldError
	cause  error
}

// FieldError is one field's validation messages
type FieldError struct {
	Field    string
	Messages []string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("api error %d: %v", e.Status, e.cause)
	default:
		return fmt.Sprintf("api error %d", e.Status)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// MessageOr returns the extracted message, or fallback when there is none
func (e *Error) MessageOr(fallback string) string {
	if e == nil || e.Message == "" {
		return fallback
	}
	return e.Message
}

// IsUnauthorized reports whether the backend rejected the credentials
func (e *Error) IsUnauthorized() bool {
	return e.Status == 401 || e.Status == 403
}

// MessageOr extracts the user-facing message from any error returned by the
// client, falling back when err is not an *Error or carries no message.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.MessageOr(fallback)
	}
	return fallback
}

var textPolicy = bluemonday.StrictPolicy()

// NormalizeError builds an Error from a non-2xx response. The message is
// taken from, in order: a string "detail" field, the flattened per-field
// messages joined with ", ", or the raw body as text.
func NormalizeError(status int, body []byte) *Error {
	apiErr := &Error{Status: status}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apiErr
	}

	if !gjson.ValidBytes(trimmed) {
		apiErr.Message = plainText(string(trimmed))
		return apiErr
	}

	result := gjson.ParseBytes(trimmed)
	switch {
	case result.IsObject():
		if detail := result.Get("detail"); detail.Type == gjson.String && strings.TrimSpace(detail.Str) != "" {
			apiErr.Message = strings.TrimSpace(detail.Str)
			return apiErr
		}
		var messages []string
		result.ForEach(func(key, value gjson.Result) bool {
			fieldMessages := flatten(value)
			if len(fieldMessages) > 0 {
				apiErr.Fields = append(apiErr.Fields, FieldError{Field: key.String(), Messages: fieldMessages})
				messages = append(messages, fieldMessages...)
			}
			return true
		})
		apiErr.Message = strings.Join(messages, ", ")
	case result.IsArray():
		apiErr.Message = strings.Join(flatten(result), ", ")
	case result.Type == gjson.String:
		apiErr.Message = plainText(result.Str)
	}
	return apiErr
}

// flatten turns a field value into messages, flattening one level of arrays
func flatten(value gjson.Result) []string {
	var out []string
	add := func(v gjson.Result) {
		var s string
		switch v.Type {
		case gjson.String:
			s = v.Str
		case gjson.Null:
			return
		default:
			s = v.Raw
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if value.IsArray() {
		value.ForEach(func(_, v gjson.Result) bool {
			add(v)
			return true
		})
		return out
	}
	add(value)
	return out
}

// plainText strips markup from a raw body, such as an HTML error page
func plainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(s))), " ")
}

func transportError(cause error) *Error {
	return &Error{cause: cause}
}

package capsule

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned for lookups the CapsuleCRM API cannot answer
var ErrUnsupported = errors.New("operation not supported by the CapsuleCRM API")

// FieldError is a single failed validation on one attribute
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + " " + e.Message
}

// RecordInvalid is returned by the Strict operations when a record fails
// validation. No request has been made when it is returned.
type RecordInvalid struct {
	Errors []FieldError
}

func (e *RecordInvalid) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.String())
	}
	return "Validation failed: " + strings.Join(msgs, ", ")
}

// Has reports whether field failed validation
func (e *RecordInvalid) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// APIError is a non-2xx response from the CapsuleCRM API
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// IsRecordInvalid reports whether err is, or wraps, a *RecordInvalid
func IsRecordInvalid(err error) bool {
	var ri *RecordInvalid
	return errors.As(err, &ri)
}

// IsNotFound reports whether err is, or wraps, a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

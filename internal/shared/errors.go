// Package shared holds the error values and helpers used across the
// prediction pipeline and its HTTP front ends.
package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError carries the user facing message of a failure together with
// the HTTP status it maps to. Pipeline stages wrap one of the sentinels below
// with %w so the cause stays in the chain for logging while handlers recover
// the status with errors.As.
type RequestError struct {
	StatusCode int
	Err        error
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("status %d: err %v", r.StatusCode, r.Err)
}

// Message is the text returned to clients.
func (r *RequestError) Message() string {
	return r.Err.Error()
}

var (
	ErrUnsupportedContentKind = &RequestError{Err: errors.New("unsupported content type, use application/json or multipart/form-data"), StatusCode: http.StatusUnsupportedMediaType}
	ErrMissingImageField      = &RequestError{Err: errors.New("no image was sent"), StatusCode: http.StatusBadRequest}
	ErrMalformedImageData     = &RequestError{Err: errors.New("image data could not be decoded"), StatusCode: http.StatusBadRequest}
	ErrPayloadTooLarge        = &RequestError{Err: errors.New("uploaded image is too large"), StatusCode: http.StatusRequestEntityTooLarge}

	ErrModelLoadFailure   = &RequestError{Err: errors.New("model could not be loaded"), StatusCode: http.StatusInternalServerError}
	ErrCatalogUnavailable = &RequestError{Err: errors.New("class names could not be loaded"), StatusCode: http.StatusInternalServerError}
	ErrCatalogMismatch    = &RequestError{Err: errors.New("class names do not match model output"), StatusCode: http.StatusInternalServerError}
	ErrInferenceFailure   = &RequestError{Err: errors.New("prediction failed"), StatusCode: http.StatusInternalServerError}

	ErrInternalServerError = &RequestError{Err: errors.New("internal server error"), StatusCode: http.StatusInternalServerError}
)

// ErrDiagnosticSink marks failures of the diagnostic image sink. It never
// reaches a client.
var ErrDiagnosticSink = errors.New("diagnostic sink failure")

// AsRequestError finds the RequestError in err's chain, falling back to
// ErrInternalServerError for untyped errors.
func AsRequestError(err error) *RequestError {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return ErrInternalServerError
}

// Wrap attaches cause to one of the sentinel request errors.
func Wrap(base *RequestError, cause error) error {
	if cause == nil {
		return base
	}
	return fmt.Errorf("%w: %w", base, cause)
}

// Package httpkit carries the HTTP plumbing shared by the API handlers:
// JSON rendering with safe default headers and request-scoped error capture
// that the logging middleware reads back after the response is written.
package httpkit

import (
	"context"
	"encoding/json"
	"net/http"
)

// HTTPError is an error that knows its HTTP status and keeps the detailed
// cause separate from the client-facing message.
type HTTPError interface {
	HTTPCode() int
	Cause() error
	error
}

// HandlerFunc lets a handler return its response writer instead of writing
// inline: the body runs request parsing and returns either JSON or
// JsonError, and ServeHTTP invokes whichever came back.
type HandlerFunc func(http.ResponseWriter, *http.Request) http.HandlerFunc

func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(WithErrorTracking(r.Context()))

	if respond := h(w, r); respond != nil {
		respond(w, r)
	}
}

// JSON renders data as a 200 response.
func JSON(data any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSONHeaders(w)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JsonError renders the error with its own status code and records it in the
// request context so the access log can report the detailed cause.
func JsonError(err HTTPError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SetError(r.Context(), err)

		writeJSONHeaders(w)
		w.WriteHeader(err.HTTPCode())
		_ = json.NewEncoder(w).Encode(err)
	}
}

var (
	jsonContentType           = []string{"application/json; charset=utf-8"}
	nosniffContentTypeOptions = []string{"nosniff"}
)

// writeJSONHeaders sets the JSON content type and the nosniff option without
// clobbering headers a handler already chose.
func writeJSONHeaders(w http.ResponseWriter) {
	header := w.Header()
	if len(header["Content-Type"]) == 0 {
		header["Content-Type"] = jsonContentType
	}
	if len(header["X-Content-Type-Options"]) == 0 {
		header["X-Content-Type-Options"] = nosniffContentTypeOptions
	}
}

// Request-scoped error capture. The holder travels by pointer so SetError
// works after the context has been propagated into the handler chain.
type ctxKeyError struct{}

type errorHolder struct {
	err error
}

// WithErrorTracking returns a context able to carry one error; an already
// tracking context passes through unchanged.
func WithErrorTracking(ctx context.Context) context.Context {
	if _, ok := ctx.Value(ctxKeyError{}).(*errorHolder); ok {
		return ctx
	}

	return context.WithValue(ctx, ctxKeyError{}, &errorHolder{})
}

// SetError records err for whoever inspects the context later.
func SetError(ctx context.Context, err error) {
	if holder, ok := ctx.Value(ctxKeyError{}).(*errorHolder); ok {
		holder.err = err
	}
}

// Error reads back the recorded error, nil when none was set.
func Error(ctx context.Context) error {
	if holder, ok := ctx.Value(ctxKeyError{}).(*errorHolder); ok {
		return holder.err
	}

	return nil
}

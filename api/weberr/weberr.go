// Package weberr decorates errors with what the HTTP layer needs to render
// them: a response body, a status code and extra log fields.
package weberr

import (
	"errors"
	"net/http"
)

type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

func WithResponse(body any, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

func WithFields(fields map[string]any) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

// Response finds the outermost response attached to err.
func Response(err error) (body any, status int, ok bool) {
	var re *responseError
	if errors.As(err, &re) {
		return re.body, re.status, true
	}
	return nil, 0, false
}

// Status is the status code err renders with, 500 when none is attached.
func Status(err error) int {
	if _, st, ok := Response(err); ok {
		return st
	}
	return http.StatusInternalServerError
}

// Fields merges the log fields attached anywhere along the chain of err,
// outer wrappers winning on duplicate keys.
func Fields(err error) (map[string]any, bool) {
	var fields map[string]any

	for err != nil {
		if fe, ok := err.(*fieldsError); ok {
			if fields == nil {
				fields = make(map[string]any, len(fe.fields))
			}
			for k, v := range fe.fields {
				if _, set := fields[k]; !set {
					fields[k] = v
				}
			}
		}
		err = errors.Unwrap(err)
	}

	return fields, fields != nil
}

type responseError struct {
	error
	body   any
	status int
}

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields map[string]any
}

func (e *fieldsError) Unwrap() error { return e.error }

package client

import (
	"encoding/json"
	"reflect"
)

// Response is a successful (status < 400) API response with its body fully read.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) HasBody() bool {
	return r != nil && len(r.Body) > 0
}

// DecodeInto unmarshals the JSON body into v, which must be a non-nil pointer.
func (r *Response) DecodeInto(v any) error {
	target := typeName(v)
	if !r.HasBody() {
		return NewErrEmptyBody(target)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return NewErrDecode(target, err)
	}
	return nil
}

// Decode unmarshals the JSON body of r into a new value of type T.
func Decode[T any](r *Response) (T, error) {
	var v T
	if err := r.DecodeInto(&v); err != nil {
		return v, err
	}
	return v, nil
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

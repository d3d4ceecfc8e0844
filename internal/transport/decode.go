package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyBody is returned by Decode when the backend replied without content.
var ErrEmptyBody = errors.New("empty response body")

var validate = validator.New()

// Decode validates a gateway response against the wire shape T. A non-JSON body, a body
// of the wrong type, or a struct failing its `validate` tags is a contract violation and
// yields an *Error carrying the response as detail.
func Decode[T any](res *Response) (T, error) {
	var out T
	if res == nil || res.Body == nil {
		return out, ErrEmptyBody
	}
	if _, isText := res.Body.(string); isText && !json.Valid(res.Raw) {
		return out, &Error{Status: res.Status, Message: "response is not JSON", Detail: res.Body}
	}
	if err := json.Unmarshal(res.Raw, &out); err != nil {
		return out, &Error{Status: res.Status, Message: fmt.Sprintf("unexpected response shape: %v", err), Detail: res.Body, Cause: err}
	}
	if err := Validate(out); err != nil {
		return out, &Error{Status: res.Status, Message: fmt.Sprintf("invalid response: %v", err), Detail: res.Body, Cause: err}
	}
	return out, nil
}

// Validate runs struct validation on v, or on every element when v is a slice.
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return validate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

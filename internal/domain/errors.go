package domain

import (
	"errors"
	"strings"
)

var (
	ErrMobileNumberTaken  = errors.New("mobile number already registered")
	ErrInvalidCredentials = errors.New("invalid mobile number or password")
	ErrProductNotFound    = errors.New("product not found")
)

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError 请求字段不合法
type ValidationError struct {
	Fields []FieldError
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Err != nil {
			return "validation failed: " + e.Err.Error()
		}
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " (" + f.Rule + ")"
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

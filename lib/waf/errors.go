package waf

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField        = errors.New("required field is missing")
	ErrDuplicatePriority   = errors.New("duplicate rule priority")
	ErrInvalidPriority     = errors.New("rule priority must be a positive integer")
	ErrDuplicateName       = errors.New("duplicate rule name")
	ErrInvalidAction       = errors.New("action is not valid for this rule")
	ErrInvalidStatement    = errors.New("invalid rule statement")
	ErrDuplicateGeoRule    = errors.New("rule set already contains a geo match rule")
	ErrInvalidScope        = errors.New("unknown web acl scope")
	ErrScopeMismatch       = errors.New("web acl scope does not match resource family")
	ErrMalformedArn        = errors.New("malformed arn")
	ErrUnsupportedResource = errors.New("resource cannot be protected by a web acl")
	ErrAlreadyAssociated   = errors.New("resource already has a web acl")
	ErrEdgeRegion          = errors.New("edge scoped web acls must be created in us-east-1")
)

// ConfigError is a definition-time error tied to the field that caused it.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("waf config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(field string, sentinel error, format string, args ...any) error {
	if format == "" {
		return &ConfigError{Field: field, Err: sentinel}
	}
	return &ConfigError{Field: field, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

package templates

import "errors"

// Template errors.
var (
	ErrEmptyStepName = errors.New("step name is required")
)

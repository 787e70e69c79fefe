package calculation

import "errors"

// ErrMissingRequiredInput is returned when age or sex is absent. It is the only condition
// under which the engine refuses to project.
var ErrMissingRequiredInput = errors.New("missing required input")

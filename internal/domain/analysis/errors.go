package analysis

import "errors"

// ErrInvalidAnalysis is returned when a produced record fails IsValid.
var ErrInvalidAnalysis = errors.New("analysis record is invalid")

package pipeline

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed operator input: bad timestamps, an
// inverted window, out-of-range thresholds, a non-positive limit. It is
// raised before any store access happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// GuardrailError reports a refused run whose window or limit exceeds the
// safety caps without --force --yes. It shares the validation exit code and
// is distinguishable only by message.
type GuardrailError struct {
	Msg string
}

func (e *GuardrailError) Error() string { return e.Msg }

// Guardrailf builds a GuardrailError from a format string.
func Guardrailf(format string, args ...any) error {
	return &GuardrailError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsGuardrail reports whether err is a GuardrailError.
func IsGuardrail(err error) bool {
	var ge *GuardrailError
	return errors.As(err, &ge)
}

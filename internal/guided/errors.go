package guided

import "fmt"

// ConfigurationError reports a frame or parameter combination the filter
// cannot run with. It is returned before any numeric work starts.
type ConfigurationError struct {
	// Field names the offending option or input ("guidance", "planes", ...).
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("guided filter: invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("guided filter: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

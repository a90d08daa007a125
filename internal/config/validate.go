package config

import (
	"fmt"
	"strings"
	"time"

	"grimm.is/rtlink/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "config validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks field values. Defaults must already be applied.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", c.Log.Level),
		})
	}

	if n := c.CreateAttempts(); n < 1 {
		errs = append(errs, ValidationError{
			Field:   "registry.create_attempts",
			Message: fmt.Sprintf("must be at least 1, got %d", n),
		})
	}
	if d, err := time.ParseDuration(c.Registry.RetryDelay); err != nil {
		errs = append(errs, ValidationError{
			Field:   "registry.retry_delay",
			Message: fmt.Sprintf("invalid duration %q", c.Registry.RetryDelay),
		})
	} else if d < 0 {
		errs = append(errs, ValidationError{
			Field:   "registry.retry_delay",
			Message: "must not be negative",
		})
	}

	if c.Netlink.ReceiveBuffer < 0 {
		errs = append(errs, ValidationError{
			Field:   "netlink.receive_buffer",
			Message: "must not be negative",
		})
	}

	return errs
}

package ttcache

import "fmt"

// ErrDriverNotFound is returned when a KV driver name has no registered factory.
var ErrDriverNotFound = fmt.Errorf("ttcache: driver not found")

// ErrInvalidConfig returns a configuration error with a formatted message.
func ErrInvalidConfig(format string, args ...interface{}) error {
	return fmt.Errorf("ttcache: invalid config: "+format, args...)
}

// ErrDriverError returns a driver error with a formatted message.
func ErrDriverError(driver string, err error) error {
	return fmt.Errorf("ttcache: driver '%s' error: %w", driver, err)
}

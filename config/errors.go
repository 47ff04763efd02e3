package config

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is wrapped when a required secret is not configured.
var ErrMissingCredential = errors.New("missing credential")

// ConfigError reports an unusable configuration value detected at startup.
type ConfigError struct {
	Key     string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config %s: %s", e.Key, e.Message)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError for the given environment key.
func NewConfigError(key, message string, err error) *ConfigError {
	return &ConfigError{
		Key:     key,
		Message: message,
		Err:     err,
	}
}

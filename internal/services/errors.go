package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrNoPushTokens = errors.New("No user tokens found")
	ErrLLMDisabled  = errors.New("AI generation is not configured")
	ErrUpstream     = errors.New("upstream request failed")
)

// InvalidInput wraps ErrInvalidInput with a message that is safe to show to the client.
func InvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// PublicMessage returns the client-facing part of an InvalidInput error.
func PublicMessage(err error) string {
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

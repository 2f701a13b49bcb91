package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrDeviceNotFound is returned when the plug alias does not resolve to a host
var ErrDeviceNotFound = errors.New("device not found")

// ErrDeviceUnavailable is returned when the plug can't be reached or rejects a command
var ErrDeviceUnavailable = errors.New("device unavailable")

// ErrSunsetUnavailable is returned when no sunset exists for a date and location
var ErrSunsetUnavailable = errors.New("sunset unavailable")

// ErrInvalidInput is returned when the provided input is invalid
var ErrInvalidInput = errors.New("invalid input")

// LogErrorAndReturn logs an error with structured context and returns it
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	if err == nil {
		return nil
	}

	logger.Error(message, append([]any{"error", err}, args...)...)
	return err
}

// WrapErrorf wraps an error with additional context using fmt.Errorf
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsDeviceNotFound returns true if the error is or wraps ErrDeviceNotFound
func IsDeviceNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound)
}

// IsDeviceUnavailable returns true if the error is or wraps ErrDeviceUnavailable
func IsDeviceUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

// IsSunsetUnavailable returns true if the error is or wraps ErrSunsetUnavailable
func IsSunsetUnavailable(err error) bool {
	return errors.Is(err, ErrSunsetUnavailable)
}

// IsInvalidInput returns true if the error is or wraps ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// DeviceNotFoundf returns a formatted ErrDeviceNotFound error
func DeviceNotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDeviceNotFound)...)
}

// DeviceUnavailablef returns a formatted ErrDeviceUnavailable error
func DeviceUnavailablef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDeviceUnavailable)...)
}

// SunsetUnavailablef returns a formatted ErrSunsetUnavailable error
func SunsetUnavailablef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrSunsetUnavailable)...)
}

// InvalidInputf returns a formatted ErrInvalidInput error
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

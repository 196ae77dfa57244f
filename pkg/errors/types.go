package errors

import (
	"errors"
	"fmt"
)

// ErrorSeverity defines the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic codes reported through the status API and mirrors.
const (
	CodeConfig      = 1
	CodeDevice      = 2
	CodeCalibration = 3
	CodeDispatch    = 4
	CodeGeneric     = 99
)

// BridgeError is the base error type for all bridge errors
type BridgeError struct {
	Op       string        // Operation that failed
	Err      error         // Underlying error
	Severity ErrorSeverity // Error severity
	Code     int           // Diagnostic code
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Severity, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Op)
}

// Unwrap returns the underlying error
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// DeviceError is raised when the input device cannot be read or reopened.
type DeviceError struct {
	BridgeError
	Device string
}

// NewDeviceError creates a critical device error
func NewDeviceError(op string, err error, device string) *DeviceError {
	return &DeviceError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      err,
			Severity: SeverityCritical,
			Code:     CodeDevice,
		},
		Device: device,
	}
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("[%s] device '%s': %s: %v", e.Severity, e.Device, e.Op, e.Err)
}

// CalibrationError means a report does not match the calibration map.
type CalibrationError struct {
	BridgeError
	Field    string
	Required int
	Actual   int
}

// NewCalibrationError reports that field needs required bytes but the report has actual.
func NewCalibrationError(field string, required, actual int) *CalibrationError {
	return &CalibrationError{
		BridgeError: BridgeError{
			Op:       "decode",
			Err:      ErrShortReport,
			Severity: SeverityCritical,
			Code:     CodeCalibration,
		},
		Field:    field,
		Required: required,
		Actual:   actual,
	}
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("[%s] calibration mismatch: field '%s' needs %d bytes, report has %d",
		e.Severity, e.Field, e.Required, e.Actual)
}

// ErrShortReport is wrapped by every CalibrationError.
var ErrShortReport = errors.New("report shorter than calibration requires")

// DispatchError wraps a failed command delivery.
type DispatchError struct {
	BridgeError
	Command   string
	Transport string
}

// NewDispatchError creates a recoverable dispatch error
func NewDispatchError(command string, err error, transport string) *DispatchError {
	return &DispatchError{
		BridgeError: BridgeError{
			Op:       "dispatch",
			Err:      err,
			Severity: SeverityError,
			Code:     CodeDispatch,
		},
		Command:   command,
		Transport: transport,
	}
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("[%s] %s via %s: %v", e.Severity, e.Command, e.Transport, e.Err)
}

// ConfigError represents configuration errors
type ConfigError struct {
	BridgeError
	Field string
}

// NewConfigError creates a new configuration error
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{
		BridgeError: BridgeError{
			Op:       "config",
			Err:      err,
			Severity: SeverityCritical,
			Code:     CodeConfig,
		},
		Field: field,
	}
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] configuration field '%s': %v", e.Severity, e.Field, e.Err)
	}
	return fmt.Sprintf("[%s] configuration: %v", e.Severity, e.Err)
}

package errors

import "errors"

// IsRecoverable reports whether the poll loop may continue after err.
// Errors anywhere in the chain marked critical are not recoverable.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	var deviceErr *DeviceError
	if errors.As(err, &deviceErr) {
		return false
	}
	var calErr *CalibrationError
	if errors.As(err, &calErr) {
		return false
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return false
	}
	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		return dispatchErr.Severity != SeverityCritical
	}
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Severity != SeverityCritical
	}
	return true
}

// GetDiagnosticCode extracts the diagnostic code from an error
func GetDiagnosticCode(err error) int {
	if err == nil {
		return 0
	}

	var deviceErr *DeviceError
	if errors.As(err, &deviceErr) {
		return deviceErr.Code
	}
	var calErr *CalibrationError
	if errors.As(err, &calErr) {
		return calErr.Code
	}
	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		return dispatchErr.Code
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Code
	}
	return CodeGeneric
}

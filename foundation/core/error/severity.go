// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of an error.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-16 v0.2.0: Severity mapping for scene language codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers user mistakes such as malformed scripts or input
	SeverityLow Severity = iota

	// SeverityMedium is the default for errors without a specific code
	SeverityMedium

	// SeverityHigh covers storage and infrastructure failures
	SeverityHigh

	// SeverityCritical makes the service unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical
	case CodeDatabaseError, CodeConfigError:
		return SeverityHigh
	case CodeLexical, CodeSyntax, CodeSemantic, CodeRuntimeType, CodeRuntimeEval,
		CodeSessionNotFound, CodeInvalidInput, CodeValidationFailed:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

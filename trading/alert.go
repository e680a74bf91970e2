package trading

import (
	"fmt"
	"time"
)

// Alert severities, ordered from informational to critical.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Alert is a risk or operational notification raised by the monitoring
// layer.
type Alert struct {
	Type      string    `json:"type" validate:"required"`
	Severity  string    `json:"severity" validate:"oneof=LOW MEDIUM HIGH CRITICAL"`
	Message   string    `json:"message" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlert builds an alert stamped with the current UTC time.
func NewAlert(alertType, severity, message string) Alert {
	return Alert{
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Validate checks the severity literal and required text fields.
func (a Alert) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("alert: %w", err)
	}
	return nil
}

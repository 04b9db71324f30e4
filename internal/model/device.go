package model

// Power states of a device.
const (
	StatusOn  = "on"
	StatusOff = "off"
)

// Diagnostic outcomes of a device.
const (
	HealthUnknown = "unknown"
	HealthHealthy = "healthy"
	HealthIssue   = "issue"
)

// Device is a controllable smart-home device.
// Status holds the power state, Health the last diagnostic outcome.
type Device struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `gorm:"not null;default:'off'" json:"status"`
	Health string `gorm:"not null;default:'unknown'" json:"health"`
}

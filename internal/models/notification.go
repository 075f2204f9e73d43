package models

// Severity selects how a notification is routed and rendered downstream.
type Severity string

const (
	SeverityAlert   Severity = "alert"
	SeveritySummary Severity = "summary"
	SeverityError   Severity = "error"
)

// Notification is a formatted, human-readable message ready for the transport.
// It is derived from a report or an error and never persisted.
type Notification struct {
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
}

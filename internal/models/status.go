package models

// Status is the lifecycle state shared by every record kind.
type Status string

const (
	StatusActive   Status = "active"
	StatusHold     Status = "hold"
	StatusDisabled Status = "disabled"
)

// IsValidStatus reports whether s is one of the known statuses.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusHold, StatusDisabled:
		return true
	default:
		return false
	}
}

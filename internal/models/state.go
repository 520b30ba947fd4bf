package models

// DueTasksState is the three-level badge indicator shown on a button.
// It is always derived from a count, never set from raw script output.
type DueTasksState int

const (
	DueTasksStateNone  DueTasksState = 0
	DueTasksStateShort DueTasksState = 1
	DueTasksStateLong  DueTasksState = 2
)

// String returns the state name.
func (s DueTasksState) String() string {
	switch s {
	case DueTasksStateNone:
		return "none"
	case DueTasksStateShort:
		return "short"
	case DueTasksStateLong:
		return "long"
	default:
		return "unknown"
	}
}

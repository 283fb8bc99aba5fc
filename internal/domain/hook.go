package domain

// HookStatus represents the current status of a key hook.
type HookStatus string

const (
	HookStatusAvailable HookStatus = "AVAILABLE"
	HookStatusOccupied  HookStatus = "OCCUPIED"
)

// Hook represents a numbered peg on the physical key board.
// Hooks are created once at pool initialization and never destroyed;
// only their status and bound vehicle change.
type Hook struct {
	Number         int
	Status         HookStatus
	BoundVehicleID string
}

// HookStats is a read-only snapshot of the hook pool.
type HookStats struct {
	Total     int
	Available int
	Occupied  int
}

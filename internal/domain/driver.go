package domain

// DriverStatus represents the current status of a valet driver.
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "OFFLINE"
	DriverStatusAvailable DriverStatus = "AVAILABLE"
	DriverStatusBusy      DriverStatus = "BUSY"
)

// Driver represents a valet driver executing retrieval tasks.
// A driver holds at most one active request at a time; Status is BUSY
// exactly when ActiveRequestID is set.
type Driver struct {
	ID              string
	Name            string
	Phone           string
	Status          DriverStatus
	ActiveRequestID string
}

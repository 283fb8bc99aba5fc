package domain

import "time"

// VehicleStatus represents the current status of a parked vehicle.
type VehicleStatus string

const (
	VehicleStatusParked             VehicleStatus = "PARKED"
	VehicleStatusRetrievalRequested VehicleStatus = "RETRIEVAL_REQUESTED"
	VehicleStatusRetrieving         VehicleStatus = "RETRIEVING"
	VehicleStatusRetrieved          VehicleStatus = "RETRIEVED"
)

// Vehicle represents a checked-in vehicle bound to a card and a hook.
type Vehicle struct {
	ID             string
	CardID         string
	HookNumber     int
	SequenceNumber int64
	LicensePlate   string
	Make           string
	Model          string
	Color          string
	CustomerPhone  string
	Status         VehicleStatus
	CheckInTime    time.Time
	CheckOutTime   time.Time
}

// vehicleStatusRank orders statuses along the monotonic retrieval path.
var vehicleStatusRank = map[VehicleStatus]int{
	VehicleStatusParked:             0,
	VehicleStatusRetrievalRequested: 1,
	VehicleStatusRetrieving:         2,
	VehicleStatusRetrieved:          3,
}

// CanTransitionVehicle reports whether a vehicle status change is legal.
// Statuses advance one step at a time along
// PARKED -> RETRIEVAL_REQUESTED -> RETRIEVING -> RETRIEVED; the only
// permitted regression is back to PARKED when a retrieval is cancelled.
func CanTransitionVehicle(from, to VehicleStatus) bool {
	fromRank, ok := vehicleStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := vehicleStatusRank[to]
	if !ok {
		return false
	}

	// Cancellation path: any non-retrieved state may revert to PARKED.
	if to == VehicleStatusParked {
		return from != VehicleStatusRetrieved
	}

	return toRank == fromRank+1
}

// IsActive reports whether the vehicle is still in the valet's custody.
func (v *Vehicle) IsActive() bool {
	return v.Status != VehicleStatusRetrieved
}

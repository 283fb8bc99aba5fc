package domain

import "time"

// RequestStatus represents the current status of a retrieval request.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusAssigned   RequestStatus = "ASSIGNED"
	RequestStatusKeysPicked RequestStatus = "KEYS_PICKED"
	RequestStatusWalking    RequestStatus = "WALKING"
	RequestStatusDriving    RequestStatus = "DRIVING"
	RequestStatusReady      RequestStatus = "READY"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// PaymentMethod represents how a retrieval is paid for.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// RetrievalRequest tracks a customer's ask to have their car brought back,
// from submission through driver execution steps to handoff.
type RetrievalRequest struct {
	ID               string
	VehicleID        string
	CardID           string
	IsPriority       bool
	PaymentMethod    PaymentMethod
	Amount           float64
	TipAmount        float64
	Status           RequestStatus
	AssignedDriverID string
	PaymentConfirmed bool
	CardVerified     bool
	RequestedAt      time.Time
	AssignedAt       time.Time
	ReadyAt          time.Time
	CompletedAt      time.Time
	CancelledAt      time.Time
	CancelReason     string
}

// advanceOrder is the driver execution path a request walks through after
// assignment. READY -> COMPLETED is excluded: completion goes through the
// handover checks, never through a plain advance.
var advanceOrder = map[RequestStatus]RequestStatus{
	RequestStatusAssigned:   RequestStatusKeysPicked,
	RequestStatusKeysPicked: RequestStatusWalking,
	RequestStatusWalking:    RequestStatusDriving,
	RequestStatusDriving:    RequestStatusReady,
}

// NextRequestStatus returns the status that follows from in the driver
// execution path. ok is false when from is not an advanceable status.
func NextRequestStatus(from RequestStatus) (RequestStatus, bool) {
	next, ok := advanceOrder[from]
	return next, ok
}

// IsTerminal reports whether the request has reached a final state.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// IsActive reports whether the request still occupies the vehicle's single
// active-request slot.
func (s RequestStatus) IsActive() bool {
	return !s.IsTerminal()
}

// CanCancel reports whether a request in this status may be cancelled.
// READY is excluded: the physical handoff is imminent and payment may
// already have been collected.
func (s RequestStatus) CanCancel() bool {
	return s.IsActive() && s != RequestStatusReady
}

// ActiveRequestStatuses lists every non-terminal request status, in
// execution order. Used for queue snapshots and the duplicate-request guard.
func ActiveRequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusPending,
		RequestStatusAssigned,
		RequestStatusKeysPicked,
		RequestStatusWalking,
		RequestStatusDriving,
		RequestStatusReady,
	}
}

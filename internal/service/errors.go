package service

import "errors"

var (
	// ErrNoHooksAvailable is returned when every hook on the board is occupied.
	ErrNoHooksAvailable = errors.New("no hooks available")

	// ErrHookNotOccupied is returned when releasing a hook that is already free.
	ErrHookNotOccupied = errors.New("hook not occupied")

	// ErrCardAlreadyBound is returned when binding a card that is still bound
	// to a vehicle in custody.
	ErrCardAlreadyBound = errors.New("card already bound to an active vehicle")

	// ErrCardNotBound is returned when releasing a card that holds no binding.
	ErrCardNotBound = errors.New("card not bound")

	// ErrUnsafeToRelease is returned when a card release or clear would strand
	// a vehicle that is still parked.
	ErrUnsafeToRelease = errors.New("unsafe to release card while its vehicle is in custody")

	// ErrVehicleAlreadyParked is returned when checking in a plate that is
	// already in custody.
	ErrVehicleAlreadyParked = errors.New("vehicle already parked")

	// ErrDuplicateActiveRequest is returned when a vehicle already has an
	// active retrieval request.
	ErrDuplicateActiveRequest = errors.New("active retrieval request already exists for vehicle")

	// ErrDriverBusy is returned when assigning a driver who already holds an
	// active request.
	ErrDriverBusy = errors.New("driver already has an active request")

	// ErrDriverHasActiveRequest is returned when toggling a driver offline
	// while a task is still in progress.
	ErrDriverHasActiveRequest = errors.New("driver has an active request in progress")

	// ErrRequestNotPending is returned when assigning a request that has
	// already been claimed or resolved.
	ErrRequestNotPending = errors.New("request not pending")

	// ErrStatusMismatch is returned when an advance's expected status does not
	// match the request's current status.
	ErrStatusMismatch = errors.New("request status mismatch")

	// ErrRequestNotActive is returned when acting on a completed or cancelled
	// request.
	ErrRequestNotActive = errors.New("request already completed or cancelled")

	// ErrRequestNotReady is returned when completing a request that has not
	// reached the ready state.
	ErrRequestNotReady = errors.New("request not ready for handover")

	// ErrPaymentNotConfirmed is returned when completing a handover before the
	// payment collaborator confirmed collection.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")

	// ErrCardNotVerified is returned when completing a handover before the
	// driver scanned the customer's card.
	ErrCardNotVerified = errors.New("card not verified")

	// ErrCardMismatch is returned when the scanned card does not match the one
	// bound at check-in.
	ErrCardMismatch = errors.New("scanned card does not match vehicle")

	// ErrCannotCancelReadyRequest is returned when cancelling a request whose
	// handoff is imminent.
	ErrCannotCancelReadyRequest = errors.New("cannot cancel a ready request")

	// ErrInvalidTransition is returned on an illegal vehicle status change.
	ErrInvalidTransition = errors.New("invalid vehicle status transition")

	// ErrInvalidPlate is returned when a license plate is empty.
	ErrInvalidPlate = errors.New("invalid license plate")

	// ErrInvalidCardID is returned when a card ID is empty.
	ErrInvalidCardID = errors.New("invalid card id")

	// ErrInvalidVehicleID is returned when a vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidRequestID is returned when a request ID is empty.
	ErrInvalidRequestID = errors.New("invalid request id")

	// ErrInvalidDriverID is returned when a driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidDriverName is returned when a driver name is empty.
	ErrInvalidDriverName = errors.New("invalid driver name")

	// ErrInvalidStatus is returned when a status value is not advanceable or
	// not settable by the caller.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

package repository

import "context"

// Repos bundles transaction-scoped repositories handed to a WithinTx
// callback. Every use case that touches multiple aggregates runs through
// this so the whole step commits or rolls back as one.
type Repos struct {
	Hooks    HookRepository
	Cards    CardRepository
	Vehicles VehicleRepository
	Requests RequestRepository
	Drivers  DriverRepository
	Payments PaymentRepository
}

// TxManager runs a function inside a single database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

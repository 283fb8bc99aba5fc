package postgres

import (
	"context"
	"database/sql"

	"valet/internal/repository"
)

// TxManager runs use-case steps inside a single database transaction,
// handing the callback transaction-scoped repositories.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a transaction, runs fn with repositories bound to it,
// and commits. Any error from fn rolls the whole step back.
func (m *TxManager) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.Repos{
		Hooks:    NewHookRepositoryWithTx(tx),
		Cards:    NewCardRepositoryWithTx(tx),
		Vehicles: NewVehicleRepositoryWithTx(tx),
		Requests: NewRequestRepositoryWithTx(tx),
		Drivers:  NewDriverRepositoryWithTx(tx),
		Payments: NewPaymentRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ repository.TxManager = (*TxManager)(nil)

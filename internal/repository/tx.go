package repository

import "context"

// TxRepositories are repositories bound to a single transaction.
type TxRepositories struct {
	Trips    TripRepository
	Payments PaymentRepository
	Masters  MasterRepository
}

// Transactor runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

package repository

import (
	"context"
)

// UnitOfWork manages repositories and transaction scope for one command.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	BookingRepository() BookingRepository

	Close() error
	IsInTransaction() bool
}

// UnitOfWorkFactory creates new unit of work instances
type UnitOfWorkFactory interface {
	CreateUnitOfWork() UnitOfWork
}

// TransactionalRepository extends repository with transaction support
type TransactionalRepository interface {
	SetTransaction(tx interface{})
	GetTransaction() interface{}
	IsTransactional() bool
}

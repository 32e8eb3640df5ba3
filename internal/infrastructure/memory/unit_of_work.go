package memory

import (
	"context"

	"kazi-marketplace/internal/domain/repository"
)

// UnitOfWork is a no-op transactional wrapper around the in-memory
// repository. The repository's own locking provides the atomicity; Begin and
// Commit exist to satisfy the command handlers' contract.
type UnitOfWork struct {
	bookings      *BookingRepository
	inTransaction bool
}

func NewUnitOfWork(bookings *BookingRepository) *UnitOfWork {
	return &UnitOfWork{bookings: bookings}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.inTransaction = true
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.inTransaction = false
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	u.inTransaction = false
	return nil
}

func (u *UnitOfWork) BookingRepository() repository.BookingRepository {
	return u.bookings
}

func (u *UnitOfWork) Close() error {
	u.inTransaction = false
	return nil
}

func (u *UnitOfWork) IsInTransaction() bool {
	return u.inTransaction
}

// UnitOfWorkFactory creates unit of work instances sharing one in-memory
// repository.
type UnitOfWorkFactory struct {
	bookings *BookingRepository
}

func NewUnitOfWorkFactory(bookings *BookingRepository) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{bookings: bookings}
}

func (f *UnitOfWorkFactory) CreateUnitOfWork() repository.UnitOfWork {
	return NewUnitOfWork(f.bookings)
}

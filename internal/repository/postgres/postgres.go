package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"garage-booking/internal/logger"
	"garage-booking/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.VehicleRepository
	repository.CatalogRepository
	repository.LedgerRepository
	repository.InventoryRepository
	repository.CustomerRepository
	repository.StaffRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		BookingRepository:   NewBookingRepository(db),
		VehicleRepository:   NewVehicleRepository(db),
		CatalogRepository:   NewCatalogRepository(db),
		LedgerRepository:    NewLedgerRepository(db),
		InventoryRepository: NewInventoryRepository(db),
		CustomerRepository:  NewCustomerRepository(db),
		StaffRepository:     NewStaffRepository(db),
	}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithinTx begins a transaction, hands fn repositories bound to it and
// commits when fn returns nil. Any error or panic rolls back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newTxScope(sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txScope struct {
	tx        *sql.Tx
	bookings  repository.BookingRepository
	vehicles  repository.VehicleRepository
	catalog   repository.CatalogRepository
	ledger    repository.LedgerRepository
	inventory repository.InventoryRepository
}

func newTxScope(tx *sql.Tx) *txScope {
	return &txScope{
		tx:        tx,
		bookings:  NewBookingRepository(tx),
		vehicles:  NewVehicleRepository(tx),
		catalog:   NewCatalogRepository(tx),
		ledger:    NewLedgerRepository(tx),
		inventory: NewInventoryRepository(tx),
	}
}

func (t *txScope) Bookings() repository.BookingRepository    { return t.bookings }
func (t *txScope) Vehicles() repository.VehicleRepository    { return t.vehicles }
func (t *txScope) Catalog() repository.CatalogRepository     { return t.catalog }
func (t *txScope) Ledger() repository.LedgerRepository       { return t.ledger }
func (t *txScope) Inventory() repository.InventoryRepository { return t.inventory }

// Savepoint isolates fn so a failed statement inside it does not abort the
// whole transaction. name must be a plain SQL identifier.
func (t *txScope) Savepoint(ctx context.Context, name string, fn func() error) error {
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint %s: %w", name, rbErr))
		}
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

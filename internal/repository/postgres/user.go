package postgres

import (
	"context"
	"database/sql"
	"errors"

	"garage-booking/internal/domain"
	"garage-booking/internal/repository"
)

type customerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `customer_id, first_name, last_name, email, COALESCE(telephone, ''), password_hash, is_active, created_on`

func (r *customerRepository) scan(row rowScanner) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Telephone, &c.PasswordHash, &c.IsActive, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id))
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`, email))
}

type staffRepository struct {
	db DBTX
}

func NewStaffRepository(db DBTX) repository.StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	s := &domain.Staff{}
	query := `SELECT staff_id, username, first_name, last_name, password_hash, role, COALESCE(location_id, 0), is_active
	          FROM staff WHERE username = $1`
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&s.ID, &s.Username, &s.FirstName, &s.LastName, &s.PasswordHash, &s.Role, &s.LocationID, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"garage-booking/internal/domain"
	"garage-booking/internal/repository"
)

type vehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetByRegistration(ctx context.Context, customerID int64, registration string) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT vehicle_id, customer_id, registration_number, COALESCE(make, ''), COALESCE(vehicle_colour, ''), COALESCE(year, 0), COALESCE(fuel_type, '')
	          FROM vehicles WHERE customer_id = $1 AND registration_number = $2 AND is_deleted = FALSE`
	err := r.db.QueryRowContext(ctx, query, customerID, registration).
		Scan(&v.ID, &v.CustomerID, &v.Registration, &v.Make, &v.Colour, &v.Year, &v.FuelType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (customer_id, registration_number, make, vehicle_colour, year, fuel_type, is_deleted)
	          VALUES ($1, $2, $3, $4, $5, $6, FALSE) RETURNING vehicle_id`
	return r.db.QueryRowContext(ctx, query, v.CustomerID, v.Registration, v.Make, v.Colour, v.Year, v.FuelType).Scan(&v.ID)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"garage-booking/internal/domain"
	"garage-booking/internal/repository"

	"github.com/lib/pq"
)

type catalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

const serviceQuery = `SELECT s.service_id, s.service_name, s.cost_pence, s.duration, s.section_id, ss.section_name
	FROM services s JOIN service_sections ss ON ss.section_id = s.section_id`

func (r *catalogRepository) ListServices(ctx context.Context) ([]domain.Service, error) {
	return r.queryServices(ctx, serviceQuery+` ORDER BY ss.section_name, s.service_name`)
}

// GetServicesByIDs returns each distinct service once, whatever the repetition in ids.
func (r *catalogRepository) GetServicesByIDs(ctx context.Context, ids []int64) ([]domain.Service, error) {
	return r.queryServices(ctx, serviceQuery+` WHERE s.service_id = ANY($1) ORDER BY s.service_id`, pq.Array(ids))
}

func (r *catalogRepository) queryServices(ctx context.Context, query string, args ...any) ([]domain.Service, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.CostPence, &s.DurationHours, &s.SectionID, &s.SectionName); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *catalogRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	query := `SELECT location_id, location_name, COALESCE(address, ''), COALESCE(postcode, ''), COALESCE(telephone, '')
	          FROM garage_locations ORDER BY location_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Postcode, &l.Telephone); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *catalogRepository) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	l := &domain.Location{}
	query := `SELECT location_id, location_name, COALESCE(address, ''), COALESCE(postcode, ''), COALESCE(telephone, '')
	          FROM garage_locations WHERE location_id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.Address, &l.Postcode, &l.Telephone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *catalogRepository) ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error) {
	query := `SELECT location_id, day_of_week, COALESCE(to_char(opening_time, 'HH24:MI'), ''), COALESCE(to_char(closing_time, 'HH24:MI'), ''), is_closed
	          FROM garage_opening_hours ORDER BY location_id, day_of_week`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []domain.OpeningHours
	for rows.Next() {
		var h domain.OpeningHours
		if err := rows.Scan(&h.LocationID, &h.DayOfWeek, &h.OpeningTime, &h.ClosingTime, &h.IsClosed); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

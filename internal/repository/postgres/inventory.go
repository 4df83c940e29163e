package postgres

import (
	"context"
	"database/sql"
	"errors"

	"garage-booking/internal/domain"
	"garage-booking/internal/repository"

	"github.com/lib/pq"
)

type inventoryRepository struct {
	db DBTX
}

func NewInventoryRepository(db DBTX) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

const itemColumns = `item_id, item_name, COALESCE(item_description, ''), stock_level, stock_threshold`

func (r *inventoryRepository) List(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY item_name`)
}

func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE stock_level <= stock_threshold ORDER BY stock_level, item_name`)
}

func (r *inventoryRepository) queryItems(ctx context.Context, query string) ([]domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.StockLevel, &it.StockThreshold); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *inventoryRepository) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	it := &domain.InventoryItem{}
	err := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE item_id = $1`, id).
		Scan(&it.ID, &it.Name, &it.Description, &it.StockLevel, &it.StockThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *inventoryRepository) ListLinks(ctx context.Context, serviceIDs []int64) ([]domain.ServiceInventoryLink, error) {
	query := `SELECT service_id, item_id, quantity_required FROM service_inventory_links
	          WHERE service_id = ANY($1) ORDER BY service_id, item_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(serviceIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.ServiceInventoryLink
	for rows.Next() {
		var l domain.ServiceInventoryLink
		if err := rows.Scan(&l.ServiceID, &l.ItemID, &l.QuantityRequired); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *inventoryRepository) AdjustStock(ctx context.Context, itemID int64, delta int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE inventory_items SET stock_level = stock_level + $1 WHERE item_id = $2`, delta, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

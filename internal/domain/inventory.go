package domain

type StockStatus string

const (
	StockOutOfStock         StockStatus = "Out of Stock"
	StockReorderImmediately StockStatus = "Reorder Immediately"
	StockLow                StockStatus = "Low Stock"
	StockSufficient         StockStatus = "Sufficient Stock"
)

type InventoryItem struct {
	ID             int64  `json:"item_id"`
	Name           string `json:"item_name"`
	Description    string `json:"item_description"`
	StockLevel     int32  `json:"stock_level"`
	StockThreshold int32  `json:"stock_threshold"`

	// StockStatus is filled in on the way out; see Status.
	StockStatus StockStatus `json:"stock_status,omitempty"`
}

// Status classifies the stock level against the reorder threshold.
func (i InventoryItem) Status() StockStatus {
	switch {
	case i.StockLevel <= 0:
		return StockOutOfStock
	case i.StockLevel <= i.StockThreshold/2:
		return StockReorderImmediately
	case i.StockLevel <= i.StockThreshold:
		return StockLow
	default:
		return StockSufficient
	}
}

// ServiceInventoryLink states how many units of an item one service consumes.
type ServiceInventoryLink struct {
	ServiceID        int64 `json:"service_id"`
	ItemID           int64 `json:"item_id"`
	QuantityRequired int32 `json:"quantity_required"`
}

// StockMovements totals, per item, the units consumed by the given lines.
func StockMovements(lines []BookingLine, links []ServiceInventoryLink) map[int64]int32 {
	byService := make(map[int64][]ServiceInventoryLink)
	for _, l := range links {
		byService[l.ServiceID] = append(byService[l.ServiceID], l)
	}
	moves := make(map[int64]int32)
	for _, line := range lines {
		for _, link := range byService[line.ServiceID] {
			moves[link.ItemID] += link.QuantityRequired * line.Quantity
		}
	}
	return moves
}

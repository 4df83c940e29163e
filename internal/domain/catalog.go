package domain

// Service is a catalog entry that can be added to a booking.
type Service struct {
	ID            int64   `json:"service_id"`
	Name          string  `json:"service_name"`
	CostPence     Pence   `json:"cost"`
	DurationHours float64 `json:"duration"`
	SectionID     int64   `json:"section_id"`
	SectionName   string  `json:"section_name"`
}

type Location struct {
	ID           int64          `json:"location_id"`
	Name         string         `json:"location_name"`
	Address      string         `json:"address"`
	Postcode     string         `json:"postcode"`
	Telephone    string         `json:"telephone"`
	OpeningHours []OpeningHours `json:"opening_hours"`
}

// OpeningHours is the opening window of a location on one weekday (0 = Sunday).
type OpeningHours struct {
	LocationID  int64  `json:"location_id"`
	DayOfWeek   int    `json:"day_of_week"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
	IsClosed    bool   `json:"is_closed"`
}

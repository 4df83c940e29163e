package domain

import "strings"

type Vehicle struct {
	ID           int64  `json:"vehicle_id"`
	CustomerID   int64  `json:"customer_id"`
	Registration string `json:"registration_number"`
	Make         string `json:"make"`
	Colour       string `json:"vehicle_colour"`
	Year         int32  `json:"year"`
	FuelType     string `json:"fuel_type"`
}

// VehicleDetails are the descriptive attributes returned by a registration lookup.
type VehicleDetails struct {
	Registration string `json:"registration_number"`
	Make         string `json:"make"`
	Colour       string `json:"colour"`
	Year         int32  `json:"year"`
	FuelType     string `json:"fuel_type"`
}

// NormalizeRegistration uppercases and strips spaces, "ab12 cde" -> "AB12CDE".
func NormalizeRegistration(reg string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reg), " ", ""))
}

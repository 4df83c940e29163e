package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
)

const dvlaEnquiryPath = "/vehicle-enquiry/v1/vehicles"

type dvlaClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewDVLALookup returns a VehicleLookup backed by the DVLA Vehicle Enquiry API.
func NewDVLALookup(baseURL, apiKey string, timeout time.Duration) VehicleLookup {
	return &dvlaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type dvlaVehicle struct {
	RegistrationNumber string `json:"registrationNumber"`
	Make               string `json:"make"`
	Colour             string `json:"colour"`
	YearOfManufacture  int32  `json:"yearOfManufacture"`
	FuelType           string `json:"fuelType"`
}

func (c *dvlaClient) Lookup(ctx context.Context, registration string) (*domain.VehicleDetails, error) {
	reg := domain.NormalizeRegistration(registration)
	payload, err := json.Marshal(map[string]string{"registrationNumber": reg})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+dvlaEnquiryPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	logger.ExternalServiceCall("dvla", "VehicleEnquiry", "registration", reg)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.ExternalServiceResult("dvla", "VehicleEnquiry", err)
		return nil, fmt.Errorf("dvla request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.ExternalServiceResult("dvla", "VehicleEnquiry", domain.ErrVehicleNotFound)
		return nil, domain.ErrVehicleNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("dvla returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		logger.ExternalServiceResult("dvla", "VehicleEnquiry", err)
		return nil, err
	}

	var v dvlaVehicle
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		logger.ExternalServiceResult("dvla", "VehicleEnquiry", err)
		return nil, fmt.Errorf("decode dvla response: %w", err)
	}
	logger.ExternalServiceResult("dvla", "VehicleEnquiry", nil)

	if v.RegistrationNumber == "" {
		v.RegistrationNumber = reg
	}
	return &domain.VehicleDetails{
		Registration: domain.NormalizeRegistration(v.RegistrationNumber),
		Make:         v.Make,
		Colour:       v.Colour,
		Year:         v.YearOfManufacture,
		FuelType:     v.FuelType,
	}, nil
}

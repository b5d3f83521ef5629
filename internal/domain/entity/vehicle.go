package entity

import "time"

// Vehicle represents a customer's vehicle. The plate number is unique
// (case-insensitive) within the owning customer's branch.
type Vehicle struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	PlateNumber string    `json:"plate_number"`
	Make        string    `json:"make,omitempty"`
	Model       string    `json:"model,omitempty"`
	VehicleType string    `json:"vehicle_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

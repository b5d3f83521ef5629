package entity

import (
	"fmt"
	"strings"
	"time"
)

// Order type constants
const (
	OrderTypeService = "service"
	OrderTypeSales   = "sales"
)

// Order status constants. An order with StatusCreated is a "started" order:
// an in-progress job not yet invoiced.
const (
	OrderStatusCreated   = "created"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order represents a service or sales job for a customer.
type Order struct {
	ID                int64      `json:"id"`
	OrderNumber       string     `json:"order_number"`
	BranchID          int64      `json:"branch_id"`
	CustomerID        int64      `json:"customer_id"`
	VehicleID         *int64     `json:"vehicle_id,omitempty"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	Description       string     `json:"description,omitempty"`
	EstimatedDuration int        `json:"estimated_duration,omitempty"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// servicePrefixes are the description lines managed by finalization. They are
// stripped before re-appending so repeated finalization never duplicates them.
var servicePrefixes = []string{"services:", "add-ons:", "tire services:"}

// AppendServiceSelection amends the order description with the selected
// service names. Previously appended service lines are removed first.
func (o *Order) AppendServiceSelection(names []string) {
	if len(names) == 0 {
		return
	}
	var kept []string
	for _, line := range strings.Split(o.Description, "\n") {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		managed := false
		for _, p := range servicePrefixes {
			if strings.HasPrefix(trimmed, p) {
				managed = true
				break
			}
		}
		if !managed && strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	label := "Services"
	if o.Type == OrderTypeSales {
		label = "Tire Services"
	}
	kept = append(kept, fmt.Sprintf("%s: %s", label, strings.Join(names, ", ")))
	o.Description = strings.Join(kept, "\n")
}

package entity

import "time"

// Branch is the tenant scope. Every customer, order and invoice lookup or
// creation is filtered by branch.
type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

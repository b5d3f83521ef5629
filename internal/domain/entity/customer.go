package entity

import (
	"strings"
	"time"
)

// Customer type constants
const (
	CustomerTypePersonal   = "personal"
	CustomerTypeCompany    = "company"
	CustomerTypeNGO        = "ngo"
	CustomerTypeGovernment = "government"
)

// Prefixes identifying a temporary placeholder customer keyed by plate number.
const (
	TempCustomerNamePrefix  = "Plate "
	TempCustomerPhonePrefix = "PLATE_"
)

// SyntheticPhonePrefix marks deterministic phone keys derived from a customer
// name when no real phone number was extracted. The prefix guarantees the key
// can never collide with a real phone number.
const SyntheticPhonePrefix = "INVOICE_"

// Customer represents a customer within a branch. Within a branch no two
// records should represent the same real-world entity; the resolution cascade
// in the customer resolver enforces this rather than a database constraint.
type Customer struct {
	ID               int64     `json:"id"`
	BranchID         int64     `json:"branch_id"`
	FullName         string    `json:"full_name"`
	Phone            string    `json:"phone"`
	Whatsapp         string    `json:"whatsapp,omitempty"`
	Email            string    `json:"email,omitempty"`
	Address          string    `json:"address,omitempty"`
	OrganizationName string    `json:"organization_name,omitempty"`
	TaxNumber        string    `json:"tax_number,omitempty"`
	CustomerType     string    `json:"customer_type"`
	PersonalSubtype  string    `json:"personal_subtype,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsTemporary reports whether the customer is a plate-keyed placeholder.
// Temporary customers never receive a new order from the resolver; they are
// only reused.
func (c *Customer) IsTemporary() bool {
	return strings.HasPrefix(c.FullName, TempCustomerNamePrefix) &&
		strings.HasPrefix(c.Phone, TempCustomerPhonePrefix)
}

// SyntheticPhoneForName derives the deterministic phone key used to
// deduplicate name-only customers: uppercase, truncated to 50 characters,
// spaces replaced with underscores, prefixed so it is visibly synthetic.
func SyntheticPhoneForName(name string) string {
	upper := []rune(strings.ToUpper(name))
	if len(upper) > 50 {
		upper = upper[:50]
	}
	return SyntheticPhonePrefix + strings.ReplaceAll(string(upper), " ", "_")
}

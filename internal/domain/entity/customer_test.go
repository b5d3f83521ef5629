package entity

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSyntheticPhoneForName(t *testing.T) {
	assert.Equal(t, "INVOICE_ACME_MOTORS_LTD", SyntheticPhoneForName("Acme Motors Ltd"))
	assert.Equal(t, "INVOICE_JANE", SyntheticPhoneForName("jane"))

	long := strings.Repeat("A B", 40)
	got := SyntheticPhoneForName(long)
	assert.True(t, strings.HasPrefix(got, SyntheticPhonePrefix))
	assert.Len(t, got, len(SyntheticPhonePrefix)+50, "name truncated to 50 characters")

	accented := strings.Repeat("é", 60)
	got = SyntheticPhoneForName(accented)
	assert.Equal(t, 50, utf8.RuneCountInString(strings.TrimPrefix(got, SyntheticPhonePrefix)),
		"truncation counts characters, not bytes")
	assert.True(t, utf8.ValidString(got))

	// Deterministic: same name, same key.
	assert.Equal(t, SyntheticPhoneForName("Acme Motors Ltd"), SyntheticPhoneForName("ACME MOTORS LTD"))
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name     string
		customer Customer
		want     bool
	}{
		{
			"plate placeholder",
			Customer{FullName: TempCustomerNamePrefix + "KAA 001A", Phone: TempCustomerPhonePrefix + "KAA001A"},
			true,
		},
		{
			"real customer",
			Customer{FullName: "Jane Mwangi", Phone: "0711000111"},
			false,
		},
		{
			"name prefix alone is not enough",
			Customer{FullName: TempCustomerNamePrefix + "KAA 001A", Phone: "0711000111"},
			false,
		},
		{
			"phone prefix alone is not enough",
			Customer{FullName: "Jane Mwangi", Phone: TempCustomerPhonePrefix + "KAA001A"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.customer.IsTemporary())
		})
	}
}

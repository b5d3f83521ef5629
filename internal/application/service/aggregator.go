package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
	"github.com/motorsvc/invoice-tracker/internal/money"
)

// AggregatedLineItem is one deduplicated line after collapsing repeated
// extracted/submitted rows. Exactly one exists per distinct key, and Qty is
// always positive.
type AggregatedLineItem struct {
	Key         string
	Code        string
	Description string
	Qty         decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
}

// FormLineItem is one row of the form-submission wire shape: parallel arrays
// zipped into per-index entries. Same semantics as RawLineItem but with a
// single price field.
type FormLineItem struct {
	Description string
	Code        string
	Qty         string
	Price       string
	Unit        string
}

// normalizeKey lower-cases a description and collapses internal whitespace so
// cosmetic differences between repeated lines map to one bucket.
func normalizeKey(desc string) string {
	return strings.Join(strings.Fields(strings.ToLower(desc)), " ")
}

type extractionBucket struct {
	code        string
	description string
	qty         decimal.Decimal
	unit        string
	rates       []decimal.Decimal
	values      []decimal.Decimal
}

// AggregateExtractedItems collapses extracted line items into one entry per
// key (item code, else normalized description). Quantities accumulate; the
// unit price is the arithmetic mean of observed rates, falling back to the
// sum of observed line values divided by the final quantity.
//
// Repeated lines for the same key are assumed to be splits of one true line
// rather than distinct charges at different prices. The form-submission path
// uses a different rule (first non-zero price wins); see AggregateFormItems.
func AggregateExtractedItems(items []entity.RawLineItem) []AggregatedLineItem {
	buckets := make(map[string]*extractionBucket)
	var order []string

	for _, it := range items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			desc = "Item"
		}
		code := strings.TrimSpace(it.ItemCode)
		if code == "" {
			code = strings.TrimSpace(it.Code)
		}
		key := code
		if key == "" {
			key = normalizeKey(desc)
		}

		b, ok := buckets[key]
		if !ok {
			b = &extractionBucket{code: code, description: desc}
			buckets[key] = b
			order = append(order, key)
		}

		b.qty = b.qty.Add(money.Quantity(it.Qty))
		if b.unit == "" {
			b.unit = strings.TrimSpace(it.Unit)
		}
		if rate := money.Amount(it.Rate); !rate.IsZero() {
			b.rates = append(b.rates, rate)
		}
		if value := money.Amount(it.Value); !value.IsZero() {
			b.values = append(b.values, value)
		}
	}

	out := make([]AggregatedLineItem, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		qty := b.qty
		if qty.LessThanOrEqual(decimal.Zero) {
			qty = decimal.NewFromInt(1)
		}

		unitPrice := decimal.Zero
		switch {
		case len(b.rates) > 0:
			sum := decimal.Zero
			for _, r := range b.rates {
				sum = sum.Add(r)
			}
			unitPrice = sum.Div(decimal.NewFromInt(int64(len(b.rates))))
		case len(b.values) > 0:
			sum := decimal.Zero
			for _, v := range b.values {
				sum = sum.Add(v)
			}
			unitPrice = sum.Div(qty)
		}

		out = append(out, AggregatedLineItem{
			Key:         key,
			Code:        b.code,
			Description: b.description,
			Qty:         qty,
			Unit:        b.unit,
			UnitPrice:   unitPrice,
		})
	}
	return out
}

// AggregateFormItems collapses form-submitted line items. Unlike the
// extraction path, the first non-zero price wins outright; later prices for
// the same key are ignored. This divergence is deliberate: form rows carry a
// user-confirmed unit price, not an extraction guess worth averaging.
func AggregateFormItems(items []FormLineItem) []AggregatedLineItem {
	type formBucket struct {
		code        string
		description string
		qty         decimal.Decimal
		unit        string
		unitPrice   decimal.Decimal
	}

	buckets := make(map[string]*formBucket)
	var order []string

	for _, it := range items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			continue
		}
		code := strings.TrimSpace(it.Code)
		key := code
		if key == "" {
			key = normalizeKey(desc)
		}

		price := money.Amount(it.Price)
		unit := strings.TrimSpace(it.Unit)

		b, ok := buckets[key]
		if !ok {
			b = &formBucket{
				code:        code,
				description: desc,
				unit:        unit,
				unitPrice:   price,
			}
			buckets[key] = b
			order = append(order, key)
		}

		b.qty = b.qty.Add(money.Quantity(it.Qty))
		if b.unitPrice.IsZero() && !price.IsZero() {
			b.unitPrice = price
		}
		if b.unit == "" && unit != "" {
			b.unit = unit
		}
	}

	out := make([]AggregatedLineItem, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		qty := b.qty
		if qty.LessThanOrEqual(decimal.Zero) {
			qty = decimal.NewFromInt(1)
		}
		out = append(out, AggregatedLineItem{
			Key:         key,
			Code:        b.code,
			Description: b.description,
			Qty:         qty,
			Unit:        b.unit,
			UnitPrice:   b.unitPrice,
		})
	}
	return out
}

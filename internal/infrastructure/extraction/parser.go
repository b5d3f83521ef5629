package extraction

import (
	"regexp"
	"strings"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// ruleParser reads invoice headers and line items out of raw document text
// using labelled-field patterns. It serves the common supplier layouts where
// fields carry recognizable labels; anything it cannot read falls through to
// the AI extractor.
type ruleParser struct{}

var headerPatterns = map[string]*regexp.Regexp{
	"invoice_no":     regexp.MustCompile(`(?im)^\s*(?:tax\s+)?invoice\s*(?:no|number|#)?\.?\s*[:#]\s*([A-Za-z0-9/_-]+)`),
	"code_no":        regexp.MustCompile(`(?im)^\s*code\s*no\.?\s*[:#]\s*([A-Za-z0-9/_-]+)`),
	"reference":      regexp.MustCompile(`(?im)^\s*(?:ref(?:erence)?|lpo)\s*(?:no\.?)?\s*[:#]\s*([A-Za-z0-9/_-]+)`),
	"date":           regexp.MustCompile(`(?im)^\s*(?:invoice\s+)?date\s*[:#]\s*([0-9]{1,4}[/-][0-9]{1,2}[/-][0-9]{1,4})`),
	"customer_name":  regexp.MustCompile(`(?im)^\s*(?:customer(?:\s+name)?|bill(?:ed)?\s+to|m/s)\s*[:.]\s*(.+?)\s*$`),
	"phone":          regexp.MustCompile(`(?im)^\s*(?:phone|tel|mobile|cell)\.?\s*(?:no\.?)?\s*[:#]\s*(\+?[0-9][0-9 ()-]{5,})`),
	"email":          regexp.MustCompile(`(?im)^\s*e?-?mail\s*[:#]\s*(\S+@\S+)`),
	"address":        regexp.MustCompile(`(?im)^\s*(?:address|p\.?o\.?\s*box)\s*[:.]\s*(.+?)\s*$`),
	"subtotal":       regexp.MustCompile(`(?im)^\s*(?:sub\s*-?\s*total|net\s+(?:total|amount|value))\s*[:]?\s*(?:[A-Z]{2,3}\.?\s*)?([0-9][0-9,]*\.?[0-9]*)`),
	"tax":            regexp.MustCompile(`(?im)^\s*(?:vat|tax)(?:\s*\(?\s*[0-9.]+\s*%\s*\)?)?\s*[:]?\s*(?:[A-Z]{2,3}\.?\s*)?([0-9][0-9,]*\.?[0-9]*)`),
	"total":          regexp.MustCompile(`(?im)^\s*(?:grand\s+total|total\s+(?:amount|due)|gross\s+total|total)\s*[:]?\s*(?:[A-Z]{2,3}\.?\s*)?([0-9][0-9,]*\.?[0-9]*)`),
	"tax_rate":       regexp.MustCompile(`(?im)\b(?:vat|tax)\s*\(?\s*([0-9]+(?:\.[0-9]+)?)\s*%`),
	"payment":        regexp.MustCompile(`(?im)^\s*payment\s*(?:method|mode|terms)?\s*[:.]\s*(.+?)\s*$`),
	"delivery":       regexp.MustCompile(`(?im)^\s*delivery\s*(?:terms)?\s*[:.]\s*(.+?)\s*$`),
	"remarks":        regexp.MustCompile(`(?im)^\s*remarks?\s*[:.]\s*(.+?)\s*$`),
	"attended_by":    regexp.MustCompile(`(?im)^\s*(?:attended|prepared|served)\s+by\s*[:.]\s*(.+?)\s*$`),
	"attention":      regexp.MustCompile(`(?im)^\s*(?:kind\s+)?att(?:entio)?n\.?\s*[:.]\s*(.+?)\s*$`),
	"seller_name":    regexp.MustCompile(`(?im)^\s*(?:from|seller|supplier)\s*[:.]\s*(.+?)\s*$`),
	"seller_tax_id":  regexp.MustCompile(`(?im)^\s*(?:pin|tin|tax\s*(?:id|pin))\s*(?:no\.?)?\s*[:#]\s*([A-Za-z0-9]+)`),
	"seller_vat_reg": regexp.MustCompile(`(?im)^\s*vat\s*(?:reg(?:istration)?)?\s*(?:no\.?)?\s*[:#]\s*([A-Za-z0-9]+)`),
}

// lineItemPattern matches tabular rows of the shape:
//
//	[CODE] description qty [unit] rate value
//
// Rate and value need a decimal point so bare quantities and codes are not
// mistaken for amounts.
var lineItemPattern = regexp.MustCompile(`(?m)^\s*(?:([A-Z][A-Z0-9/-]{1,14})\s{2,})?(\S.{2,}?)\s{2,}([0-9]+(?:\.[0-9]+)?)\s+(?:([A-Za-z]{1,6})\s+)?([0-9][0-9,]*\.[0-9]{1,2})\s+([0-9][0-9,]*\.[0-9]{1,2})\s*$`)

// itemSectionEnd marks labels after which rows are totals, not items.
var itemSectionEnd = regexp.MustCompile(`(?i)^\s*(?:sub\s*-?\s*total|net\s+total|vat|tax|grand\s+total|total)\b`)

func (p *ruleParser) Parse(text string) *entity.ExtractionResult {
	header := entity.ExtractionHeader{}

	extract := func(key string) string {
		if m := headerPatterns[key].FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
		return ""
	}

	header.InvoiceNo = extract("invoice_no")
	header.CodeNo = extract("code_no")
	header.Reference = extract("reference")
	header.Date = extract("date")
	header.CustomerName = extract("customer_name")
	header.Phone = extract("phone")
	header.Email = extract("email")
	header.Address = extract("address")
	header.Subtotal = extract("subtotal")
	header.Tax = extract("tax")
	header.TaxRate = extract("tax_rate")
	header.Total = extract("total")
	header.PaymentMethod = extract("payment")
	header.DeliveryTerms = extract("delivery")
	header.Remarks = extract("remarks")
	header.AttendedBy = extract("attended_by")
	header.KindAttention = extract("attention")
	header.SellerName = extract("seller_name")
	header.SellerTaxID = extract("seller_tax_id")
	header.SellerVATReg = extract("seller_vat_reg")

	items := p.parseItems(text)

	usable := header.CustomerName != "" || header.InvoiceNo != "" || header.Total != "" || len(items) > 0
	return &entity.ExtractionResult{
		Success: usable,
		Header:  header,
		Items:   items,
		RawText: text,
	}
}

func (p *ruleParser) parseItems(text string) []entity.RawLineItem {
	var items []entity.RawLineItem
	for _, line := range strings.Split(text, "\n") {
		if itemSectionEnd.MatchString(line) {
			continue
		}
		m := lineItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items = append(items, entity.RawLineItem{
			Code:        strings.TrimSpace(m[1]),
			Description: strings.TrimSpace(m[2]),
			Qty:         m[3],
			Unit:        strings.TrimSpace(m[4]),
			Rate:        m[5],
			Value:       m[6],
		})
	}
	return items
}

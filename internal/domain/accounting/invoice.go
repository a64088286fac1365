package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus is the lifecycle state of a remote invoice.
type VoucherStatus string

const (
	VoucherStatusDraft  VoucherStatus = "draft"
	VoucherStatusOpen   VoucherStatus = "open"
	VoucherStatusPaid   VoucherStatus = "paid"
	VoucherStatusVoided VoucherStatus = "voided"
)

// TaxType declares how the line item amounts of an invoice are to be read.
type TaxType string

const (
	TaxTypeNet   TaxType = "net"
	TaxTypeGross TaxType = "gross"
)

// LineItemType is the remote classification of an invoice position.
type LineItemType string

const (
	LineItemTypeMaterial LineItemType = "material"
	LineItemTypeService  LineItemType = "service"
)

// UnitPrice is the per-unit price block of an invoice line item. Amounts are
// rounded to four decimal places before submission.
type UnitPrice struct {
	Currency          string
	NetAmount         decimal.Decimal
	GrossAmount       decimal.Decimal
	TaxRatePercentage decimal.Decimal
}

// LineItem is one position of an invoice. ArticleID links the position to a
// remote catalog article.
type LineItem struct {
	ArticleID      string
	Type           LineItemType
	Name           string
	Description    string
	Quantity       decimal.Decimal
	UnitName       string
	UnitPrice      UnitPrice
	LineItemAmount decimal.Decimal
}

// TotalPrice carries the order-level totals. They are taken from the order
// itself rather than summed from line items so that host-side discounts and
// rounding stay authoritative.
type TotalPrice struct {
	Currency         string
	TotalNetAmount   decimal.Decimal
	TotalGrossAmount decimal.Decimal
	TotalTaxAmount   decimal.Decimal
}

// InvoiceAddress is the recipient block printed on the invoice.
type InvoiceAddress struct {
	Name        string
	Street      string
	Zip         string
	City        string
	CountryCode string
	ContactID   string
}

// PaymentConditions describes the payment terms printed on the invoice.
type PaymentConditions struct {
	PaymentTermLabel    string
	PaymentTermDuration int
}

// ShippingConditions describes the delivery terms of an invoice.
type ShippingConditions struct {
	ShippingDate time.Time
	ShippingType string
}

// InvoiceDraft is a complete invoice to submit to the remote system.
type InvoiceDraft struct {
	VoucherDate        time.Time
	Language           string
	Address            InvoiceAddress
	LineItems          []LineItem
	TotalPrice         TotalPrice
	TaxType            TaxType
	PaymentConditions  PaymentConditions
	ShippingConditions ShippingConditions
	Title              string
	Introduction       string
	Remark             string
}

// CreatedResource is the remote API's acknowledgement of a created entity.
type CreatedResource struct {
	ID          string
	ResourceURI string
}

// Invoice is the remote state of a submitted invoice.
type Invoice struct {
	ID            string
	VoucherStatus VoucherStatus
	VoucherNumber string
}

// IsDraft reports whether the invoice has not been finalized yet.
func (i *Invoice) IsDraft() bool {
	return i.VoucherStatus == VoucherStatusDraft
}

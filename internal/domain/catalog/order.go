package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxLine is one tax component applied to an order item or shipping method.
// Rate is a percentage.
type TaxLine struct {
	Rate decimal.Decimal
}

// OrderItem is one purchased position of an order. UnitPrice is the gross
// per-unit price in major currency units.
type OrderItem struct {
	ID              string
	ProductID       string
	VariantID       string
	ProductTitle    string
	ProductType     string
	VariantTitle    string
	VariantSKU      string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxLines        []TaxLine
	VariantMetadata map[string]string
}

// ShippingMethod is one shipping option applied to an order. Amount is the
// gross shipping price.
type ShippingMethod struct {
	Name     string
	Amount   decimal.Decimal
	TaxLines []TaxLine
}

// OrderAddress is a billing or shipping address captured with the order.
type OrderAddress struct {
	FirstName   string
	LastName    string
	Company     string
	Address1    string
	City        string
	PostalCode  string
	CountryCode string
	Phone       string
}

// Customer is the account the order was placed under.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Order is a placed order as delivered by the host commerce platform.
// Subtotal is the net order total, Total the gross one; both come from the
// host's own tax calculation.
type Order struct {
	ID              string
	DisplayID       int64
	Email           string
	CurrencyCode    string
	CreatedAt       time.Time
	Customer        *Customer
	BillingAddress  *OrderAddress
	ShippingAddress *OrderAddress
	Items           []OrderItem
	ShippingMethods []ShippingMethod
	Subtotal        decimal.Decimal
	Total           decimal.Decimal
}

// EffectiveTaxRate returns the first tax line rate, or the fallback when the
// item carries no tax lines.
func EffectiveTaxRate(lines []TaxLine, fallback decimal.Decimal) decimal.Decimal {
	if len(lines) > 0 {
		return lines[0].Rate
	}
	return fallback
}

// IsCoffeeItem reports whether an order item is a coffee product. The host
// stores the product type inconsistently across imports, so the title is
// checked as well.
func IsCoffeeItem(item OrderItem) bool {
	if strings.EqualFold(item.ProductType, "coffee") {
		return true
	}
	title := strings.ToLower(item.ProductTitle)
	return strings.Contains(title, "coffee") || strings.Contains(title, "kaffee")
}

// AllItemsCoffee reports whether every item of the order is a coffee product.
// An empty order does not count as a coffee order.
func AllItemsCoffee(items []OrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !IsCoffeeItem(item) {
			return false
		}
	}
	return true
}

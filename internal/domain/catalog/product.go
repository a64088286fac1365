// Package catalog models the host commerce platform's view of products,
// variants and orders as consumed by the accounting integration.
package catalog

import "github.com/shopspring/decimal"

// MetadataKeyArticleID is the variant metadata key under which the remote
// accounting article id is written back to the host catalog.
const MetadataKeyArticleID = "lexoffice_uuid"

// Product is a host catalog product with its variants.
type Product struct {
	ID          string
	Title       string
	Handle      string
	Description string
	Type        string
	TaxRates    []decimal.Decimal
	Variants    []Variant
}

// Variant is a purchasable variation of a product. PriceCents is the net
// unit price in minor currency units.
type Variant struct {
	ID         string
	ProductID  string
	SKU        string
	Title      string
	PriceCents int64
	TaxRates   []decimal.Decimal
	Metadata   map[string]string
}

// Price returns the variant unit price in major currency units.
func (v *Variant) Price() decimal.Decimal {
	return decimal.New(v.PriceCents, -2)
}

// ArticleNumber returns the identifier used as the remote article number.
// The SKU wins; variants without one fall back to their id.
func (v *Variant) ArticleNumber() string {
	if v.SKU != "" {
		return v.SKU
	}
	return v.ID
}

// DisplayTitle returns the human readable variant label used in remote
// article titles.
func (v *Variant) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	if v.SKU != "" {
		return v.SKU
	}
	return "Variant " + v.ID
}

// TaxRate resolves the effective tax rate for a variant. Product level rates
// win over variant level rates; without either the German standard rate of
// 19 percent applies.
func TaxRate(product *Product, variant *Variant) decimal.Decimal {
	if product != nil && len(product.TaxRates) > 0 {
		return product.TaxRates[0]
	}
	if variant != nil && len(variant.TaxRates) > 0 {
		return variant.TaxRates[0]
	}
	return decimal.NewFromInt(19)
}

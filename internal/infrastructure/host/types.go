package host

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warawul/backend/internal/domain/catalog"
)

// Wire types of the host admin API. Monetary amounts come in minor currency
// units, tax rates as plain numbers.

type productEnvelope struct {
	Product productBody `json:"product"`
}

type productListEnvelope struct {
	Products []productBody `json:"products"`
}

type variantEnvelope struct {
	Variant variantBody `json:"variant"`
}

type orderEnvelope struct {
	Order orderBody `json:"order"`
}

type productTypeBody struct {
	Value string `json:"value"`
}

type productBody struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	Description string           `json:"description"`
	Type        *productTypeBody `json:"type"`
	TaxRates    []float64        `json:"tax_rates"`
	Variants    []variantBody    `json:"variants"`
}

type variantBody struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	SKU       string            `json:"sku"`
	Title     string            `json:"title"`
	Prices    []priceBody       `json:"prices"`
	TaxRates  []float64         `json:"tax_rates"`
	Metadata  map[string]string `json:"metadata"`
}

type priceBody struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

type taxLineBody struct {
	Rate float64 `json:"rate"`
}

type orderItemProductBody struct {
	Title string           `json:"title"`
	Type  *productTypeBody `json:"type"`
}

type orderItemBody struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	ProductID   string                `json:"product_id"`
	ProductType string                `json:"product_type"`
	Quantity    int64                 `json:"quantity"`
	UnitPrice   int64                 `json:"unit_price"`
	TaxLines    []taxLineBody         `json:"tax_lines"`
	Variant     *variantBody          `json:"variant"`
	Product     *orderItemProductBody `json:"product"`
}

type shippingMethodBody struct {
	Name     string        `json:"name"`
	Price    int64         `json:"price"`
	TaxLines []taxLineBody `json:"tax_lines"`
}

type addressBody struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company"`
	Address1    string `json:"address_1"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

type customerBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type orderBody struct {
	ID              string               `json:"id"`
	DisplayID       int64                `json:"display_id"`
	Email           string               `json:"email"`
	CurrencyCode    string               `json:"currency_code"`
	CreatedAt       time.Time            `json:"created_at"`
	Customer        *customerBody        `json:"customer"`
	BillingAddress  *addressBody         `json:"billing_address"`
	ShippingAddress *addressBody         `json:"shipping_address"`
	Items           []orderItemBody      `json:"items"`
	ShippingMethods []shippingMethodBody `json:"shipping_methods"`
	Subtotal        int64                `json:"subtotal"`
	Total           int64                `json:"total"`
}

type metadataUpdateBody struct {
	Metadata map[string]string `json:"metadata"`
}

type notificationBody struct {
	To       string         `json:"to"`
	Channel  string         `json:"channel"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

func productFromBody(body *productBody) *catalog.Product {
	product := &catalog.Product{
		ID:          body.ID,
		Title:       body.Title,
		Handle:      body.Handle,
		Description: body.Description,
		TaxRates:    ratesFromFloats(body.TaxRates),
	}
	if body.Type != nil {
		product.Type = body.Type.Value
	}
	for i := range body.Variants {
		product.Variants = append(product.Variants, *variantFromBody(&body.Variants[i]))
	}
	return product
}

func variantFromBody(body *variantBody) *catalog.Variant {
	variant := &catalog.Variant{
		ID:        body.ID,
		ProductID: body.ProductID,
		SKU:       body.SKU,
		Title:     body.Title,
		TaxRates:  ratesFromFloats(body.TaxRates),
		Metadata:  body.Metadata,
	}
	if len(body.Prices) > 0 {
		variant.PriceCents = body.Prices[0].Amount
	}
	return variant
}

func orderFromBody(body *orderBody) *catalog.Order {
	order := &catalog.Order{
		ID:           body.ID,
		DisplayID:    body.DisplayID,
		Email:        body.Email,
		CurrencyCode: body.CurrencyCode,
		CreatedAt:    body.CreatedAt,
		Subtotal:     decimal.New(body.Subtotal, -2),
		Total:        decimal.New(body.Total, -2),
	}
	if body.Customer != nil {
		order.Customer = &catalog.Customer{
			FirstName: body.Customer.FirstName,
			LastName:  body.Customer.LastName,
			Email:     body.Customer.Email,
			Phone:     body.Customer.Phone,
		}
	}
	order.BillingAddress = addressFromBody(body.BillingAddress)
	order.ShippingAddress = addressFromBody(body.ShippingAddress)

	for i := range body.Items {
		order.Items = append(order.Items, orderItemFromBody(&body.Items[i]))
	}
	for i := range body.ShippingMethods {
		method := &body.ShippingMethods[i]
		order.ShippingMethods = append(order.ShippingMethods, catalog.ShippingMethod{
			Name:     method.Name,
			Amount:   decimal.New(method.Price, -2),
			TaxLines: taxLinesFromBody(method.TaxLines),
		})
	}
	return order
}

func orderItemFromBody(body *orderItemBody) catalog.OrderItem {
	item := catalog.OrderItem{
		ID:           body.ID,
		ProductID:    body.ProductID,
		ProductTitle: body.Title,
		ProductType:  body.ProductType,
		Quantity:     decimal.NewFromInt(body.Quantity),
		UnitPrice:    decimal.New(body.UnitPrice, -2),
		TaxLines:     taxLinesFromBody(body.TaxLines),
	}
	if body.Variant != nil {
		item.VariantID = body.Variant.ID
		item.VariantTitle = body.Variant.Title
		item.VariantSKU = body.Variant.SKU
		item.VariantMetadata = body.Variant.Metadata
	}
	// Items from expanded order payloads carry the type on the nested
	// product rather than the flat product_type field.
	if body.Product != nil {
		if item.ProductType == "" && body.Product.Type != nil {
			item.ProductType = body.Product.Type.Value
		}
		if item.ProductTitle == "" {
			item.ProductTitle = body.Product.Title
		}
	}
	return item
}

func addressFromBody(body *addressBody) *catalog.OrderAddress {
	if body == nil {
		return nil
	}
	return &catalog.OrderAddress{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Company:     body.Company,
		Address1:    body.Address1,
		City:        body.City,
		PostalCode:  body.PostalCode,
		CountryCode: body.CountryCode,
		Phone:       body.Phone,
	}
}

func ratesFromFloats(rates []float64) []decimal.Decimal {
	if len(rates) == 0 {
		return nil
	}
	out := make([]decimal.Decimal, 0, len(rates))
	for _, rate := range rates {
		out = append(out, decimal.NewFromFloat(rate))
	}
	return out
}

func taxLinesFromBody(lines []taxLineBody) []catalog.TaxLine {
	if len(lines) == 0 {
		return nil
	}
	out := make([]catalog.TaxLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, catalog.TaxLine{Rate: decimal.NewFromFloat(line.Rate)})
	}
	return out
}

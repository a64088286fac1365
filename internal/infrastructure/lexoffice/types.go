package lexoffice

// Wire representations of the lexoffice REST resources. Monetary values are
// plain JSON numbers on this API, so the payloads use float64 and the
// conversion to decimals happens at the adapter boundary.

// voucherDateFormat is the timestamp layout the API expects on vouchers.
const voucherDateFormat = "2006-01-02T15:04:05.000-07:00"

type articlePriceBody struct {
	NetPrice     float64 `json:"netPrice"`
	GrossPrice   float64 `json:"grossPrice,omitempty"`
	LeadingPrice string  `json:"leadingPrice"`
	TaxRate      float64 `json:"taxRate"`
}

type articleBody struct {
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Type          string           `json:"type"`
	ArticleNumber string           `json:"articleNumber,omitempty"`
	UnitName      string           `json:"unitName"`
	Price         articlePriceBody `json:"price"`
	Version       *int             `json:"version,omitempty"`
}

type articleResponse struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Type          string           `json:"type"`
	ArticleNumber string           `json:"articleNumber"`
	UnitName      string           `json:"unitName"`
	Version       int              `json:"version"`
	Price         articlePriceBody `json:"price"`
}

type articleListResponse struct {
	Content []articleResponse `json:"content"`
}

type contactRolesBody struct {
	Customer struct{} `json:"customer"`
}

type contactCompanyBody struct {
	Name string `json:"name"`
}

type contactPersonBody struct {
	Salutation string `json:"salutation,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName"`
}

type contactAddressBody struct {
	Street      string `json:"street,omitempty"`
	Zip         string `json:"zip,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"countryCode"`
}

type contactAddressesBody struct {
	Billing []contactAddressBody `json:"billing,omitempty"`
}

type contactEmailsBody struct {
	Business []string `json:"business,omitempty"`
}

type contactPhonesBody struct {
	Business []string `json:"business,omitempty"`
}

type contactBody struct {
	Version        int                   `json:"version"`
	Roles          contactRolesBody      `json:"roles"`
	Company        *contactCompanyBody   `json:"company,omitempty"`
	Person         *contactPersonBody    `json:"person,omitempty"`
	Addresses      *contactAddressesBody `json:"addresses,omitempty"`
	EmailAddresses *contactEmailsBody    `json:"emailAddresses,omitempty"`
	PhoneNumbers   *contactPhonesBody    `json:"phoneNumbers,omitempty"`
}

type contactResponse struct {
	ID             string                `json:"id"`
	Company        *contactCompanyBody   `json:"company"`
	Person         *contactPersonBody    `json:"person"`
	Addresses      *contactAddressesBody `json:"addresses"`
	EmailAddresses *contactEmailsBody    `json:"emailAddresses"`
	PhoneNumbers   *contactPhonesBody    `json:"phoneNumbers"`
}

type invoiceAddressBody struct {
	ContactID   string `json:"contactId,omitempty"`
	Name        string `json:"name"`
	Street      string `json:"street,omitempty"`
	Zip         string `json:"zip,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"countryCode"`
}

type invoiceUnitPriceBody struct {
	Currency          string  `json:"currency"`
	NetAmount         float64 `json:"netAmount"`
	GrossAmount       float64 `json:"grossAmount"`
	TaxRatePercentage float64 `json:"taxRatePercentage"`
}

type invoiceLineItemBody struct {
	ID             string               `json:"id,omitempty"`
	Type           string               `json:"type"`
	Name           string               `json:"name"`
	Description    string               `json:"description,omitempty"`
	Quantity       float64              `json:"quantity"`
	UnitName       string               `json:"unitName"`
	UnitPrice      invoiceUnitPriceBody `json:"unitPrice"`
	LineItemAmount float64              `json:"lineItemAmount"`
}

type invoiceTotalPriceBody struct {
	Currency         string  `json:"currency"`
	TotalNetAmount   float64 `json:"totalNetAmount"`
	TotalGrossAmount float64 `json:"totalGrossAmount"`
	TotalTaxAmount   float64 `json:"totalTaxAmount"`
}

type invoiceTaxConditionsBody struct {
	TaxType string `json:"taxType"`
}

type invoicePaymentConditionsBody struct {
	PaymentTermLabel    string `json:"paymentTermLabel"`
	PaymentTermDuration int    `json:"paymentTermDuration"`
}

type invoiceShippingConditionsBody struct {
	ShippingDate string `json:"shippingDate"`
	ShippingType string `json:"shippingType"`
}

type invoiceBody struct {
	VoucherDate        string                        `json:"voucherDate"`
	Language           string                        `json:"language,omitempty"`
	Address            invoiceAddressBody            `json:"address"`
	LineItems          []invoiceLineItemBody         `json:"lineItems"`
	TotalPrice         invoiceTotalPriceBody         `json:"totalPrice"`
	TaxConditions      invoiceTaxConditionsBody      `json:"taxConditions"`
	PaymentConditions  invoicePaymentConditionsBody  `json:"paymentConditions"`
	ShippingConditions invoiceShippingConditionsBody `json:"shippingConditions"`
	Title              string                        `json:"title,omitempty"`
	Introduction       string                        `json:"introduction,omitempty"`
	Remark             string                        `json:"remark,omitempty"`
}

type invoiceResponse struct {
	ID            string `json:"id"`
	VoucherStatus string `json:"voucherStatus"`
	VoucherNumber string `json:"voucherNumber"`
}

type createdResourceResponse struct {
	ID          string `json:"id"`
	ResourceURI string `json:"resourceUri"`
}

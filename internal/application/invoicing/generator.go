package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/accounting"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/syncmap"
)

// Invoice texts printed on every generated voucher.
const (
	invoiceTitle        = "Rechnung"
	invoiceLanguage     = "de"
	paymentTermLabel    = "Zahlbar innerhalb von 14 Tagen ohne Abzug."
	paymentTermDuration = 14
	invoiceRemark       = "Vielen Dank für Ihren Einkauf!"
)

// shippingSKUPrefix keys deterministic shipping articles on the remote side.
const shippingSKUPrefix = "SHIP-"

const pdfContentType = "application/pdf"

// Generator maps placed orders to finalized remote invoices.
type Generator struct {
	client   accounting.Client
	storage  ObjectStorage
	resolver articleResolver
	logger   *zap.Logger
	brand    string
}

// GeneratorOption is a functional option for configuring the Generator
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the logger for the generator
func WithGeneratorLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates an invoice generator. brand is the shop name used in
// the archived PDF filename.
func NewGenerator(client accounting.Client, objectStorage ObjectStorage, store syncmap.Store, brand string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		client:  client,
		storage: objectStorage,
		logger:  zap.NewNop(),
		brand:   brand,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.resolver = articleResolver{client: client, store: store, logger: g.logger}
	return g
}

// GenerateInvoice creates, finalizes and archives the invoice for an order.
// Contact creation failures are swallowed; every later step is fatal for
// this order's invoice.
func (g *Generator) GenerateInvoice(ctx context.Context, order *catalog.Order) (*GeneratedInvoice, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	contactID := g.createContact(ctx, order)

	lineItems, err := g.buildLineItems(ctx, order)
	if err != nil {
		return nil, err
	}

	draft := accounting.InvoiceDraft{
		VoucherDate: order.CreatedAt,
		Language:    invoiceLanguage,
		Address:     g.buildAddress(order, contactID),
		LineItems:   lineItems,
		TotalPrice: accounting.TotalPrice{
			Currency:         strings.ToUpper(order.CurrencyCode),
			TotalNetAmount:   order.Subtotal.Round(4),
			TotalGrossAmount: order.Total.Round(4),
			TotalTaxAmount:   order.Total.Sub(order.Subtotal).Round(4),
		},
		TaxType: accounting.TaxTypeGross,
		PaymentConditions: accounting.PaymentConditions{
			PaymentTermLabel:    paymentTermLabel,
			PaymentTermDuration: paymentTermDuration,
		},
		ShippingConditions: accounting.ShippingConditions{
			ShippingDate: order.CreatedAt,
			ShippingType: "delivery",
		},
		Title:        invoiceTitle,
		Introduction: fmt.Sprintf("Rechnung zu Ihrer Bestellung #%d", order.DisplayID),
		Remark:       invoiceRemark,
	}
	if draft.VoucherDate.IsZero() {
		draft.VoucherDate = time.Now()
	}

	created, err := g.client.CreateInvoice(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create invoice for order %s: %w", order.ID, err)
	}

	invoice, err := g.ensureFinalized(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	pdf, err := g.client.DownloadInvoicePDF(ctx, invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("download invoice pdf %s: %w", invoice.ID, err)
	}

	label := invoice.VoucherNumber
	if label == "" {
		label = invoice.ID
	}
	blobKey := fmt.Sprintf("invoices/%s/%s %s %s.pdf", order.ID, g.brand, invoiceTitle, label)

	uploaded, err := g.storage.Upload(ctx, blobKey, pdf, pdfContentType, map[string]string{
		"order_id":   order.ID,
		"invoice_id": invoice.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("archive invoice pdf %s: %w", invoice.ID, err)
	}

	g.logger.Info("invoice generated",
		zap.String("order_id", order.ID),
		zap.String("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.VoucherNumber),
		zap.String("blob_key", blobKey))

	return &GeneratedInvoice{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.VoucherNumber,
		PDFURL:        uploaded.URL,
		BlobKey:       blobKey,
	}, nil
}

// InvoicePDF returns an archived invoice PDF by its blob key.
func (g *Generator) InvoicePDF(ctx context.Context, blobKey string) ([]byte, error) {
	return g.storage.Download(ctx, blobKey)
}

// ensureFinalized confirms the invoice left the draft state, issuing one
// explicit finalize when the synchronous finalization did not stick.
func (g *Generator) ensureFinalized(ctx context.Context, invoiceID string) (*accounting.Invoice, error) {
	invoice, err := g.client.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", invoiceID, err)
	}
	if !invoice.IsDraft() {
		return invoice, nil
	}

	g.logger.Warn("invoice still in draft after creation, finalizing explicitly",
		zap.String("invoice_id", invoiceID))
	invoice, err = g.client.FinalizeInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvoiceNotFinalized, err)
	}
	if invoice.IsDraft() {
		return nil, fmt.Errorf("%w: invoice %s", ErrInvoiceNotFinalized, invoiceID)
	}
	return invoice, nil
}

// buildLineItems maps order items and shipping methods to invoice positions.
func (g *Generator) buildLineItems(ctx context.Context, order *catalog.Order) ([]accounting.LineItem, error) {
	items := make([]accounting.LineItem, 0, len(order.Items)+len(order.ShippingMethods))

	for _, item := range order.Items {
		articleID, err := g.resolveOrCreateArticle(ctx, item)
		if err != nil {
			return nil, err
		}

		rate := catalog.EffectiveTaxRate(item.TaxLines, decimal.NewFromInt(accounting.DefaultTaxRate))
		gross := item.UnitPrice.Round(4)
		net := decomposeGross(gross, rate)

		name := item.ProductTitle
		if item.VariantTitle != "" {
			name = name + " - " + item.VariantTitle
		}

		items = append(items, accounting.LineItem{
			ArticleID: articleID,
			Type:      accounting.LineItemTypeMaterial,
			Name:      name,
			Quantity:  item.Quantity,
			UnitName:  accounting.DefaultUnitName,
			UnitPrice: accounting.UnitPrice{
				Currency:          strings.ToUpper(order.CurrencyCode),
				NetAmount:         net,
				GrossAmount:       gross,
				TaxRatePercentage: rate,
			},
			LineItemAmount: net.Mul(item.Quantity).Round(4),
		})
	}

	allCoffee := catalog.AllItemsCoffee(order.Items)
	for _, method := range order.ShippingMethods {
		line, err := g.buildShippingLine(ctx, order, method, allCoffee)
		if err != nil {
			return nil, err
		}
		items = append(items, line)
	}

	return items, nil
}

// resolveOrCreateArticle returns a confirmed remote article id for the item,
// creating one when no valid remote article exists.
func (g *Generator) resolveOrCreateArticle(ctx context.Context, item catalog.OrderItem) (string, error) {
	resolution := g.resolver.resolve(ctx, item)
	if resolution.Status == ResolutionFound {
		return resolution.ArticleID, nil
	}

	rate := catalog.EffectiveTaxRate(item.TaxLines, decimal.NewFromInt(accounting.DefaultTaxRate))
	net := decomposeGross(item.UnitPrice.Round(4), rate)

	articleNumber := item.VariantSKU
	if articleNumber == "" {
		articleNumber = item.VariantID
	}

	title := item.ProductTitle
	if item.VariantTitle != "" {
		title = title + " - " + item.VariantTitle
	}

	created, err := g.client.CreateArticle(ctx, accounting.ArticleDraft{
		Title:         title,
		Type:          accounting.ArticleTypeProduct,
		ArticleNumber: accounting.TruncateArticleNumber(articleNumber),
		UnitName:      accounting.DefaultUnitName,
		Price: accounting.ArticlePrice{
			NetPrice:     net,
			LeadingPrice: accounting.LeadingPriceNet,
			TaxRate:      accounting.MapTaxRate(rate),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: item %s: %v", ErrArticleCreation, item.ID, err)
	}

	g.logger.Info("created remote article for invoice item",
		zap.String("item_id", item.ID),
		zap.String("article_id", created.ID))
	return created.ID, nil
}

// buildShippingLine maps one shipping method to a service line item. Orders
// consisting entirely of coffee products ship at the reduced tax rate.
func (g *Generator) buildShippingLine(ctx context.Context, order *catalog.Order, method catalog.ShippingMethod, allCoffee bool) (accounting.LineItem, error) {
	rate := catalog.EffectiveTaxRate(method.TaxLines, decimal.NewFromInt(accounting.DefaultTaxRate))
	if allCoffee {
		rate = decimal.NewFromInt(accounting.ReducedTaxRate)
	}

	gross := method.Amount.Round(4)
	net := decomposeGross(gross, rate)

	articleID, err := g.shippingArticle(ctx, method.Name, net, rate)
	if err != nil {
		return accounting.LineItem{}, err
	}

	return accounting.LineItem{
		ArticleID: articleID,
		Type:      accounting.LineItemTypeService,
		Name:      method.Name,
		Quantity:  decimal.NewFromInt(1),
		UnitName:  accounting.DefaultUnitName,
		UnitPrice: accounting.UnitPrice{
			Currency:          strings.ToUpper(order.CurrencyCode),
			NetAmount:         net,
			GrossAmount:       gross,
			TaxRatePercentage: rate,
		},
		LineItemAmount: net,
	}, nil
}

// shippingArticle finds or creates the deterministic remote article for a
// shipping method.
func (g *Generator) shippingArticle(ctx context.Context, methodName string, net decimal.Decimal, rate decimal.Decimal) (string, error) {
	articleNumber := shippingArticleNumber(methodName)

	existing, err := g.client.GetArticleByNumber(ctx, articleNumber)
	if err == nil {
		return existing.ID, nil
	}

	created, err := g.client.CreateArticle(ctx, accounting.ArticleDraft{
		Title:         methodName,
		Description:   "Versandkosten für " + methodName,
		Type:          accounting.ArticleTypeService,
		ArticleNumber: articleNumber,
		UnitName:      accounting.DefaultUnitName,
		Price: accounting.ArticlePrice{
			NetPrice:     net,
			LeadingPrice: accounting.LeadingPriceNet,
			TaxRate:      accounting.MapTaxRate(rate),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: shipping %q: %v", ErrArticleCreation, methodName, err)
	}
	return created.ID, nil
}

// createContact creates the remote customer record. Any failure is logged
// and swallowed, the invoice then carries the address without a contact id.
func (g *Generator) createContact(ctx context.Context, order *catalog.Order) string {
	draft := buildContactDraft(order)
	if err := draft.Validate(); err != nil {
		g.logger.Warn("skipping contact creation", zap.String("order_id", order.ID), zap.Error(err))
		return ""
	}

	created, err := g.client.CreateContact(ctx, draft)
	if err != nil {
		g.logger.Warn("contact creation failed, invoicing without contact reference",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return ""
	}
	return created.ID
}

// buildContactDraft derives the remote contact from the order's addresses
// and customer record.
func buildContactDraft(order *catalog.Order) accounting.ContactDraft {
	address := order.BillingAddress
	if address == nil {
		address = order.ShippingAddress
	}

	var draft accounting.ContactDraft

	if address != nil && strings.TrimSpace(address.Company) != "" {
		draft.Company = &accounting.Company{Name: strings.TrimSpace(address.Company)}
	} else {
		person := accounting.Person{}
		if order.Customer != nil {
			person.FirstName = order.Customer.FirstName
			person.LastName = order.Customer.LastName
		}
		if person.LastName == "" && address != nil {
			person.FirstName = address.FirstName
			person.LastName = address.LastName
		}
		if person.LastName == "" {
			person.LastName = accounting.FallbackLastName
		}
		draft.Person = &person
	}

	email := order.Email
	if email == "" && order.Customer != nil {
		email = order.Customer.Email
	}
	if strings.Contains(email, "@") {
		draft.Email = email
	}

	if address != nil && address.Phone != "" {
		draft.Phone = address.Phone
	} else if order.Customer != nil && order.Customer.Phone != "" {
		draft.Phone = order.Customer.Phone
	}

	if address != nil && address.Address1 != "" {
		draft.BillingAddress = &accounting.Address{
			Street:      address.Address1,
			Zip:         address.PostalCode,
			City:        address.City,
			CountryCode: strings.ToUpper(address.CountryCode),
		}
	}

	return draft
}

// buildAddress derives the printed recipient block of the invoice.
func (g *Generator) buildAddress(order *catalog.Order, contactID string) accounting.InvoiceAddress {
	address := order.BillingAddress
	if address == nil {
		address = order.ShippingAddress
	}

	invoiceAddress := accounting.InvoiceAddress{ContactID: contactID}
	if address == nil {
		invoiceAddress.Name = accounting.FallbackCompanyName
		return invoiceAddress
	}

	name := strings.TrimSpace(address.Company)
	if name == "" {
		name = strings.TrimSpace(address.FirstName + " " + address.LastName)
	}
	if name == "" {
		name = accounting.FallbackLastName
	}

	invoiceAddress.Name = name
	invoiceAddress.Street = address.Address1
	invoiceAddress.Zip = address.PostalCode
	invoiceAddress.City = address.City
	invoiceAddress.CountryCode = strings.ToUpper(address.CountryCode)
	return invoiceAddress
}

// decomposeGross derives the net amount from a gross amount at the given tax
// rate, rounded to four decimal places.
func decomposeGross(gross decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
	return gross.DivRound(divisor, 4)
}

// shippingArticleNumber derives the deterministic article number of a
// shipping method from its name.
func shippingArticleNumber(methodName string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(methodName, " ", ""))
	if len(cleaned) > 10 {
		cleaned = cleaned[:10]
	}
	return shippingSKUPrefix + cleaned
}

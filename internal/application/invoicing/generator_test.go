package invoicing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/accounting"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/syncmap"
	"github.com/warawul/backend/internal/infrastructure/registry"
	"github.com/warawul/backend/internal/infrastructure/storage"
)

// fakeAccounting is an in-memory accounting.Client tailored to the invoice
// flow. The created invoice draft is captured for assertions.
type fakeAccounting struct {
	articles map[string]*accounting.Article
	byNumber map[string]string
	nextID   int

	createdDraft  *accounting.InvoiceDraft
	contactDraft  *accounting.ContactDraft
	voucherNumber string
	getStatus     accounting.VoucherStatus
	finalStatus   accounting.VoucherStatus
	finalizeCalls int

	contactErr error
	createErr  error
	pdf        []byte
}

var _ accounting.Client = (*fakeAccounting)(nil)

func newFakeAccounting() *fakeAccounting {
	return &fakeAccounting{
		articles:      make(map[string]*accounting.Article),
		byNumber:      make(map[string]string),
		voucherNumber: "RE-1001",
		getStatus:     accounting.VoucherStatusOpen,
		finalStatus:   accounting.VoucherStatusOpen,
		pdf:           []byte("%PDF-1.7 test"),
	}
}

func (f *fakeAccounting) seedArticle(articleNumber string) *accounting.Article {
	f.nextID++
	article := &accounting.Article{
		ID:            fmt.Sprintf("art-%d", f.nextID),
		Title:         "seeded",
		Type:          accounting.ArticleTypeProduct,
		ArticleNumber: articleNumber,
		Version:       1,
	}
	f.articles[article.ID] = article
	if articleNumber != "" {
		f.byNumber[articleNumber] = article.ID
	}
	return article
}

func (f *fakeAccounting) CreateContact(_ context.Context, draft accounting.ContactDraft) (*accounting.CreatedResource, error) {
	f.contactDraft = &draft
	if f.contactErr != nil {
		return nil, f.contactErr
	}
	return &accounting.CreatedResource{ID: "contact-1"}, nil
}

func (f *fakeAccounting) GetContact(context.Context, string) (*accounting.Contact, error) {
	return nil, &accounting.RemoteAPIError{Status: 404, Body: "not found"}
}

func (f *fakeAccounting) CreateArticle(_ context.Context, draft accounting.ArticleDraft) (*accounting.Article, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	article := &accounting.Article{
		ID:            fmt.Sprintf("art-%d", f.nextID),
		Title:         draft.Title,
		Type:          draft.Type,
		ArticleNumber: draft.ArticleNumber,
		Version:       1,
		Price:         draft.Price,
	}
	f.articles[article.ID] = article
	if article.ArticleNumber != "" {
		f.byNumber[article.ArticleNumber] = article.ID
	}
	return article, nil
}

func (f *fakeAccounting) UpdateArticle(_ context.Context, id string, _ accounting.ArticleUpdate) (*accounting.Article, error) {
	article, ok := f.articles[id]
	if !ok {
		return nil, &accounting.RemoteAPIError{Status: 404, Body: "not found"}
	}
	return article, nil
}

func (f *fakeAccounting) GetArticle(_ context.Context, id string) (*accounting.Article, error) {
	article, ok := f.articles[id]
	if !ok {
		return nil, &accounting.RemoteAPIError{Status: 404, Body: "not found"}
	}
	copied := *article
	return &copied, nil
}

func (f *fakeAccounting) GetArticleByNumber(_ context.Context, articleNumber string) (*accounting.Article, error) {
	id, ok := f.byNumber[articleNumber]
	if !ok {
		return nil, accounting.ErrArticleNotFound
	}
	copied := *f.articles[id]
	return &copied, nil
}

func (f *fakeAccounting) ListArticles(context.Context) ([]accounting.Article, error) {
	return nil, nil
}

func (f *fakeAccounting) DeleteArticle(context.Context, string) error {
	return nil
}

func (f *fakeAccounting) CreateInvoice(_ context.Context, draft accounting.InvoiceDraft) (*accounting.CreatedResource, error) {
	f.createdDraft = &draft
	return &accounting.CreatedResource{ID: "inv-1"}, nil
}

func (f *fakeAccounting) GetInvoice(_ context.Context, id string) (*accounting.Invoice, error) {
	return &accounting.Invoice{ID: id, VoucherStatus: f.getStatus, VoucherNumber: f.voucherNumber}, nil
}

func (f *fakeAccounting) FinalizeInvoice(_ context.Context, id string) (*accounting.Invoice, error) {
	f.finalizeCalls++
	return &accounting.Invoice{ID: id, VoucherStatus: f.finalStatus, VoucherNumber: f.voucherNumber}, nil
}

func (f *fakeAccounting) DownloadInvoicePDF(context.Context, string) ([]byte, error) {
	return f.pdf, nil
}

// fakeStorage records uploads and serves them back on download.
type fakeStorage struct {
	objects map[string][]byte
	lastKey string
}

var _ ObjectStorage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string, _ map[string]string) (*storage.UploadResult, error) {
	f.objects[key] = data
	f.lastKey = key
	return &storage.UploadResult{Key: key, URL: "https://cdn.example.com/" + key}, nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func coffeeOrder(articleID string) *catalog.Order {
	metadata := map[string]string{}
	if articleID != "" {
		metadata[catalog.MetadataKeyArticleID] = articleID
	}
	return &catalog.Order{
		ID:           "order_01",
		DisplayID:    1042,
		Email:        "kunde@example.com",
		CurrencyCode: "eur",
		CreatedAt:    time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Customer:     &catalog.Customer{FirstName: "Anna", LastName: "Schmidt", Email: "kunde@example.com"},
		BillingAddress: &catalog.OrderAddress{
			FirstName:   "Anna",
			LastName:    "Schmidt",
			Address1:    "Hauptstraße 1",
			City:        "Berlin",
			PostalCode:  "10115",
			CountryCode: "de",
		},
		Items: []catalog.OrderItem{
			{
				ID:              "item_01",
				ProductID:       "prod_01",
				VariantID:       "variant_01",
				ProductTitle:    "Espresso Blend",
				ProductType:     "coffee",
				VariantTitle:    "250g",
				VariantSKU:      "ESP-250",
				Quantity:        decimal.NewFromInt(1),
				UnitPrice:       decimal.RequireFromString("18.00"),
				TaxLines:        []catalog.TaxLine{{Rate: decimal.NewFromInt(19)}},
				VariantMetadata: metadata,
			},
		},
		ShippingMethods: []catalog.ShippingMethod{
			{
				Name:     "DHL Paket",
				Amount:   decimal.RequireFromString("2.00"),
				TaxLines: []catalog.TaxLine{{Rate: decimal.NewFromInt(19)}},
			},
		},
		Subtotal: decimal.RequireFromString("16.9953"),
		Total:    decimal.RequireFromString("20.00"),
	}
}

func newTestGenerator(client *fakeAccounting, store syncmap.Store) (*Generator, *fakeStorage) {
	if store == nil {
		store = registry.NewInMemoryStore()
	}
	blobs := newFakeStorage()
	return NewGenerator(client, blobs, store, "Warawul Coffee"), blobs
}

func TestGenerateInvoiceCoffeeOrder(t *testing.T) {
	client := newFakeAccounting()
	article := client.seedArticle("ESP-250")
	generator, blobs := newTestGenerator(client, nil)

	result, err := generator.GenerateInvoice(context.Background(), coffeeOrder(article.ID))
	require.NoError(t, err)

	require.NotNil(t, client.createdDraft)
	draft := client.createdDraft
	require.Len(t, draft.LineItems, 2)

	item := draft.LineItems[0]
	assert.Equal(t, article.ID, item.ArticleID)
	assert.Equal(t, accounting.LineItemTypeMaterial, item.Type)
	assert.True(t, item.UnitPrice.NetAmount.Equal(decimal.RequireFromString("15.1261")),
		"net amount %s", item.UnitPrice.NetAmount)
	assert.True(t, item.LineItemAmount.Equal(decimal.RequireFromString("15.1261")))

	// Every item is coffee, so shipping drops to the reduced rate.
	shipping := draft.LineItems[1]
	assert.Equal(t, accounting.LineItemTypeService, shipping.Type)
	assert.True(t, shipping.UnitPrice.TaxRatePercentage.Equal(decimal.NewFromInt(7)))
	assert.True(t, shipping.UnitPrice.NetAmount.Equal(decimal.RequireFromString("1.8692")),
		"shipping net %s", shipping.UnitPrice.NetAmount)

	assert.Equal(t, "EUR", draft.TotalPrice.Currency)
	assert.True(t, draft.TotalPrice.TotalGrossAmount.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, "contact-1", draft.Address.ContactID)
	assert.Equal(t, "Rechnung", draft.Title)
	assert.Contains(t, draft.Introduction, "#1042")

	assert.Equal(t, "inv-1", result.InvoiceID)
	assert.Equal(t, "RE-1001", result.InvoiceNumber)
	assert.Equal(t, "invoices/order_01/Warawul Coffee Rechnung RE-1001.pdf", result.BlobKey)
	assert.Equal(t, "https://cdn.example.com/"+result.BlobKey, result.PDFURL)
	assert.Equal(t, client.pdf, blobs.objects[result.BlobKey])
}

func TestGenerateInvoiceMixedCartKeepsShippingRate(t *testing.T) {
	client := newFakeAccounting()
	article := client.seedArticle("ESP-250")
	generator, _ := newTestGenerator(client, nil)

	order := coffeeOrder(article.ID)
	order.Items = append(order.Items, catalog.OrderItem{
		ID:           "item_02",
		VariantID:    "variant_02",
		ProductTitle: "Ceramic Mug",
		ProductType:  "merchandise",
		VariantSKU:   "MUG-01",
		Quantity:     decimal.NewFromInt(1),
		UnitPrice:    decimal.RequireFromString("12.00"),
		TaxLines:     []catalog.TaxLine{{Rate: decimal.NewFromInt(19)}},
	})

	_, err := generator.GenerateInvoice(context.Background(), order)
	require.NoError(t, err)

	shipping := client.createdDraft.LineItems[len(client.createdDraft.LineItems)-1]
	assert.True(t, shipping.UnitPrice.TaxRatePercentage.Equal(decimal.NewFromInt(19)))
}

func TestGenerateInvoiceCreatesMissingArticle(t *testing.T) {
	client := newFakeAccounting()
	generator, _ := newTestGenerator(client, nil)

	order := coffeeOrder("")
	order.Items[0].VariantSKU = "ESPRESSO-BLEND-EXTRA-LONG-SKU"

	_, err := generator.GenerateInvoice(context.Background(), order)
	require.NoError(t, err)

	item := client.createdDraft.LineItems[0]
	created := client.articles[item.ArticleID]
	require.NotNil(t, created)
	assert.Equal(t, "ESPRESSO-BLEND-EXT", created.ArticleNumber)
	assert.Len(t, created.ArticleNumber, accounting.MaxArticleNumberLength)
	assert.Equal(t, 19, created.Price.TaxRate)
}

func TestGenerateInvoiceUsesMappingStoreFallback(t *testing.T) {
	client := newFakeAccounting()
	article := client.seedArticle("ESP-250")
	store := registry.NewInMemoryStore()
	mapping, err := syncmap.NewVariantMapping("prod_01", "variant_01", article.ID, "ESP-250")
	require.NoError(t, err)
	require.NoError(t, store.Put(mapping))

	generator, _ := newTestGenerator(client, store)

	order := coffeeOrder("")
	_, err = generator.GenerateInvoice(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, article.ID, client.createdDraft.LineItems[0].ArticleID)
}

func TestGenerateInvoiceArticleCreationFailureIsFatal(t *testing.T) {
	client := newFakeAccounting()
	client.createErr = &accounting.RemoteAPIError{Status: 500, Body: "boom"}
	generator, blobs := newTestGenerator(client, nil)

	_, err := generator.GenerateInvoice(context.Background(), coffeeOrder(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArticleCreation)
	assert.Nil(t, client.createdDraft)
	assert.Empty(t, blobs.objects)
}

func TestGenerateInvoiceDraftAfterFinalizeIsFatal(t *testing.T) {
	client := newFakeAccounting()
	article := client.seedArticle("ESP-250")
	client.getStatus = accounting.VoucherStatusDraft
	client.finalStatus = accounting.VoucherStatusDraft
	generator, blobs := newTestGenerator(client, nil)

	_, err := generator.GenerateInvoice(context.Background(), coffeeOrder(article.ID))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvoiceNotFinalized)
	assert.Equal(t, 1, client.finalizeCalls)
	assert.Empty(t, blobs.objects)
}

func TestGenerateInvoiceExplicitFinalizeRecovers(t *testing.T) {
	client := newFakeAccounting()
	article := client.seedArticle("ESP-250")
	client.getStatus = accounting.VoucherStatusDraft
	client.finalStatus = accounting.VoucherStatusOpen
	generator, _ := newTestGenerator(client, nil)

	result, err := generator.GenerateInvoice(context.Background(), coffeeOrder(article.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, client.finalizeCalls)
	assert.Equal(t, "RE-1001", result.InvoiceNumber)
}

func TestGenerateInvoiceContactFailureIsSwallowed(t *testing.T) {
	client := newFakeAccounting()
	article := client.seedArticle("ESP-250")
	client.contactErr = &accounting.RemoteAPIError{Status: 500, Body: "boom"}
	generator, _ := newTestGenerator(client, nil)

	_, err := generator.GenerateInvoice(context.Background(), coffeeOrder(article.ID))
	require.NoError(t, err)
	assert.Empty(t, client.createdDraft.Address.ContactID)
	assert.Equal(t, "Anna Schmidt", client.createdDraft.Address.Name)
}

func TestGenerateInvoiceReusesShippingArticle(t *testing.T) {
	client := newFakeAccounting()
	article := client.seedArticle("ESP-250")
	shippingArticle := client.seedArticle("SHIP-DHLPAKET")
	generator, _ := newTestGenerator(client, nil)

	_, err := generator.GenerateInvoice(context.Background(), coffeeOrder(article.ID))
	require.NoError(t, err)

	shipping := client.createdDraft.LineItems[1]
	assert.Equal(t, shippingArticle.ID, shipping.ArticleID)
}

func TestBuildContactDraft(t *testing.T) {
	t.Run("company wins over person", func(t *testing.T) {
		order := coffeeOrder("")
		order.BillingAddress.Company = "  Warawul GmbH  "
		draft := buildContactDraft(order)
		require.NotNil(t, draft.Company)
		assert.Equal(t, "Warawul GmbH", draft.Company.Name)
		assert.Nil(t, draft.Person)
	})

	t.Run("person fallback without customer", func(t *testing.T) {
		order := coffeeOrder("")
		order.Customer = nil
		order.BillingAddress = nil
		order.ShippingAddress = nil
		draft := buildContactDraft(order)
		require.NotNil(t, draft.Person)
		assert.Equal(t, accounting.FallbackLastName, draft.Person.LastName)
	})

	t.Run("email must contain at sign", func(t *testing.T) {
		order := coffeeOrder("")
		order.Email = "not-an-email"
		order.Customer.Email = "not-an-email"
		draft := buildContactDraft(order)
		assert.Empty(t, draft.Email)
	})
}

func TestDecomposeGrossRoundTrips(t *testing.T) {
	rates := []int64{0, 7, 19}
	grosses := []string{"0.01", "1.00", "2.00", "18.00", "19.99", "123.45", "999.99"}
	tolerance := decimal.RequireFromString("0.0001")
	hundred := decimal.NewFromInt(100)

	for _, rate := range rates {
		factor := decimal.NewFromInt(1).Add(decimal.NewFromInt(rate).Div(hundred))
		for _, raw := range grosses {
			gross := decimal.RequireFromString(raw)
			net := decomposeGross(gross, decimal.NewFromInt(rate))

			assert.True(t, net.Equal(net.Round(4)),
				"net %s for gross %s at %d%% carries more than 4 decimals", net, raw, rate)

			rebuilt := net.Mul(factor).Round(4)
			diff := rebuilt.Sub(gross).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"gross %s at %d%%: net %s rebuilds to %s", raw, rate, net, rebuilt)
		}
	}
}

func TestShippingArticleNumber(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   string
	}{
		{name: "short name", method: "DHL", want: "SHIP-DHL"},
		{name: "spaces removed", method: "DHL Paket", want: "SHIP-DHLPAKET"},
		{name: "truncated to ten", method: "Standard Versand International", want: "SHIP-STANDARDVE"},
		{name: "lowercase upcased", method: "express", want: "SHIP-EXPRESS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shippingArticleNumber(tt.method))
		})
	}
}

func TestResolverTiers(t *testing.T) {
	client := newFakeAccounting()
	valid := client.seedArticle("ESP-250")
	store := registry.NewInMemoryStore()
	resolver := articleResolver{client: client, store: store, logger: zap.NewNop()}

	ctx := context.Background()

	t.Run("metadata hit", func(t *testing.T) {
		item := catalog.OrderItem{
			VariantID:       "variant_01",
			VariantMetadata: map[string]string{catalog.MetadataKeyArticleID: valid.ID},
		}
		resolution := resolver.resolve(ctx, item)
		assert.Equal(t, ResolutionFound, resolution.Status)
		assert.Equal(t, valid.ID, resolution.ArticleID)
	})

	t.Run("stale metadata", func(t *testing.T) {
		item := catalog.OrderItem{
			VariantID:       "variant_01",
			VariantMetadata: map[string]string{catalog.MetadataKeyArticleID: "art-gone"},
		}
		resolution := resolver.resolve(ctx, item)
		assert.Equal(t, ResolutionInvalid, resolution.Status)
	})

	t.Run("mapping store fallback", func(t *testing.T) {
		mapping, err := syncmap.NewVariantMapping("prod_01", "variant_02", valid.ID, "ESP-250")
		require.NoError(t, err)
		require.NoError(t, store.Put(mapping))

		resolution := resolver.resolve(ctx, catalog.OrderItem{VariantID: "variant_02"})
		assert.Equal(t, ResolutionFound, resolution.Status)
	})

	t.Run("nothing known", func(t *testing.T) {
		resolution := resolver.resolve(ctx, catalog.OrderItem{VariantID: "variant_99"})
		assert.Equal(t, ResolutionNotFound, resolution.Status)
	})
}

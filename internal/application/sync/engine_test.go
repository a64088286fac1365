package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warawul/backend/internal/domain/accounting"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/syncmap"
	"github.com/warawul/backend/internal/infrastructure/registry"
)

// fakeClient is an in-memory accounting.Client that records the order of
// remote calls and supports error injection.
type fakeClient struct {
	mu       stdsync.Mutex
	calls    []string
	articles map[string]*accounting.Article
	byNumber map[string]string
	nextID   int

	createErr     error
	deleteErr     error
	conflictsLeft int
}

var _ accounting.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		articles: make(map[string]*accounting.Article),
		byNumber: make(map[string]string),
	}
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) seedArticle(articleNumber string, version int) *accounting.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	article := &accounting.Article{
		ID:            fmt.Sprintf("art-%d", f.nextID),
		Title:         "seeded",
		Type:          accounting.ArticleTypeProduct,
		ArticleNumber: articleNumber,
		UnitName:      accounting.DefaultUnitName,
		Version:       version,
	}
	f.articles[article.ID] = article
	if articleNumber != "" {
		f.byNumber[articleNumber] = article.ID
	}
	return article
}

func (f *fakeClient) CreateArticle(_ context.Context, draft accounting.ArticleDraft) (*accounting.Article, error) {
	f.record("create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	article := &accounting.Article{
		ID:            fmt.Sprintf("art-%d", f.nextID),
		Title:         draft.Title,
		Description:   draft.Description,
		Type:          draft.Type,
		ArticleNumber: draft.ArticleNumber,
		UnitName:      draft.UnitName,
		Version:       1,
		Price:         draft.Price,
	}
	f.articles[article.ID] = article
	if article.ArticleNumber != "" {
		f.byNumber[article.ArticleNumber] = article.ID
	}
	return article, nil
}

func (f *fakeClient) UpdateArticle(_ context.Context, id string, update accounting.ArticleUpdate) (*accounting.Article, error) {
	f.record("update " + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[id]
	if !ok {
		return nil, &accounting.RemoteAPIError{Status: 404, Body: "not found"}
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return nil, &accounting.RemoteAPIError{Status: 409, Body: "version mismatch"}
	}
	if update.Version != article.Version {
		return nil, &accounting.RemoteAPIError{Status: 409, Body: "version mismatch"}
	}
	article.Title = update.Title
	article.Description = update.Description
	article.Price = update.Price
	article.Version++
	return article, nil
}

func (f *fakeClient) GetArticle(_ context.Context, id string) (*accounting.Article, error) {
	f.record("get " + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[id]
	if !ok {
		return nil, &accounting.RemoteAPIError{Status: 404, Body: "not found"}
	}
	copied := *article
	return &copied, nil
}

func (f *fakeClient) GetArticleByNumber(_ context.Context, articleNumber string) (*accounting.Article, error) {
	f.record("lookup " + articleNumber)
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byNumber[articleNumber]
	if !ok {
		return nil, accounting.ErrArticleNotFound
	}
	copied := *f.articles[id]
	return &copied, nil
}

func (f *fakeClient) ListArticles(_ context.Context) ([]accounting.Article, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]accounting.Article, 0, len(f.articles))
	for _, a := range f.articles {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeClient) DeleteArticle(_ context.Context, id string) error {
	f.record("delete " + id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if article, ok := f.articles[id]; ok {
		delete(f.byNumber, article.ArticleNumber)
		delete(f.articles, id)
	}
	return nil
}

func (f *fakeClient) CreateContact(context.Context, accounting.ContactDraft) (*accounting.CreatedResource, error) {
	return nil, nil
}

func (f *fakeClient) GetContact(context.Context, string) (*accounting.Contact, error) {
	return nil, nil
}

func (f *fakeClient) CreateInvoice(context.Context, accounting.InvoiceDraft) (*accounting.CreatedResource, error) {
	return nil, nil
}

func (f *fakeClient) GetInvoice(context.Context, string) (*accounting.Invoice, error) {
	return nil, nil
}

func (f *fakeClient) FinalizeInvoice(context.Context, string) (*accounting.Invoice, error) {
	return nil, nil
}

func (f *fakeClient) DownloadInvoicePDF(context.Context, string) ([]byte, error) {
	return nil, nil
}

// fakeCatalog serves canned products and records metadata writes.
type fakeCatalog struct {
	mu       stdsync.Mutex
	products map[string]*catalog.Product
	metadata map[string]map[string]string
}

var _ catalog.Service = (*fakeCatalog)(nil)

func newFakeCatalog(products ...*catalog.Product) *fakeCatalog {
	c := &fakeCatalog{
		products: make(map[string]*catalog.Product),
		metadata: make(map[string]map[string]string),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) RetrieveProduct(_ context.Context, productID string) (*catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	product, ok := c.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return product, nil
}

func (c *fakeCatalog) RetrieveVariant(_ context.Context, variantID string) (*catalog.Variant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, product := range c.products {
		for i := range product.Variants {
			if product.Variants[i].ID == variantID {
				return &product.Variants[i], nil
			}
		}
	}
	return nil, catalog.ErrVariantNotFound
}

func (c *fakeCatalog) ListProducts(context.Context) ([]catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, *p)
	}
	return out, nil
}

func (c *fakeCatalog) RetrieveOrder(context.Context, string) (*catalog.Order, error) {
	return nil, catalog.ErrOrderNotFound
}

func (c *fakeCatalog) UpdateVariantMetadata(_ context.Context, variantID string, metadata map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.metadata[variantID]
	if !ok {
		existing = make(map[string]string)
		c.metadata[variantID] = existing
	}
	for k, v := range metadata {
		existing[k] = v
	}
	return nil
}

func testProduct() *catalog.Product {
	return &catalog.Product{
		ID:       "prod_01",
		Title:    "Espresso Blend",
		Handle:   "espresso-blend",
		Type:     "coffee",
		TaxRates: []decimal.Decimal{decimal.NewFromInt(7)},
		Variants: []catalog.Variant{
			{ID: "variant_01", ProductID: "prod_01", SKU: "ESP-250", Title: "250g", PriceCents: 1250},
			{ID: "variant_02", ProductID: "prod_01", SKU: "ESP-1000", Title: "1kg", PriceCents: 3900},
		},
	}
}

func newTestEngine(client *fakeClient, cat *fakeCatalog) (*Engine, syncmap.Store) {
	store := registry.NewInMemoryStore()
	engine := NewEngine(client, store, cat, WithPacer(NopPacer{}))
	return engine, store
}

func TestSyncVariantCreatesArticleWhenUnmapped(t *testing.T) {
	client := newFakeClient()
	cat := newFakeCatalog()
	engine, store := newTestEngine(client, cat)

	product := testProduct()
	err := engine.SyncVariant(context.Background(), product, &product.Variants[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"lookup ESP-250", "create"}, client.Calls())

	mapping, ok := store.Get("variant_01")
	require.True(t, ok)
	assert.Equal(t, "prod_01", mapping.LocalProductID)
	assert.Equal(t, "ESP-250", mapping.SKU)
	require.NotNil(t, mapping.LastSyncedNetPrice)
	assert.True(t, mapping.LastSyncedNetPrice.Equal(decimal.RequireFromString("12.50")))

	assert.Equal(t, mapping.RemoteVariantArticleID, cat.metadata["variant_01"][catalog.MetadataKeyArticleID])
}

func TestSyncVariantUpdatesWhenMapped(t *testing.T) {
	client := newFakeClient()
	engine, store := newTestEngine(client, newFakeCatalog())

	product := testProduct()
	ctx := context.Background()
	require.NoError(t, engine.SyncVariant(ctx, product, &product.Variants[0]))

	// Second run must fetch and update the existing article, never create.
	require.NoError(t, engine.SyncVariant(ctx, product, &product.Variants[0]))

	mapping, ok := store.Get("variant_01")
	require.True(t, ok)
	calls := client.Calls()
	assert.Contains(t, calls, "get "+mapping.RemoteVariantArticleID)
	assert.Contains(t, calls, "update "+mapping.RemoteVariantArticleID)
	assert.Equal(t, 1, countCalls(calls, "create"))
}

func TestSyncVariantAdoptsExistingArticleBySKU(t *testing.T) {
	client := newFakeClient()
	cat := newFakeCatalog()
	engine, store := newTestEngine(client, cat)

	seeded := client.seedArticle("ESP-250", 3)

	product := testProduct()
	err := engine.SyncVariant(context.Background(), product, &product.Variants[0])
	require.NoError(t, err)

	assert.Equal(t, 0, countCalls(client.Calls(), "create"))
	assert.Contains(t, client.Calls(), "update "+seeded.ID)

	mapping, ok := store.Get("variant_01")
	require.True(t, ok)
	assert.Equal(t, seeded.ID, mapping.RemoteVariantArticleID)
	assert.Equal(t, seeded.ID, cat.metadata["variant_01"][catalog.MetadataKeyArticleID])
}

func TestSyncVariantRepairsOrphanedMapping(t *testing.T) {
	client := newFakeClient()
	engine, store := newTestEngine(client, newFakeCatalog())

	mapping, err := syncmap.NewVariantMapping("prod_01", "variant_01", "art-gone", "ESP-250")
	require.NoError(t, err)
	require.NoError(t, store.Put(mapping))

	product := testProduct()
	require.NoError(t, engine.SyncVariant(context.Background(), product, &product.Variants[0]))

	repaired, ok := store.Get("variant_01")
	require.True(t, ok)
	assert.NotEqual(t, "art-gone", repaired.RemoteVariantArticleID)
	assert.Equal(t, []string{"get art-gone", "lookup ESP-250", "create"}, client.Calls())
}

func TestSyncVariantRetriesOnVersionConflict(t *testing.T) {
	client := newFakeClient()
	engine, store := newTestEngine(client, newFakeCatalog())

	seeded := client.seedArticle("ESP-250", 5)
	mapping, err := syncmap.NewVariantMapping("prod_01", "variant_01", seeded.ID, "ESP-250")
	require.NoError(t, err)
	require.NoError(t, store.Put(mapping))

	client.conflictsLeft = 1

	product := testProduct()
	require.NoError(t, engine.SyncVariant(context.Background(), product, &product.Variants[0]))

	assert.Equal(t, []string{
		"get " + seeded.ID,
		"update " + seeded.ID,
		"get " + seeded.ID,
		"update " + seeded.ID,
	}, client.Calls())
}

func TestSyncProductIsolatesVariantFailures(t *testing.T) {
	client := newFakeClient()
	engine, store := newTestEngine(client, newFakeCatalog())

	product := testProduct()

	// Break the second variant's mapping so its update targets a missing
	// article while rate limiting blocks repair.
	mapping, err := syncmap.NewVariantMapping("prod_01", "variant_01", "art-missing", "ESP-250")
	require.NoError(t, err)
	require.NoError(t, store.Put(mapping))
	client.createErr = accounting.ErrRateLimitExceeded

	err = engine.SyncProduct(context.Background(), product)
	require.Error(t, err)
	assert.ErrorIs(t, err, accounting.ErrRateLimitExceeded)

	// Both variants were attempted despite the failures.
	calls := client.Calls()
	assert.Contains(t, calls, "lookup ESP-250")
	assert.Contains(t, calls, "lookup ESP-1000")
}

func TestSyncAllReportsOutcomes(t *testing.T) {
	client := newFakeClient()
	cat := newFakeCatalog(testProduct())
	engine, _ := newTestEngine(client, cat)

	report, err := engine.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Products)
	assert.Equal(t, 2, report.Variants)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Failures)
	assert.False(t, report.CompletedAt.Before(report.StartedAt))
}

func TestSyncAllRecordsFailures(t *testing.T) {
	client := newFakeClient()
	client.createErr = &accounting.RemoteAPIError{Status: 500, Body: "boom"}
	cat := newFakeCatalog(testProduct())
	engine, _ := newTestEngine(client, cat)

	report, err := engine.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 0, report.Synced)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "prod_01", report.Failures[0].ProductID)
}

func TestDeleteProductRemovesMappingsBestEffort(t *testing.T) {
	client := newFakeClient()
	engine, store := newTestEngine(client, newFakeCatalog())

	for _, ids := range [][2]string{{"variant_01", "art-1"}, {"variant_02", "art-2"}} {
		mapping, err := syncmap.NewVariantMapping("prod_01", ids[0], ids[1], ids[0])
		require.NoError(t, err)
		require.NoError(t, store.Put(mapping))
	}
	client.deleteErr = &accounting.RemoteAPIError{Status: 500, Body: "boom"}

	require.NoError(t, engine.DeleteProduct(context.Background(), "prod_01"))

	// Remote failures do not keep stale mappings around.
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 2, countCallsPrefix(client.Calls(), "delete "))
}

func TestDeleteVariantWithoutMappingIsNoop(t *testing.T) {
	client := newFakeClient()
	engine, _ := newTestEngine(client, newFakeCatalog())

	require.NoError(t, engine.DeleteVariant(context.Background(), "variant_99"))
	assert.Empty(t, client.Calls())
}

func TestRebuildMappingsSkipsArticlesWithoutNumber(t *testing.T) {
	client := newFakeClient()
	engine, store := newTestEngine(client, newFakeCatalog())

	client.seedArticle("ESP-250", 1)
	client.seedArticle("ESP-1000", 1)
	client.seedArticle("", 1)

	restored, err := engine.RebuildMappings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, restored)
	assert.Equal(t, 2, store.Len())
}

func TestArticleIDResolvesMappedVariant(t *testing.T) {
	client := newFakeClient()
	engine, store := newTestEngine(client, newFakeCatalog())

	mapping, err := syncmap.NewVariantMapping("prod_01", "variant_01", "art-1", "ESP-250")
	require.NoError(t, err)
	require.NoError(t, store.Put(mapping))

	articleID, ok := engine.ArticleID("variant_01")
	assert.True(t, ok)
	assert.Equal(t, "art-1", articleID)

	_, ok = engine.ArticleID("variant_99")
	assert.False(t, ok)
}

func TestCatalogEventHandlerDispatch(t *testing.T) {
	client := newFakeClient()
	cat := newFakeCatalog(testProduct())
	engine, store := newTestEngine(client, cat)
	handler := NewCatalogEventHandler(engine, cat, nil)

	ctx := context.Background()
	require.NoError(t, handler.Handle(ctx, catalog.NewProductCreatedEvent("prod_01")))
	assert.Equal(t, 2, store.Len())

	require.NoError(t, handler.Handle(ctx, catalog.NewVariantDeletedEvent("variant_01")))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, handler.Handle(ctx, catalog.NewProductDeletedEvent("prod_01")))
	assert.Equal(t, 0, store.Len())
}

func TestCatalogEventHandlerIgnoresVanishedEntities(t *testing.T) {
	client := newFakeClient()
	cat := newFakeCatalog()
	engine, _ := newTestEngine(client, cat)
	handler := NewCatalogEventHandler(engine, cat, nil)

	require.NoError(t, handler.Handle(context.Background(), catalog.NewProductCreatedEvent("prod_99")))
	require.NoError(t, handler.Handle(context.Background(), catalog.NewVariantUpdatedEvent("variant_99")))
	assert.Empty(t, client.Calls())
}

func countCalls(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}

func countCallsPrefix(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

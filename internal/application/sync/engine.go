// Package sync reconciles host catalog products with articles on the remote
// accounting system and maintains the variant mapping registry.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/accounting"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/syncmap"
)

// DefaultWriteInterval is the minimum spacing between remote writes during a
// multi-variant sync run.
const DefaultWriteInterval = 3 * time.Second

// SyncFailure records one variant that could not be reconciled.
type SyncFailure struct {
	ProductID string
	VariantID string
	Reason    string
}

// SyncReport summarizes a full catalog sync run.
type SyncReport struct {
	Products    int
	Variants    int
	Synced      int
	Failed      int
	Failures    []SyncFailure
	StartedAt   time.Time
	CompletedAt time.Time
}

// keyedMutex serializes work per key. Locks are created on demand and kept
// for the lifetime of the engine; the variant set is small.
type keyedMutex struct {
	mu    stdsync.Mutex
	locks map[string]*stdsync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*stdsync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &stdsync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Engine drives the product to article reconciliation.
type Engine struct {
	client  accounting.Client
	store   syncmap.Store
	catalog catalog.Service
	pacer   Pacer
	logger  *zap.Logger
	keys    keyedMutex
}

// EngineOption is a functional option for configuring the Engine
type EngineOption func(*Engine)

// WithLogger sets the logger for the engine
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPacer replaces the default write pacer
func WithPacer(pacer Pacer) EngineOption {
	return func(e *Engine) {
		e.pacer = pacer
	}
}

// NewEngine creates a sync engine. By default remote writes are spaced by
// DefaultWriteInterval.
func NewEngine(client accounting.Client, store syncmap.Store, catalogSvc catalog.Service, opts ...EngineOption) *Engine {
	engine := &Engine{
		client:  client,
		store:   store,
		catalog: catalogSvc,
		pacer:   NewIntervalPacer(DefaultWriteInterval),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// SyncProduct reconciles every variant of a product. A failing variant does
// not abort the remaining ones; all failures are joined into the returned
// error.
func (e *Engine) SyncProduct(ctx context.Context, product *catalog.Product) error {
	if product == nil {
		return errors.New("product is required")
	}

	if len(product.Variants) == 0 {
		return e.syncBareProduct(ctx, product)
	}

	var errs []error
	for i := range product.Variants {
		variant := &product.Variants[i]
		if err := e.pacer.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.SyncVariant(ctx, product, variant); err != nil {
			e.logger.Error("variant sync failed",
				zap.String("product_id", product.ID),
				zap.String("variant_id", variant.ID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("variant %s: %w", variant.ID, err))
		}
	}
	return errors.Join(errs...)
}

// SyncVariant reconciles a single variant with its remote article. Calls for
// the same variant are serialized.
func (e *Engine) SyncVariant(ctx context.Context, product *catalog.Product, variant *catalog.Variant) error {
	if product == nil || variant == nil {
		return errors.New("product and variant are required")
	}

	unlock := e.keys.lock(variant.ID)
	defer unlock()

	mapping, ok := e.store.Get(variant.ID)
	if !ok {
		return e.linkOrCreate(ctx, product, variant)
	}

	remote, err := e.client.GetArticle(ctx, mapping.RemoteVariantArticleID)
	if err != nil {
		if errors.Is(err, accounting.ErrRateLimitExceeded) {
			return err
		}
		// The mapping points at an article that no longer exists. Drop it
		// and start over so a fresh article is created.
		e.logger.Warn("mapped remote article is gone, repairing",
			zap.String("variant_id", variant.ID),
			zap.String("article_id", mapping.RemoteVariantArticleID),
			zap.Error(err))
		e.store.Delete(variant.ID)
		return e.linkOrCreate(ctx, product, variant)
	}

	return e.pushUpdate(ctx, remote, product, variant, mapping)
}

// linkOrCreate adopts an existing remote article by article number, or
// creates a new one when none matches.
func (e *Engine) linkOrCreate(ctx context.Context, product *catalog.Product, variant *catalog.Variant) error {
	articleNumber := accounting.TruncateArticleNumber(variant.ArticleNumber())

	existing, err := e.client.GetArticleByNumber(ctx, articleNumber)
	if err == nil {
		mapping, merr := syncmap.NewVariantMapping(product.ID, variant.ID, existing.ID, articleNumber)
		if merr != nil {
			return merr
		}
		if perr := e.store.Put(mapping); perr != nil {
			return perr
		}
		e.writeBackArticleID(ctx, variant.ID, existing.ID)
		e.logger.Info("adopted existing remote article",
			zap.String("variant_id", variant.ID),
			zap.String("article_id", existing.ID),
			zap.String("article_number", articleNumber))

		// Bring the adopted article up to date. An update failure here is
		// not fatal, the link itself is already established.
		if uerr := e.pushUpdate(ctx, existing, product, variant, mapping); uerr != nil {
			e.logger.Warn("could not update adopted article",
				zap.String("variant_id", variant.ID),
				zap.Error(uerr))
		}
		return nil
	}
	if errors.Is(err, accounting.ErrRateLimitExceeded) {
		return err
	}
	if !errors.Is(err, accounting.ErrArticleNotFound) {
		e.logger.Warn("article lookup failed, creating a new article",
			zap.String("article_number", articleNumber),
			zap.Error(err))
	}

	draft := e.buildDraft(product, variant)
	created, err := e.client.CreateArticle(ctx, draft)
	if err != nil {
		return fmt.Errorf("create article for variant %s: %w", variant.ID, err)
	}

	mapping, err := syncmap.NewVariantMapping(product.ID, variant.ID, created.ID, articleNumber)
	if err != nil {
		return err
	}
	mapping.RecordSynced(draft.Price.NetPrice)
	if err := e.store.Put(mapping); err != nil {
		return err
	}
	e.writeBackArticleID(ctx, variant.ID, created.ID)
	e.logger.Info("created remote article",
		zap.String("variant_id", variant.ID),
		zap.String("article_id", created.ID),
		zap.String("article_number", articleNumber))
	return nil
}

// pushUpdate replaces the remote article content using the version from the
// freshly fetched remote state. A version conflict is retried once with a
// refetched version, then surfaced.
func (e *Engine) pushUpdate(ctx context.Context, remote *accounting.Article, product *catalog.Product, variant *catalog.Variant, mapping *syncmap.VariantMapping) error {
	update := accounting.ArticleUpdate{
		ArticleDraft: e.buildDraft(product, variant),
		Version:      remote.Version,
	}

	_, err := e.client.UpdateArticle(ctx, remote.ID, update)
	if accounting.IsConflict(err) {
		fresh, gerr := e.client.GetArticle(ctx, remote.ID)
		if gerr != nil {
			return err
		}
		update.Version = fresh.Version
		_, err = e.client.UpdateArticle(ctx, remote.ID, update)
	}
	if err != nil {
		return fmt.Errorf("update article %s: %w", remote.ID, err)
	}

	mapping.RecordSynced(update.Price.NetPrice)
	return e.store.Put(mapping)
}

// syncBareProduct reconciles a product without variants into a single remote
// article keyed by the product handle.
func (e *Engine) syncBareProduct(ctx context.Context, product *catalog.Product) error {
	articleNumber := product.Handle
	if articleNumber == "" {
		articleNumber = product.ID
	}
	articleNumber = accounting.TruncateArticleNumber(articleNumber)

	if err := e.pacer.Wait(ctx); err != nil {
		return err
	}

	existing, err := e.client.GetArticleByNumber(ctx, articleNumber)
	if err == nil {
		mapping, merr := syncmap.NewVariantMapping(product.ID, product.ID, existing.ID, articleNumber)
		if merr != nil {
			return merr
		}
		return e.store.Put(mapping)
	}
	if errors.Is(err, accounting.ErrRateLimitExceeded) {
		return err
	}

	created, err := e.client.CreateArticle(ctx, accounting.ArticleDraft{
		Title:         product.Title,
		Description:   product.Description,
		Type:          accounting.ArticleTypeProduct,
		ArticleNumber: articleNumber,
		UnitName:      accounting.DefaultUnitName,
		Price: accounting.ArticlePrice{
			NetPrice:     decimal.Zero,
			LeadingPrice: accounting.LeadingPriceNet,
			TaxRate:      accounting.MapTaxRate(catalog.TaxRate(product, nil)),
		},
	})
	if err != nil {
		return fmt.Errorf("create article for product %s: %w", product.ID, err)
	}

	mapping, err := syncmap.NewVariantMapping(product.ID, product.ID, created.ID, articleNumber)
	if err != nil {
		return err
	}
	mapping.RecordSynced(decimal.Zero)
	return e.store.Put(mapping)
}

// SyncAll reconciles the entire catalog and reports per-variant outcomes.
func (e *Engine) SyncAll(ctx context.Context) (*SyncReport, error) {
	products, err := e.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	report := &SyncReport{
		Products:  len(products),
		StartedAt: time.Now(),
	}

	for i := range products {
		product := &products[i]
		if len(product.Variants) == 0 {
			report.Variants++
			if err := e.syncBareProduct(ctx, product); err != nil {
				report.Failed++
				report.Failures = append(report.Failures, SyncFailure{
					ProductID: product.ID,
					VariantID: product.ID,
					Reason:    err.Error(),
				})
			} else {
				report.Synced++
			}
			continue
		}

		for j := range product.Variants {
			variant := &product.Variants[j]
			report.Variants++
			if err := e.pacer.Wait(ctx); err != nil {
				report.CompletedAt = time.Now()
				return report, err
			}
			if err := e.SyncVariant(ctx, product, variant); err != nil {
				report.Failed++
				report.Failures = append(report.Failures, SyncFailure{
					ProductID: product.ID,
					VariantID: variant.ID,
					Reason:    err.Error(),
				})
				continue
			}
			report.Synced++
		}
	}

	report.CompletedAt = time.Now()
	e.logger.Info("catalog sync completed",
		zap.Int("products", report.Products),
		zap.Int("variants", report.Variants),
		zap.Int("synced", report.Synced),
		zap.Int("failed", report.Failed))
	return report, nil
}

// DeleteProduct removes the remote articles and mappings of a product.
// Remote deletion is best effort, local mappings are always dropped.
func (e *Engine) DeleteProduct(ctx context.Context, productID string) error {
	mappings := e.store.FindByProduct(productID)
	if len(mappings) == 0 {
		e.logger.Warn("no mappings found for deleted product", zap.String("product_id", productID))
		return nil
	}

	for _, mapping := range mappings {
		if err := e.client.DeleteArticle(ctx, mapping.RemoteVariantArticleID); err != nil {
			e.logger.Warn("could not delete remote article",
				zap.String("article_id", mapping.RemoteVariantArticleID),
				zap.Error(err))
		}
		e.store.Delete(mapping.LocalVariantID)
	}
	return nil
}

// DeleteVariant removes the remote article and mapping of a single variant.
func (e *Engine) DeleteVariant(ctx context.Context, variantID string) error {
	mapping, ok := e.store.Get(variantID)
	if !ok {
		e.logger.Warn("no mapping found for deleted variant", zap.String("variant_id", variantID))
		return nil
	}

	if err := e.client.DeleteArticle(ctx, mapping.RemoteVariantArticleID); err != nil {
		e.logger.Warn("could not delete remote article",
			zap.String("article_id", mapping.RemoteVariantArticleID),
			zap.Error(err))
	}
	e.store.Delete(variantID)
	return nil
}

// RebuildMappings repopulates the mapping store from the remote article
// list. Articles without an article number cannot be linked and are skipped.
func (e *Engine) RebuildMappings(ctx context.Context) (int, error) {
	articles, err := e.client.ListArticles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list remote articles: %w", err)
	}

	e.store.Clear()
	restored := 0
	for i := range articles {
		article := &articles[i]
		if article.ArticleNumber == "" {
			continue
		}

		mapping, merr := syncmap.NewVariantMapping(article.ArticleNumber, article.ArticleNumber, article.ID, article.ArticleNumber)
		if merr != nil {
			continue
		}
		mapping.RecordSynced(article.Price.NetPrice)
		if perr := e.store.Put(mapping); perr != nil {
			continue
		}
		restored++
	}

	e.logger.Info("mappings rebuilt from remote articles",
		zap.Int("articles", len(articles)),
		zap.Int("restored", restored))
	return restored, nil
}

// Mappings returns a snapshot of all current mappings.
func (e *Engine) Mappings() []syncmap.VariantMapping {
	return e.store.All()
}

// ArticleID resolves the remote article id mapped to a variant.
func (e *Engine) ArticleID(variantID string) (string, bool) {
	mapping, ok := e.store.Get(variantID)
	if !ok {
		return "", false
	}
	return mapping.RemoteArticleID, true
}

// buildDraft derives the remote article content for a variant.
func (e *Engine) buildDraft(product *catalog.Product, variant *catalog.Variant) accounting.ArticleDraft {
	return accounting.ArticleDraft{
		Title:         product.Title + " - " + variant.DisplayTitle(),
		Description:   product.Description,
		Type:          accounting.ArticleTypeProduct,
		ArticleNumber: accounting.TruncateArticleNumber(variant.ArticleNumber()),
		UnitName:      accounting.DefaultUnitName,
		Price: accounting.ArticlePrice{
			NetPrice:     variant.Price(),
			LeadingPrice: accounting.LeadingPriceNet,
			TaxRate:      accounting.MapTaxRate(catalog.TaxRate(product, variant)),
		},
	}
}

// writeBackArticleID stores the remote article id in the variant metadata of
// the host catalog. Failures only degrade later lookups, so they are logged
// and swallowed.
func (e *Engine) writeBackArticleID(ctx context.Context, variantID, articleID string) {
	if e.catalog == nil {
		return
	}
	err := e.catalog.UpdateVariantMetadata(ctx, variantID, map[string]string{
		catalog.MetadataKeyArticleID: articleID,
	})
	if err != nil {
		e.logger.Warn("could not write article id to variant metadata",
			zap.String("variant_id", variantID),
			zap.String("article_id", articleID),
			zap.Error(err))
	}
}

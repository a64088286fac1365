package invoicing

import (
	"context"

	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/accounting"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/syncmap"
)

// ResolutionStatus classifies the outcome of an article lookup.
type ResolutionStatus int

const (
	// ResolutionFound means a known article id was confirmed on the remote
	// system.
	ResolutionFound ResolutionStatus = iota
	// ResolutionInvalid means a stored article id turned out to be stale on
	// the remote system.
	ResolutionInvalid
	// ResolutionNotFound means no article id is known for the item at all.
	ResolutionNotFound
)

// ArticleResolution is the result of resolving an order item to a remote
// article.
type ArticleResolution struct {
	Status    ResolutionStatus
	ArticleID string
}

// articleResolver finds the remote article for an order item. The variant
// metadata written back by the sync engine wins over the mapping store.
type articleResolver struct {
	client accounting.Client
	store  syncmap.Store
	logger *zap.Logger
}

func (r *articleResolver) resolve(ctx context.Context, item catalog.OrderItem) ArticleResolution {
	if id := item.VariantMetadata[catalog.MetadataKeyArticleID]; id != "" {
		if r.exists(ctx, id) {
			return ArticleResolution{Status: ResolutionFound, ArticleID: id}
		}
		r.logger.Warn("variant metadata points at a stale remote article",
			zap.String("variant_id", item.VariantID),
			zap.String("article_id", id))
		return ArticleResolution{Status: ResolutionInvalid, ArticleID: id}
	}

	if mapping, ok := r.store.Get(item.VariantID); ok {
		if r.exists(ctx, mapping.RemoteVariantArticleID) {
			return ArticleResolution{Status: ResolutionFound, ArticleID: mapping.RemoteVariantArticleID}
		}
		r.logger.Warn("mapping store points at a stale remote article",
			zap.String("variant_id", item.VariantID),
			zap.String("article_id", mapping.RemoteVariantArticleID))
		return ArticleResolution{Status: ResolutionInvalid, ArticleID: mapping.RemoteVariantArticleID}
	}

	return ArticleResolution{Status: ResolutionNotFound}
}

func (r *articleResolver) exists(ctx context.Context, articleID string) bool {
	_, err := r.client.GetArticle(ctx, articleID)
	return err == nil
}

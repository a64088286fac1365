package accounting

import "context"

// Client is the port to the remote accounting system. Implementations must
// translate HTTP 429 into retries and surface ErrRateLimitExceeded once the
// retry budget is spent, and wrap all other remote rejections in
// RemoteAPIError.
type Client interface {
	CreateContact(ctx context.Context, draft ContactDraft) (*CreatedResource, error)
	GetContact(ctx context.Context, id string) (*Contact, error)

	CreateArticle(ctx context.Context, draft ArticleDraft) (*Article, error)
	UpdateArticle(ctx context.Context, id string, update ArticleUpdate) (*Article, error)
	GetArticle(ctx context.Context, id string) (*Article, error)
	// GetArticleByNumber returns ErrArticleNotFound when no article carries
	// the given article number.
	GetArticleByNumber(ctx context.Context, articleNumber string) (*Article, error)
	ListArticles(ctx context.Context) ([]Article, error)
	DeleteArticle(ctx context.Context, id string) error

	// CreateInvoice submits the draft and requests synchronous finalization.
	CreateInvoice(ctx context.Context, draft InvoiceDraft) (*CreatedResource, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	FinalizeInvoice(ctx context.Context, id string) (*Invoice, error)
	DownloadInvoicePDF(ctx context.Context, id string) ([]byte, error)
}

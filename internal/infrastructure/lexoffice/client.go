// Package lexoffice implements the accounting.Client port against the
// lexoffice REST API.
package lexoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/accounting"
)

// maxResponseSize is the maximum allowed response size from the lexoffice API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	contentTypeJSON = "application/json"
	contentTypePDF  = "application/pdf"
)

// Client is the HTTP adapter for the lexoffice API
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

var _ accounting.Client = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger for the client
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new lexoffice client with the given configuration
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// backoffDelay returns the wait time before the given retry attempt.
// The delay doubles per attempt starting from the configured base.
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.config.RetryBaseDelay << attempt
}

// doRequest performs one API call including the 429 retry loop. A nil body
// sends no payload. The accept parameter selects the response representation.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, accept string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("lexoffice: failed to encode request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.config.APIBaseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("lexoffice: failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		req.Header.Set("Accept", accept)
		if payload != nil {
			req.Header.Set("Content-Type", contentTypeJSON)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("lexoffice: request failed: %w", err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("lexoffice: failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= c.config.MaxRetries {
				return nil, fmt.Errorf("%w: %s %s", accounting.ErrRateLimitExceeded, method, path)
			}
			delay := c.backoffDelay(attempt)
			c.logger.Warn("rate limited by lexoffice api, backing off",
				zap.String("method", method),
				zap.String("path", path),
				zap.Duration("delay", delay),
				zap.Int("attempt", attempt+1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		if resp.StatusCode >= 400 {
			return nil, &accounting.RemoteAPIError{Status: resp.StatusCode, Body: string(respBody)}
		}

		return respBody, nil
	}
}

// ---------------------------------------------------------------------------
// Contacts
// ---------------------------------------------------------------------------

// CreateContact creates a customer contact
func (c *Client) CreateContact(ctx context.Context, draft accounting.ContactDraft) (*accounting.CreatedResource, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/v1/contacts", contactToBody(draft), contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var created createdResourceResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode contact response: %w", err)
	}
	return &accounting.CreatedResource{ID: created.ID, ResourceURI: created.ResourceURI}, nil
}

// GetContact retrieves a contact by id
func (c *Client) GetContact(ctx context.Context, id string) (*accounting.Contact, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/contacts/"+id, nil, contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var resp contactResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode contact: %w", err)
	}
	return contactFromResponse(&resp), nil
}

// ---------------------------------------------------------------------------
// Articles
// ---------------------------------------------------------------------------

// CreateArticle creates a catalog article
func (c *Client) CreateArticle(ctx context.Context, draft accounting.ArticleDraft) (*accounting.Article, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/v1/articles", articleDraftToBody(draft, nil), contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var created createdResourceResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode article response: %w", err)
	}

	article := articleFromDraft(draft)
	article.ID = created.ID
	return article, nil
}

// UpdateArticle replaces an article. The update must carry the version of the
// current remote state or the API rejects it with a conflict.
func (c *Client) UpdateArticle(ctx context.Context, id string, update accounting.ArticleUpdate) (*accounting.Article, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	version := update.Version
	body, err := c.doRequest(ctx, http.MethodPut, "/v1/articles/"+id, articleDraftToBody(update.ArticleDraft, &version), contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var resp articleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode article: %w", err)
	}
	if resp.ID == "" {
		resp.ID = id
	}
	return articleFromResponse(&resp), nil
}

// GetArticle retrieves an article by id
func (c *Client) GetArticle(ctx context.Context, id string) (*accounting.Article, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/articles/"+id, nil, contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var resp articleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode article: %w", err)
	}
	return articleFromResponse(&resp), nil
}

// GetArticleByNumber searches for an article by its article number. Returns
// accounting.ErrArticleNotFound when nothing matches.
func (c *Client) GetArticleByNumber(ctx context.Context, articleNumber string) (*accounting.Article, error) {
	path := "/v1/articles?articleNumber=" + url.QueryEscape(articleNumber)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var resp articleListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode article list: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("%w: article number %q", accounting.ErrArticleNotFound, articleNumber)
	}
	return articleFromResponse(&resp.Content[0]), nil
}

// ListArticles retrieves all articles
func (c *Client) ListArticles(ctx context.Context) ([]accounting.Article, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/articles", nil, contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var resp articleListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode article list: %w", err)
	}

	articles := make([]accounting.Article, 0, len(resp.Content))
	for i := range resp.Content {
		articles = append(articles, *articleFromResponse(&resp.Content[i]))
	}
	return articles, nil
}

// DeleteArticle removes an article
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/v1/articles/"+id, nil, contentTypeJSON)
	return err
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

// CreateInvoice submits an invoice and requests synchronous finalization
func (c *Client) CreateInvoice(ctx context.Context, draft accounting.InvoiceDraft) (*accounting.CreatedResource, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/v1/invoices?finalize=true", invoiceDraftToBody(draft), contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var created createdResourceResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode invoice response: %w", err)
	}
	return &accounting.CreatedResource{ID: created.ID, ResourceURI: created.ResourceURI}, nil
}

// GetInvoice retrieves the status of an invoice
func (c *Client) GetInvoice(ctx context.Context, id string) (*accounting.Invoice, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/invoices/"+id, nil, contentTypeJSON)
	if err != nil {
		return nil, err
	}

	var resp invoiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("lexoffice: failed to decode invoice: %w", err)
	}
	return &accounting.Invoice{
		ID:            resp.ID,
		VoucherStatus: accounting.VoucherStatus(resp.VoucherStatus),
		VoucherNumber: resp.VoucherNumber,
	}, nil
}

// FinalizeInvoice transitions a draft invoice into its finalized, numbered
// state via the dedicated finalize endpoint, then refetches the document.
func (c *Client) FinalizeInvoice(ctx context.Context, id string) (*accounting.Invoice, error) {
	if _, err := c.doRequest(ctx, http.MethodPut, "/v1/invoices/"+id+"/finalize", nil, contentTypeJSON); err != nil {
		return nil, err
	}

	return c.GetInvoice(ctx, id)
}

// DownloadInvoicePDF fetches the rendered PDF document of an invoice
func (c *Client) DownloadInvoicePDF(ctx context.Context, id string) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/invoices/"+id+"/file", nil, contentTypePDF)
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func articleDraftToBody(draft accounting.ArticleDraft, version *int) articleBody {
	return articleBody{
		Title:         draft.Title,
		Description:   draft.Description,
		Type:          string(draft.Type),
		ArticleNumber: draft.ArticleNumber,
		UnitName:      draft.UnitName,
		Version:       version,
		Price: articlePriceBody{
			NetPrice:     draft.Price.NetPrice.InexactFloat64(),
			LeadingPrice: string(draft.Price.LeadingPrice),
			TaxRate:      float64(draft.Price.TaxRate),
		},
	}
}

func articleFromResponse(resp *articleResponse) *accounting.Article {
	return &accounting.Article{
		ID:            resp.ID,
		Title:         resp.Title,
		Description:   resp.Description,
		Type:          accounting.ArticleType(resp.Type),
		ArticleNumber: resp.ArticleNumber,
		UnitName:      resp.UnitName,
		Version:       resp.Version,
		Price: accounting.ArticlePrice{
			NetPrice:     decimal.NewFromFloat(resp.Price.NetPrice),
			LeadingPrice: accounting.LeadingPrice(resp.Price.LeadingPrice),
			TaxRate:      int(resp.Price.TaxRate),
		},
	}
}

func articleFromDraft(draft accounting.ArticleDraft) *accounting.Article {
	return &accounting.Article{
		Title:         draft.Title,
		Description:   draft.Description,
		Type:          draft.Type,
		ArticleNumber: draft.ArticleNumber,
		UnitName:      draft.UnitName,
		Price:         draft.Price,
	}
}

func contactToBody(draft accounting.ContactDraft) contactBody {
	body := contactBody{Version: 0}
	if draft.Company != nil {
		body.Company = &contactCompanyBody{Name: draft.Company.Name}
	}
	if draft.Person != nil {
		body.Person = &contactPersonBody{
			Salutation: draft.Person.Salutation,
			FirstName:  draft.Person.FirstName,
			LastName:   draft.Person.LastName,
		}
	}
	if draft.BillingAddress != nil {
		body.Addresses = &contactAddressesBody{
			Billing: []contactAddressBody{{
				Street:      draft.BillingAddress.Street,
				Zip:         draft.BillingAddress.Zip,
				City:        draft.BillingAddress.City,
				CountryCode: draft.BillingAddress.CountryCode,
			}},
		}
	}
	if draft.Email != "" {
		body.EmailAddresses = &contactEmailsBody{Business: []string{draft.Email}}
	}
	if draft.Phone != "" {
		body.PhoneNumbers = &contactPhonesBody{Business: []string{draft.Phone}}
	}
	return body
}

func contactFromResponse(resp *contactResponse) *accounting.Contact {
	contact := &accounting.Contact{ID: resp.ID}
	if resp.Company != nil {
		contact.Company = &accounting.Company{Name: resp.Company.Name}
	}
	if resp.Person != nil {
		contact.Person = &accounting.Person{
			Salutation: resp.Person.Salutation,
			FirstName:  resp.Person.FirstName,
			LastName:   resp.Person.LastName,
		}
	}
	if resp.Addresses != nil && len(resp.Addresses.Billing) > 0 {
		addr := resp.Addresses.Billing[0]
		contact.BillingAddress = &accounting.Address{
			Street:      addr.Street,
			Zip:         addr.Zip,
			City:        addr.City,
			CountryCode: addr.CountryCode,
		}
	}
	if resp.EmailAddresses != nil && len(resp.EmailAddresses.Business) > 0 {
		contact.Email = resp.EmailAddresses.Business[0]
	}
	if resp.PhoneNumbers != nil && len(resp.PhoneNumbers.Business) > 0 {
		contact.Phone = resp.PhoneNumbers.Business[0]
	}
	return contact
}

func invoiceDraftToBody(draft accounting.InvoiceDraft) invoiceBody {
	lineItems := make([]invoiceLineItemBody, 0, len(draft.LineItems))
	for _, item := range draft.LineItems {
		lineItems = append(lineItems, invoiceLineItemBody{
			ID:          item.ArticleID,
			Type:        string(item.Type),
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity.InexactFloat64(),
			UnitName:    item.UnitName,
			UnitPrice: invoiceUnitPriceBody{
				Currency:          item.UnitPrice.Currency,
				NetAmount:         item.UnitPrice.NetAmount.InexactFloat64(),
				GrossAmount:       item.UnitPrice.GrossAmount.InexactFloat64(),
				TaxRatePercentage: item.UnitPrice.TaxRatePercentage.InexactFloat64(),
			},
			LineItemAmount: item.LineItemAmount.InexactFloat64(),
		})
	}

	return invoiceBody{
		VoucherDate: draft.VoucherDate.Format(voucherDateFormat),
		Language:    draft.Language,
		Address: invoiceAddressBody{
			ContactID:   draft.Address.ContactID,
			Name:        draft.Address.Name,
			Street:      draft.Address.Street,
			Zip:         draft.Address.Zip,
			City:        draft.Address.City,
			CountryCode: draft.Address.CountryCode,
		},
		LineItems: lineItems,
		TotalPrice: invoiceTotalPriceBody{
			Currency:         draft.TotalPrice.Currency,
			TotalNetAmount:   draft.TotalPrice.TotalNetAmount.InexactFloat64(),
			TotalGrossAmount: draft.TotalPrice.TotalGrossAmount.InexactFloat64(),
			TotalTaxAmount:   draft.TotalPrice.TotalTaxAmount.InexactFloat64(),
		},
		TaxConditions: invoiceTaxConditionsBody{TaxType: string(draft.TaxType)},
		PaymentConditions: invoicePaymentConditionsBody{
			PaymentTermLabel:    draft.PaymentConditions.PaymentTermLabel,
			PaymentTermDuration: draft.PaymentConditions.PaymentTermDuration,
		},
		ShippingConditions: invoiceShippingConditionsBody{
			ShippingDate: draft.ShippingConditions.ShippingDate.Format(voucherDateFormat),
			ShippingType: draft.ShippingConditions.ShippingType,
		},
		Title:        draft.Title,
		Introduction: draft.Introduction,
		Remark:       draft.Remark,
	}
}

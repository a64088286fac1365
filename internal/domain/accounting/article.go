package accounting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ArticleType distinguishes physical goods from services on the remote ledger.
type ArticleType string

const (
	ArticleTypeProduct ArticleType = "PRODUCT"
	ArticleTypeService ArticleType = "SERVICE"
)

// LeadingPrice declares which side of an article price is authoritative.
type LeadingPrice string

const (
	LeadingPriceNet   LeadingPrice = "NET"
	LeadingPriceGross LeadingPrice = "GROSS"
)

// MaxArticleNumberLength is the longest article number the remote API accepts.
const MaxArticleNumberLength = 18

// DefaultUnitName is the unit label used for all synced articles.
const DefaultUnitName = "Stück"

var (
	ErrArticleTitleRequired = errors.New("article title is required")
	ErrArticleTypeInvalid   = errors.New("article type must be PRODUCT or SERVICE")
	ErrArticlePriceNegative = errors.New("article net price must not be negative")
)

// ArticlePrice is the price block of a remote article. The net amount leads;
// the remote system derives the gross side from the tax rate.
type ArticlePrice struct {
	NetPrice     decimal.Decimal
	LeadingPrice LeadingPrice
	TaxRate      int
}

// Article is a catalog entry on the remote accounting system. Version is the
// optimistic concurrency token the remote API requires on every update.
type Article struct {
	ID            string
	Title         string
	Description   string
	Type          ArticleType
	ArticleNumber string
	UnitName      string
	Version       int
	Price         ArticlePrice
}

// ArticleDraft carries the fields needed to create a remote article.
type ArticleDraft struct {
	Title         string
	Description   string
	Type          ArticleType
	ArticleNumber string
	UnitName      string
	Price         ArticlePrice
}

// Validate checks the draft against the remote API's hard requirements.
func (d *ArticleDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrArticleTitleRequired
	}
	if d.Type != ArticleTypeProduct && d.Type != ArticleTypeService {
		return fmt.Errorf("%w: %q", ErrArticleTypeInvalid, d.Type)
	}
	if d.Price.NetPrice.IsNegative() {
		return fmt.Errorf("%w: %s", ErrArticlePriceNegative, d.Price.NetPrice)
	}
	return nil
}

// ArticleUpdate is a full article replacement. The remote API rejects updates
// whose Version does not match the current remote state.
type ArticleUpdate struct {
	ArticleDraft
	Version int
}

// TruncateArticleNumber trims an article number to the remote length limit.
func TruncateArticleNumber(number string) string {
	if len(number) > MaxArticleNumberLength {
		return number[:MaxArticleNumberLength]
	}
	return number
}

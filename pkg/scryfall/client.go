// Package scryfall is a client for the Scryfall card catalog API.
//
// Requests are rate limited to one every 100ms as the API asks, carry a
// User-Agent, and can be cached twice: in a small in-process LRU memo and in
// a [cache.Cache] shared across runs.
//
//	c := scryfall.NewClient(scryfall.WithCache(fileCache, 24*time.Hour))
//	card, err := c.CardByName(ctx, "lightning bolt")
package scryfall

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/matzehuels/decksmith/pkg/buildinfo"
	"github.com/matzehuels/decksmith/pkg/cache"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/httputil"
	"github.com/matzehuels/decksmith/pkg/observability"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.scryfall.com"

	// DefaultInterval is the minimum spacing between requests.
	DefaultInterval = 100 * time.Millisecond

	// DefaultMemoSize is the number of responses kept in memory.
	DefaultMemoSize = 256
)

// Client talks to the catalog API.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	baseURL   string
	userAgent string
	cache     cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	memo      *lru.Cache
	logger    *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithInterval sets the minimum spacing between requests. Zero disables
// rate limiting.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithCache stores successful responses in cc for ttl.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) { c.cache, c.ttl = cc, ttl }
}

// WithMemoSize sets the number of responses memoized in process.
// Zero disables the memo.
func WithMemoSize(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.memo = nil
			return
		}
		c.memo, _ = lru.New(n)
	}
}

// WithKeyer sets the cache key layout.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) { c.keyer = k }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	memo, _ := lru.New(DefaultMemoSize)
	c := &Client{
		http:      httputil.NewHTTPClient(0),
		limiter:   rate.NewLimiter(rate.Every(DefaultInterval), 1),
		baseURL:   DefaultBaseURL,
		userAgent: buildinfo.UserAgent(),
		cache:     cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
		ttl:       24 * time.Hour,
		memo:      memo,
		logger:    log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CardByName resolves a card by fuzzy name.
func (c *Client) CardByName(ctx context.Context, name string) (*Card, error) {
	var card Card
	q := url.Values{"fuzzy": {name}}
	if err := c.get(ctx, "/cards/named", q, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CardByNameInSet resolves the exact name within one set. A response naming
// a different card (compared case-insensitively) is a *errors.NameMismatchError.
func (c *Client) CardByNameInSet(ctx context.Context, name, setCode string) (*Card, error) {
	var card Card
	q := url.Values{"exact": {name}, "set": {strings.ToLower(setCode)}}
	if err := c.get(ctx, "/cards/named", q, &card); err != nil {
		return nil, err
	}
	if !strings.EqualFold(card.Name, name) {
		return nil, &errors.NameMismatchError{Want: name, Got: card.Name}
	}
	return &card, nil
}

// CardByID fetches one printing.
func (c *Client) CardByID(ctx context.Context, id string) (*Card, error) {
	var card Card
	if err := c.get(ctx, "/cards/"+url.PathEscape(id), nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// SearchParams is a full-text card search.
type SearchParams struct {
	Query  string
	Page   int    // 1-based, default 1
	Unique string // cards, art or prints; default cards
	Order  string // default name
}

// Search runs a card search. A query without matches returns an empty list.
func (c *Client) Search(ctx context.Context, p SearchParams) (*CardList, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Unique == "" {
		p.Unique = "cards"
	}
	if p.Order == "" {
		p.Order = "name"
	}
	q := url.Values{
		"q":      {p.Query},
		"page":   {strconv.Itoa(p.Page)},
		"unique": {p.Unique},
		"order":  {p.Order},
	}
	var list CardList
	if err := c.get(ctx, "/cards/search", q, &list); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return &CardList{Object: "list"}, nil
		}
		return nil, err
	}
	return &list, nil
}

// cardQuery identifies a card by oracle id when known, else by exact name.
func cardQuery(oracleID, name string) string {
	if oracleID != "" {
		return "oracleid:" + oracleID
	}
	return `!"` + name + `"`
}

// CardVariations lists the distinct artworks of a card.
func (c *Client) CardVariations(ctx context.Context, oracleID, name string, page int) (*CardList, error) {
	return c.Search(ctx, SearchParams{Query: cardQuery(oracleID, name), Page: page, Unique: "art"})
}

// CardVariationsInSet lists every printing of a card within one set.
func (c *Client) CardVariationsInSet(ctx context.Context, setCode, oracleID, name string, page int) (*CardList, error) {
	return c.Search(ctx, SearchParams{
		Query:  cardQuery(oracleID, name) + " set:" + strings.ToLower(setCode),
		Page:   page,
		Unique: "prints",
		Order:  "set",
	})
}

// Sets lists every set.
func (c *Client) Sets(ctx context.Context) ([]Set, error) {
	var list SetList
	if err := c.get(ctx, "/sets", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	data, err := c.fetch(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decode %s", path)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	if c.memo != nil {
		if v, ok := c.memo.Get(u); ok {
			return v.([]byte), nil
		}
	}
	key := c.keyer.HTTPKey("scryfall", u)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "scryfall")
		c.remember(u, data)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "scryfall")

	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "rate limiter")
	}
	c.logger.Debug("catalog request", "url", u)
	data, err := httputil.Fetch(ctx, c.http, u, map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "application/json",
	})
	if err != nil {
		return nil, classify(ctx, u, err)
	}
	c.remember(u, data)
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug("catalog cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "scryfall", len(data))
	}
	return data, nil
}

func (c *Client) remember(u string, data []byte) {
	if c.memo != nil {
		c.memo.Add(u, data)
	}
}

// classify maps transport errors onto error codes, using the API's details
// as the message when the response carried an error object.
func classify(ctx context.Context, u string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	msg := "request " + u
	var se *httputil.StatusError
	if errors.As(err, &se) {
		var apiErr APIError
		if json.Unmarshal(se.Body, &apiErr) == nil && apiErr.Details != "" {
			msg = apiErr.Details
		}
	}
	switch {
	case stderrors.Is(err, httputil.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "%s", msg)
	case stderrors.Is(err, httputil.ErrRateLimited):
		return errors.Wrap(errors.ErrCodeRateLimited, err, "%s", msg)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s", msg)
	}
}

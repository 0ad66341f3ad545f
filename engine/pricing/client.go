// Package pricing looks up manufacturer's suggested retail prices on the
// CarAPI trims endpoint, choosing among the returned trims with the
// word-overlap matcher.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/WessleyAI/showroom/engine/matcher"
	"github.com/WessleyAI/showroom/pkg/metrics"
	"github.com/WessleyAI/showroom/pkg/resilience"
	"github.com/WessleyAI/showroom/pkg/telemetry"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public CarAPI endpoint.
const DefaultBaseURL = "https://carapi.app/api"

// Amount is an MSRP that may arrive as a number, a numeric string or null.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("pricing: msrp %q: %w", b, err)
	}
	*a = Amount(f)
	return nil
}

// TrimRecord is one entry of the trims response.
type TrimRecord struct {
	MSRP        Amount `json:"msrp"`
	Description string `json:"description"`
	Trim        string `json:"trim"`
	Submodel    string `json:"submodel"`
}

type trimsResponse struct {
	Data []TrimRecord `json:"data"`
}

func recordFields(r TrimRecord) []string {
	return []string{r.Description, r.Trim, r.Submodel}
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// Relay, when set, is prefixed to the escaped request URL, as with
	// "https://corsproxy.io/?".
	Relay   string
	Timeout time.Duration
	RPS     float64
	Cache   *Cache
	Breaker *resilience.Breaker
	Logger  *slog.Logger
	Metrics *metrics.Showroom
}

// Client fetches prices. Every outcome, including failure, is cached.
type Client struct {
	http    *resty.Client
	opts    Options
	cache   *Cache
	breaker *resilience.Breaker
	limiter *rate.Limiter
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Showroom
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewBreaker(resilience.BreakerOpts{Name: "carapi", Logger: opts.Logger})
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}

	hc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		hc.SetAuthToken(opts.Token)
	}
	telemetry.InstrumentResty(hc, "showroom/pricing")

	return &Client{
		http:    hc,
		opts:    opts,
		cache:   opts.Cache,
		breaker: opts.Breaker,
		limiter: rate.NewLimiter(limit, 1),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// RequestURL is the URL fetched for a model, including the relay prefix.
func (c *Client) RequestURL(year int, mk, model string) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("make", mk)
	q.Set("model", model)
	api := c.opts.BaseURL + "/trims/v2?" + q.Encode()
	if c.opts.Relay == "" {
		return api
	}
	return c.opts.Relay + url.QueryEscape(api)
}

// Price returns the MSRP of the best-matching trim, or nil when none is
// known. A key that resolved to nil is never fetched again. A caller whose
// context ends first gets nil without touching the cache; the shared lookup
// keeps running for the other waiters.
func (c *Client) Price(ctx context.Context, year int, mk, model, trim string) *float64 {
	key := CacheKey(year, mk, model, trim)
	if p, ok := c.cache.Get(key); ok {
		return p
	}
	if ctx.Err() != nil {
		return nil
	}
	ch := c.group.DoChan(key, func() (any, error) {
		p, err := c.fetch(context.WithoutCancel(ctx), year, mk, model, trim)
		if err != nil {
			c.logger.Warn("carapi price lookup failed", "key", key, "err", err)
			p = nil
		}
		c.cache.Put(key, p)
		if c.metrics != nil {
			if p != nil {
				c.metrics.PriceFound.Inc()
			} else {
				c.metrics.PriceMissing.Inc()
			}
		}
		return p, nil
	})
	select {
	case res := <-ch:
		return res.Val.(*float64)
	case <-ctx.Done():
		return nil
	}
}

func (c *Client) fetch(ctx context.Context, year int, mk, model, trim string) (*float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.PricesInFlight.Inc()
		defer c.metrics.PricesInFlight.Dec()
	}
	return resilience.Do(ctx, c.breaker, func(ctx context.Context) (*float64, error) {
		res, err := c.http.R().
			SetContext(ctx).
			Get(c.RequestURL(year, mk, model))
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return nil, fmt.Errorf("carapi returned %d", res.StatusCode())
		}
		var body trimsResponse
		if err := json.Unmarshal(res.Body(), &body); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		best, ok := matcher.BestMatch(body.Data, trim, recordFields)
		if !ok || best.MSRP <= 0 {
			return nil, nil
		}
		msrp := float64(best.MSRP)
		return &msrp, nil
	})
}

// Package carquery is the client for the CarQuery vehicle lookup API: makes
// by year, models by make and year, trims by year, make and model. Responses
// are memoized per parameter set and identical in-flight lookups share one
// upstream request.
package carquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/WessleyAI/showroom/pkg/metrics"
	"github.com/WessleyAI/showroom/pkg/telemetry"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public CarQuery endpoint.
const DefaultBaseURL = "https://www.carqueryapi.com/api/0.3/"

// ErrLookupFailed covers every lookup failure: transport errors, non-2xx
// responses and unparseable bodies alike.
var ErrLookupFailed = errors.New("carquery: lookup failed")

// Lookup is the read side of the client, used by the cascade and the
// inventory search.
type Lookup interface {
	Makes(ctx context.Context, year int) ([]Make, error)
	Models(ctx context.Context, year int, makeID string) ([]Model, error)
	Trims(ctx context.Context, year int, makeID, model string) ([]Trim, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RPS and Burst bound outbound requests. Zero RPS means unlimited.
	RPS     float64
	Burst   int
	Cache   *Cache
	Logger  *slog.Logger
	Metrics *metrics.Showroom
}

// Client talks to CarQuery over plain HTTPS.
type Client struct {
	http    *resty.Client
	baseURL string
	cache   *Cache
	group   singleflight.Group
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Showroom
}

var _ Lookup = (*Client)(nil)

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	hc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json, text/javascript")
	telemetry.InstrumentResty(hc, "showroom/carquery")

	return &Client{
		http:    hc,
		baseURL: opts.BaseURL,
		cache:   opts.Cache,
		limiter: rate.NewLimiter(limit, opts.Burst),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Makes lists the makes sold in the US for year.
func (c *Client) Makes(ctx context.Context, year int) ([]Make, error) {
	var resp makesResponse
	err := c.lookup(ctx, url.Values{
		"cmd":        {"getMakes"},
		"sold_in_us": {"1"},
		"year":       {strconv.Itoa(year)},
	}, &resp)
	return resp.Makes, err
}

// Models lists the models of makeID for year.
func (c *Client) Models(ctx context.Context, year int, makeID string) ([]Model, error) {
	var resp modelsResponse
	err := c.lookup(ctx, url.Values{
		"cmd":  {"getModels"},
		"make": {makeID},
		"year": {strconv.Itoa(year)},
	}, &resp)
	return resp.Models, err
}

// Trims lists the trims of a model.
func (c *Client) Trims(ctx context.Context, year int, makeID, model string) ([]Trim, error) {
	var resp trimsResponse
	err := c.lookup(ctx, url.Values{
		"cmd":   {"getTrims"},
		"year":  {strconv.Itoa(year)},
		"make":  {makeID},
		"model": {model},
	}, &resp)
	return resp.Trims, err
}

func (c *Client) lookup(ctx context.Context, params url.Values, dst any) error {
	payload, err := c.fetch(ctx, params)
	if err != nil {
		if c.metrics != nil {
			c.metrics.LookupErrors.Inc()
		}
		return err
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %s: decode: %w", ErrLookupFailed, params.Get("cmd"), err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, error) {
	key := Key(params)
	if payload, ok := c.cache.Get(key); ok {
		if c.metrics != nil {
			c.metrics.LookupCacheHits.Inc()
		}
		return payload, nil
	}
	if c.metrics != nil {
		c.metrics.LookupCacheMisses.Inc()
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		start := time.Now()
		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(params).
			Get(c.baseURL)
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return nil, fmt.Errorf("status %d", res.StatusCode())
		}
		payload, ok := unwrapJSONP(res.Body())
		if !ok || !json.Valid(payload) {
			return nil, errors.New("malformed response")
		}
		c.cache.Put(key, payload)
		c.logger.Debug("carquery lookup", "cmd", params.Get("cmd"), "duration", time.Since(start))
		return payload, nil
	})
	if err != nil {
		c.logger.Warn("carquery lookup failed", "cmd", params.Get("cmd"), "err", err, "shared", shared)
		return nil, fmt.Errorf("%w: %s: %w", ErrLookupFailed, params.Get("cmd"), err)
	}
	return v.([]byte), nil
}

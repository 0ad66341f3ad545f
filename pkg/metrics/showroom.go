package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// Showroom groups the metrics the showroom server exports.
type Showroom struct {
	reg *Registry

	LookupCacheHits   *Counter
	LookupCacheMisses *Counter
	LookupErrors      *Counter
	PriceFound        *Counter
	PriceMissing      *Counter
	PricesInFlight    *Gauge
	FavoriteToggles   *Counter
	Bookings          *Counter
}

// NewShowroom registers the showroom metrics on reg.
func NewShowroom(reg *Registry) *Showroom {
	return &Showroom{
		reg:               reg,
		LookupCacheHits:   reg.Counter("showroom_lookup_cache_hits_total", "CarQuery lookups served from cache."),
		LookupCacheMisses: reg.Counter("showroom_lookup_cache_misses_total", "CarQuery lookups sent upstream."),
		LookupErrors:      reg.Counter("showroom_lookup_errors_total", "CarQuery lookups that failed."),
		PriceFound:        reg.Counter(WithLabels("showroom_price_lookups_total", "outcome", "found"), "CarAPI price lookups by outcome."),
		PriceMissing:      reg.Counter(WithLabels("showroom_price_lookups_total", "outcome", "missing"), ""),
		PricesInFlight:    reg.Gauge("showroom_price_lookups_in_flight", "CarAPI price lookups currently running."),
		FavoriteToggles:   reg.Counter("showroom_favorite_toggles_total", "Favorite add/remove toggles."),
		Bookings:          reg.Counter("showroom_bookings_total", "Accepted test drive and schedule requests."),
	}
}

// ObserveRequest records an HTTP request. Its signature matches mid.Observer.
func (s *Showroom) ObserveRequest(r *http.Request, status int, d time.Duration) {
	s.reg.Counter(WithLabels("showroom_http_requests_total",
		"method", r.Method, "status", strconv.Itoa(status)), "HTTP requests by method and status.").Inc()
	s.reg.Histogram("showroom_http_request_duration_seconds", "HTTP request latency.", nil).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (s *Showroom) Registry() *Registry { return s.reg }

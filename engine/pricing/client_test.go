package pricing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/WessleyAI/showroom/pkg/metrics"
	"github.com/WessleyAI/showroom/pkg/resilience"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const trimsBody = `{"collection":{"count":3},"data":[
 {"msrp":33150,"description":"320i 4dr Sedan (2.0L 4cyl Turbo 8A)","trim":"320i","submodel":"Sedan"},
 {"msrp":"38850","description":"328i 4dr Sedan (2.0L 4cyl Turbo 8A)","trim":"328i","submodel":"Sedan"},
 {"msrp":null,"description":"335i 4dr Sedan","trim":"335i","submodel":"Sedan"}
]}`

func server(t *testing.T, h http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestPriceMatchesTrim(t *testing.T) {
	var auth, accept string
	var query url.Values
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		auth, accept = r.Header.Get("Authorization"), r.Header.Get("Accept")
		query = r.URL.Query()
		if r.URL.Path != "/trims/v2" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, trimsBody)
	})
	c := New(Options{BaseURL: srv.URL, Token: "tok", Logger: quiet})

	p := c.Price(context.Background(), 2015, "BMW", "3 Series", "328i")
	if p == nil || *p != 38850 {
		t.Fatalf("expected 38850, got %v", p)
	}
	if auth != "Bearer tok" || accept != "application/json" {
		t.Fatalf("headers: auth=%q accept=%q", auth, accept)
	}
	if query.Get("year") != "2015" || query.Get("make") != "BMW" || query.Get("model") != "3 Series" {
		t.Fatalf("query: %v", query)
	}
}

func TestPriceZeroMSRPIsNil(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, trimsBody)
	})
	c := New(Options{BaseURL: srv.URL, Logger: quiet})
	if p := c.Price(context.Background(), 2015, "BMW", "3 Series", "335i"); p != nil {
		t.Fatalf("null msrp should be nil, got %v", *p)
	}
}

func TestPriceEmptyData(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[]}`)
	})
	c := New(Options{BaseURL: srv.URL, Logger: quiet})
	if p := c.Price(context.Background(), 2015, "BMW", "3 Series", "328i"); p != nil {
		t.Fatal("expected nil")
	}
}

func TestFailedLookupCachedAsNil(t *testing.T) {
	srv, hits := server(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	m := metrics.NewShowroom(metrics.New())
	c := New(Options{BaseURL: srv.URL, Logger: quiet, Metrics: m})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if p := c.Price(ctx, 2015, "BMW", "3 Series", "328i"); p != nil {
			t.Fatalf("call %d: expected nil", i)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("failed key should not be refetched, got %d requests", hits.Load())
	}
	if _, ok := c.cache.Get("2015-bmw-3 series-328i"); !ok {
		t.Fatal("nil result not cached under the lowercase key")
	}
	if m.PriceMissing.Value() != 1 {
		t.Fatalf("missing = %d", m.PriceMissing.Value())
	}
}

func TestCacheKeyIgnoresCase(t *testing.T) {
	srv, hits := server(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, trimsBody)
	})
	c := New(Options{BaseURL: srv.URL, Logger: quiet})
	ctx := context.Background()
	c.Price(ctx, 2015, "BMW", "3 Series", "328i")
	c.Price(ctx, 2015, "bmw", "3 SERIES", "328I")
	if hits.Load() != 1 {
		t.Fatalf("expected one request, got %d", hits.Load())
	}
}

func TestRelayURL(t *testing.T) {
	c := New(Options{BaseURL: "https://carapi.app/api/", Relay: "https://corsproxy.io/?", Logger: quiet})
	got := c.RequestURL(2015, "BMW", "3 Series")
	want := "https://corsproxy.io/?" + url.QueryEscape("https://carapi.app/api/trims/v2?make=BMW&model=3+Series&year=2015")
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
	direct := New(Options{Logger: quiet}).RequestURL(2015, "BMW", "3 Series")
	if !strings.HasPrefix(direct, DefaultBaseURL+"/trims/v2?") {
		t.Fatalf("direct url %s", direct)
	}
}

func TestRelayRoundTrip(t *testing.T) {
	var target string
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		target = r.URL.RawQuery
		io.WriteString(w, trimsBody)
	})
	c := New(Options{BaseURL: "https://carapi.app/api", Relay: srv.URL + "/?", Logger: quiet})
	if p := c.Price(context.Background(), 2015, "BMW", "3 Series", "320i"); p == nil || *p != 33150 {
		t.Fatalf("expected 33150, got %v", p)
	}
	decoded, err := url.QueryUnescape(target)
	if err != nil || !strings.HasPrefix(decoded, "https://carapi.app/api/trims/v2?") {
		t.Fatalf("relay received %q", target)
	}
}

func TestOpenBreakerShortCircuits(t *testing.T) {
	srv, hits := server(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	b := resilience.NewBreaker(resilience.BreakerOpts{FailThreshold: 1, Logger: quiet})
	c := New(Options{BaseURL: srv.URL, Breaker: b, Logger: quiet})
	ctx := context.Background()
	c.Price(ctx, 2015, "BMW", "3 Series", "328i")
	c.Price(ctx, 2016, "BMW", "3 Series", "328i")
	if hits.Load() != 1 {
		t.Fatalf("open breaker should skip upstream, got %d requests", hits.Load())
	}
	if b.State() != resilience.StateOpen {
		t.Fatalf("breaker %s", b.State())
	}
}

// gatedServer serves trimsBody once release is closed and reports each
// request on entered.
func gatedServer(t *testing.T) (srv *httptest.Server, hits *atomic.Int32, entered <-chan struct{}, release func()) {
	t.Helper()
	in := make(chan struct{}, 8)
	gate := make(chan struct{})
	var once sync.Once
	release = func() { once.Do(func() { close(gate) }) }
	srv, hits = server(t, func(w http.ResponseWriter, r *http.Request) {
		in <- struct{}{}
		<-gate
		io.WriteString(w, trimsBody)
	})
	t.Cleanup(release)
	return srv, hits, in, release
}

func TestCancelledCallerLeavesCacheEmpty(t *testing.T) {
	srv, hits := server(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, trimsBody)
	})
	c := New(Options{BaseURL: srv.URL, Logger: quiet})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if p := c.Price(ctx, 2015, "BMW", "3 Series", "328i"); p != nil {
		t.Fatalf("cancelled caller got %v", *p)
	}
	if _, ok := c.cache.Get("2015-bmw-3 series-328i"); ok {
		t.Fatal("cancellation must not be cached")
	}
	if p := c.Price(context.Background(), 2015, "BMW", "3 Series", "328i"); p == nil || *p != 38850 {
		t.Fatalf("live caller after cancellation: %v", p)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one request, got %d", hits.Load())
	}
}

func TestLookupOutlivesCancelledLeader(t *testing.T) {
	srv, hits, entered, release := gatedServer(t)
	b := resilience.NewBreaker(resilience.BreakerOpts{FailThreshold: 1, Logger: quiet})
	c := New(Options{BaseURL: srv.URL, Breaker: b, Logger: quiet})

	ctx, cancel := context.WithCancel(context.Background())
	leader := make(chan *float64, 1)
	go func() { leader <- c.Price(ctx, 2015, "BMW", "3 Series", "328i") }()
	<-entered

	follower := make(chan *float64, 1)
	go func() { follower <- c.Price(context.Background(), 2015, "BMW", "3 Series", "328i") }()

	cancel()
	if p := <-leader; p != nil {
		t.Fatalf("cancelled leader got %v", *p)
	}
	release()
	if p := <-follower; p == nil || *p != 38850 {
		t.Fatalf("follower got %v", p)
	}
	if p, ok := c.cache.Get("2015-bmw-3 series-328i"); !ok || p == nil || *p != 38850 {
		t.Fatalf("cache holds %v ok=%v", p, ok)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one request, got %d", hits.Load())
	}
	if b.State() != resilience.StateClosed {
		t.Fatalf("cancelled caller tripped the breaker: %s", b.State())
	}
}

func TestAbortedCallersKeepBreakerClosed(t *testing.T) {
	srv, _, entered, release := gatedServer(t)
	b := resilience.NewBreaker(resilience.BreakerOpts{FailThreshold: 1, Logger: quiet})
	c := New(Options{BaseURL: srv.URL, Breaker: b, Logger: quiet})

	for year := 2015; year < 2018; year++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan *float64, 1)
		go func() { done <- c.Price(ctx, year, "BMW", "3 Series", "328i") }()
		<-entered
		cancel()
		if p := <-done; p != nil {
			t.Fatalf("%d: aborted caller got %v", year, *p)
		}
	}
	release()
	if p := c.Price(context.Background(), 2019, "BMW", "3 Series", "328i"); p == nil || *p != 38850 {
		t.Fatalf("fresh key after aborts: %v", p)
	}
	if b.State() != resilience.StateClosed {
		t.Fatalf("breaker %s", b.State())
	}
}

func TestSharedLookupCountedOnce(t *testing.T) {
	srv, hits, entered, release := gatedServer(t)
	m := metrics.NewShowroom(metrics.New())
	c := New(Options{BaseURL: srv.URL, Logger: quiet, Metrics: m})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Price(context.Background(), 2015, "BMW", "3 Series", "328i")
	}()
	<-entered
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p := c.Price(context.Background(), 2015, "BMW", "3 Series", "328i"); p == nil {
				t.Error("follower got nil")
			}
		}()
	}
	release()
	wg.Wait()
	if hits.Load() != 1 || m.PriceFound.Value() != 1 {
		t.Fatalf("hits=%d found=%d", hits.Load(), m.PriceFound.Value())
	}
}

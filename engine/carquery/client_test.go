package carquery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/WessleyAI/showroom/pkg/metrics"
	"github.com/google/go-cmp/cmp"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const makesBody = `?({"Makes":[{"make_id":"bmw","make_display":"BMW","make_is_common":"1","make_country":"Germany"},{"make_id":"honda","make_display":"Honda","make_is_common":1,"make_country":null}]});`

const trimsBody = `{"Trims":[{"model_id":"41913","model_make_id":"bmw","model_name":"3 Series","model_trim":"328i","model_year":"2015","model_body":"Sedan","model_engine_position":"Front","model_engine_fuel":"Gasoline","model_drive":"RWD","model_engine_power_ps":"240","model_engine_torque_nm":350,"model_transmission_type":"Automatic","model_lkm_city":null,"model_lkm_hwy":"5.9","model_weight_kg":1505},{"model_id":"41914","model_name":"3 Series","model_trim":"","model_year":2015}]}`

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, Logger: quiet, Timeout: 2 * time.Second}), &hits
}

func TestMakesParsesJSONP(t *testing.T) {
	var query url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		io.WriteString(w, makesBody)
	})
	makes, err := c.Makes(context.Background(), 2015)
	if err != nil {
		t.Fatal(err)
	}
	want := []Make{
		{ID: "bmw", Display: "BMW", IsCommon: "1", Country: "Germany"},
		{ID: "honda", Display: "Honda", IsCommon: "1"},
	}
	if diff := cmp.Diff(want, makes); diff != "" {
		t.Fatalf("makes mismatch (-want +got):\n%s", diff)
	}
	if query.Get("cmd") != "getMakes" || query.Get("sold_in_us") != "1" || query.Get("year") != "2015" {
		t.Fatalf("unexpected query %v", query)
	}
	if query.Get("callback") != "" {
		t.Fatal("client should not send a callback token")
	}
}

func TestModelsQuery(t *testing.T) {
	var query url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		io.WriteString(w, `{"Models":[{"model_name":"3 Series"},{"model_name":"5 Series"}]}`)
	})
	models, err := c.Models(context.Background(), 2015, "bmw")
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 2 || models[0].Name != "3 Series" {
		t.Fatalf("unexpected models %+v", models)
	}
	if query.Get("cmd") != "getModels" || query.Get("make") != "bmw" || query.Get("year") != "2015" {
		t.Fatalf("unexpected query %v", query)
	}
}

func TestTrimsFlexibleFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("model") != "3 Series" {
			t.Errorf("model param = %q", r.URL.Query().Get("model"))
		}
		io.WriteString(w, trimsBody)
	})
	trims, err := c.Trims(context.Background(), 2015, "bmw", "3 Series")
	if err != nil {
		t.Fatal(err)
	}
	if len(trims) != 2 {
		t.Fatalf("expected 2 trims, got %d", len(trims))
	}
	first := trims[0]
	if first.TorqueNm != "350" || first.WeightKg != "1505" || first.LkmCity != "" || first.PowerPS != "240" {
		t.Fatalf("fields not normalized: %+v", first)
	}
	if trims[1].TrimName() != "Standard" || trims[1].Year.Int() != 2015 {
		t.Fatalf("second trim: %+v", trims[1])
	}
}

func TestCacheHitSkipsNetwork(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, makesBody)
	})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Makes(ctx, 2015); err != nil {
			t.Fatal(err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream request, got %d", hits.Load())
	}
	c.Makes(ctx, 2016)
	if hits.Load() != 2 {
		t.Fatalf("different parameters should miss, got %d requests", hits.Load())
	}
}

func TestFailuresAreNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		io.WriteString(w, makesBody)
	})
	ctx := context.Background()
	if _, err := c.Makes(ctx, 2015); !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
	fail.Store(false)
	if _, err := c.Makes(ctx, 2015); err != nil {
		t.Fatalf("retry after failure should reach upstream: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", hits.Load())
	}
}

func TestMalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>maintenance</html>")
	})
	if _, err := c.Makes(context.Background(), 2015); !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
}

func TestConcurrentLookupsShareOneRequest(t *testing.T) {
	release := make(chan struct{})
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		io.WriteString(w, makesBody)
	})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Makes(context.Background(), 2015)
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream request, got %d", hits.Load())
	}
}

func TestMetricsCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, makesBody)
	}))
	defer srv.Close()
	m := metrics.NewShowroom(metrics.New())
	c := New(Options{BaseURL: srv.URL, Logger: quiet, Metrics: m})
	c.Makes(context.Background(), 2015)
	c.Makes(context.Background(), 2015)
	if m.LookupCacheMisses.Value() != 1 || m.LookupCacheHits.Value() != 1 {
		t.Fatalf("misses=%d hits=%d", m.LookupCacheMisses.Value(), m.LookupCacheHits.Value())
	}
}

func TestUnwrapJSONP(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{` cq_cb_x9({"a":1}); `, `{"a":1}`, true},
		{`?({"a":"(x)"});`, `{"a":"(x)"}`, true},
		{`[1,2]`, `[1,2]`, true},
		{``, ``, false},
		{`oops`, ``, false},
	}
	for _, tt := range tests {
		got, ok := unwrapJSONP([]byte(tt.in))
		if ok != tt.ok || (ok && string(got) != tt.want) {
			t.Errorf("unwrapJSONP(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestFieldUnmarshal(t *testing.T) {
	var rec struct {
		S, N, F, B, Z Field
	}
	err := json.Unmarshal([]byte(`{"S":"x","N":42,"F":5.9,"B":true,"Z":null}`), &rec)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join([]string{rec.S.String(), rec.N.String(), rec.F.String(), rec.B.String(), rec.Z.String()}, "|")
	if got != "x|42|5.9|true|" {
		t.Fatalf("got %s", got)
	}
}

func TestKeyIsStable(t *testing.T) {
	a := Key(url.Values{"year": {"2015"}, "cmd": {"getMakes"}, "sold_in_us": {"1"}})
	b := Key(url.Values{"sold_in_us": {"1"}, "cmd": {"getMakes"}, "year": {"2015"}})
	if a != b {
		t.Fatalf("%q != %q", a, b)
	}
}

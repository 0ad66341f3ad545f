package pricing

import (
	"context"
	"math"

	"github.com/WessleyAI/showroom/pkg/fn"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultWorkers bounds how many price lookups run at once.
const DefaultWorkers = 2

// Request identifies one price cell.
type Request struct {
	ID    string `json:"id"`
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Trim  string `json:"trim"`
}

// Result is the resolved price of one cell.
type Result struct {
	ID    string   `json:"id"`
	Price *float64 `json:"price"`
	Text  string   `json:"text"`
}

// Pricer resolves one price; *Client implements it.
type Pricer interface {
	Price(ctx context.Context, year int, mk, model, trim string) *float64
}

// Loader fills many price cells with a fixed number of concurrent lookups.
type Loader struct {
	pricer  Pricer
	workers int
}

// NewLoader creates a Loader. workers <= 0 means DefaultWorkers.
func NewLoader(p Pricer, workers int) *Loader {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Loader{pricer: p, workers: workers}
}

// Workers reports the concurrency limit.
func (l *Loader) Workers() int { return l.workers }

// Load resolves every request, returning results in request order. Cells
// not started before ctx ends resolve to nil.
func (l *Loader) Load(ctx context.Context, reqs []Request) []Result {
	prices := fn.ParMapCtx(ctx, reqs, l.workers, func(ctx context.Context, r Request) fn.Result[*float64] {
		return fn.Ok(l.pricer.Price(ctx, r.Year, r.Make, r.Model, r.Trim))
	})
	out := make([]Result, len(reqs))
	for i, r := range reqs {
		p := prices[i].UnwrapOr(nil)
		out[i] = Result{ID: r.ID, Price: p, Text: FormatPrice(p)}
	}
	return out
}

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders a price as whole US dollars with grouping, or "N/A".
func FormatPrice(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return usd.Sprintf("$%d", int64(math.Round(*p)))
}

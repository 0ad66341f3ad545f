// Package compare lays favorites out side by side: one column per vehicle,
// one row per spec, with the MSRP row filled in from the pricing loader.
package compare

import (
	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/WessleyAI/showroom/engine/pricing"
)

// Empty-state copy.
const (
	EmptyTitle = "No cars to compare"
	EmptyHint  = "Visit the Inventory page and click the star icon on vehicles you'd like to compare."
)

// CSS classes applied to resolved price cells.
const (
	ClassPriceFound   = "text-success fw-bold"
	ClassPriceMissing = "text-muted"
)

// MSRPLabel heads the price row.
const MSRPLabel = "Est. MSRP"

// Column is one compared vehicle.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Cell is one table cell. Price cells carry the request that fills them.
type Cell struct {
	Text    string           `json:"text"`
	Class   string           `json:"class,omitempty"`
	Loading bool             `json:"loading,omitempty"`
	Price   *pricing.Request `json:"price,omitempty"`
}

// Row is one spec across every column.
type Row struct {
	Label string `json:"label"`
	Cells []Cell `json:"cells"`
}

// Table is the rendered comparison. Empty is set when there are no favorites.
type Table struct {
	Empty   bool     `json:"empty"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type spec struct {
	label string
	unit  string
	value func(domain.Vehicle) string
}

// specs are the rows below the price, in display order.
var specs = []spec{
	{"Power", " hp", func(v domain.Vehicle) string { return v.Power }},
	{"Torque", " Nm", func(v domain.Vehicle) string { return v.Torque }},
	{"Transmission", "", func(v domain.Vehicle) string { return v.Transmission }},
	{"City MPG", " mpg", func(v domain.Vehicle) string { return v.CityMPG }},
	{"Highway MPG", " mpg", func(v domain.Vehicle) string { return v.HwyMPG }},
	{"Fuel Type", "", func(v domain.Vehicle) string { return v.FuelType }},
	{"Weight", " lbs", func(v domain.Vehicle) string { return v.Weight }},
	{"Body Style", "", func(v domain.Vehicle) string { return v.Body }},
	{"Drive", "", func(v domain.Vehicle) string { return v.Drive }},
}

// RowLabels lists every row label in order, price first.
func RowLabels() []string {
	out := []string{MSRPLabel}
	for _, s := range specs {
		out = append(out, s.label)
	}
	return out
}

// FormatSpec appends unit to value; a blank or "N/A" value renders as "N/A".
func FormatSpec(value, unit string) string {
	if value == "" || value == domain.NotAvailable {
		return domain.NotAvailable
	}
	return value + unit
}

// BuildTable lays out favs. Price cells start in the loading state.
func BuildTable(favs []domain.Vehicle) Table {
	if len(favs) == 0 {
		return Table{Empty: true}
	}
	t := Table{Columns: make([]Column, len(favs))}
	price := Row{Label: MSRPLabel, Cells: make([]Cell, len(favs))}
	for i, v := range favs {
		t.Columns[i] = Column{ID: v.ID, Title: v.Title()}
		price.Cells[i] = Cell{
			Loading: true,
			Price: &pricing.Request{
				ID: v.ID, Year: v.Year, Make: v.Make, Model: v.Model, Trim: v.Trim,
			},
		}
	}
	t.Rows = append(t.Rows, price)
	for _, s := range specs {
		row := Row{Label: s.label, Cells: make([]Cell, len(favs))}
		for i, v := range favs {
			row.Cells[i] = Cell{Text: FormatSpec(s.value(v), s.unit)}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// PriceRequests returns the requests of every loading price cell.
func (t *Table) PriceRequests() []pricing.Request {
	var out []pricing.Request
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			if c.Loading && c.Price != nil {
				out = append(out, *c.Price)
			}
		}
	}
	return out
}

// FillPrices resolves loading price cells from results, matched by id.
func (t *Table) FillPrices(results []pricing.Result) {
	byID := make(map[string]pricing.Result, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}
	for ri := range t.Rows {
		for ci := range t.Rows[ri].Cells {
			c := &t.Rows[ri].Cells[ci]
			if !c.Loading || c.Price == nil {
				continue
			}
			res, ok := byID[c.Price.ID]
			if !ok {
				continue
			}
			c.Loading = false
			c.Text = pricing.FormatPrice(res.Price)
			c.Class = ClassPriceMissing
			if res.Price != nil {
				c.Class = ClassPriceFound
			}
		}
	}
}

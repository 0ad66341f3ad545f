package compare

import (
	"strings"
	"testing"

	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/WessleyAI/showroom/engine/pricing"
	"github.com/google/go-cmp/cmp"
)

func favorites() []domain.Vehicle {
	return []domain.Vehicle{
		domain.Vehicle{
			Year: 2015, Make: "BMW", Model: "3 Series", Trim: "328i",
			Body: "Sedan", Engine: "Front", Drive: "RWD", Power: "240", Torque: "350",
			Transmission: "Automatic", HwyMPG: "5.9", FuelType: "Gasoline", Weight: "1505",
		}.WithID(),
		domain.Vehicle{
			Year: 2018, Make: "HONDA", Model: "Civic", Trim: "EX-L",
		}.WithDefaults().WithID(),
	}
}

func TestFormatSpec(t *testing.T) {
	tests := []struct{ value, unit, want string }{
		{"240", " hp", "240 hp"},
		{"", " hp", "N/A"},
		{"N/A", "", "N/A"},
		{"Automatic", "", "Automatic"},
	}
	for _, tt := range tests {
		if got := FormatSpec(tt.value, tt.unit); got != tt.want {
			t.Errorf("FormatSpec(%q, %q) = %q, want %q", tt.value, tt.unit, got, tt.want)
		}
	}
}

func TestBuildTableEmpty(t *testing.T) {
	tbl := BuildTable(nil)
	if !tbl.Empty || len(tbl.Rows) != 0 {
		t.Fatalf("expected empty table, got %+v", tbl)
	}
}

func TestBuildTableLayout(t *testing.T) {
	tbl := BuildTable(favorites())
	if tbl.Empty {
		t.Fatal("table should not be empty")
	}
	wantCols := []Column{
		{ID: "2015-bmw-3-series-328i", Title: "2015 BMW 3 Series 328i"},
		{ID: "2018-honda-civic-ex-l", Title: "2018 HONDA Civic EX-L"},
	}
	if diff := cmp.Diff(wantCols, tbl.Columns); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}

	var labels []string
	for _, r := range tbl.Rows {
		labels = append(labels, r.Label)
	}
	want := []string{"Est. MSRP", "Power", "Torque", "Transmission", "City MPG", "Highway MPG", "Fuel Type", "Weight", "Body Style", "Drive"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("row labels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, RowLabels()); diff != "" {
		t.Fatalf("RowLabels (-want +got):\n%s", diff)
	}

	cell := func(row, col int) string { return tbl.Rows[row].Cells[col].Text }
	if cell(1, 0) != "240 hp" || cell(2, 0) != "350 Nm" || cell(5, 0) != "5.9 mpg" || cell(7, 0) != "1505 lbs" {
		t.Fatalf("unit formatting wrong: %+v", tbl.Rows)
	}
	if cell(4, 0) != "N/A" || cell(1, 1) != "N/A" || cell(3, 1) != "N/A" {
		t.Fatal("missing values should render N/A")
	}
	for _, c := range tbl.Rows[0].Cells {
		if !c.Loading || c.Price == nil {
			t.Fatalf("price cells should start loading: %+v", c)
		}
	}
}

func TestFillPrices(t *testing.T) {
	tbl := BuildTable(favorites())
	reqs := tbl.PriceRequests()
	if len(reqs) != 2 || reqs[0].Make != "BMW" || reqs[1].Trim != "EX-L" {
		t.Fatalf("requests: %+v", reqs)
	}

	msrp := 38850.0
	tbl.FillPrices([]pricing.Result{
		{ID: reqs[0].ID, Price: &msrp},
		{ID: reqs[1].ID, Price: nil},
	})
	first, second := tbl.Rows[0].Cells[0], tbl.Rows[0].Cells[1]
	if first.Loading || first.Text != "$38,850" || first.Class != ClassPriceFound {
		t.Fatalf("found cell: %+v", first)
	}
	if second.Loading || second.Text != "N/A" || second.Class != ClassPriceMissing {
		t.Fatalf("missing cell: %+v", second)
	}
	if len(tbl.PriceRequests()) != 0 {
		t.Fatal("no cells should remain loading")
	}
}

func TestRenderEmpty(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, BuildTable(nil)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "No cars to compare") {
		t.Fatalf("empty state missing:\n%s", b.String())
	}
}

func TestRenderTable(t *testing.T) {
	tbl := BuildTable(favorites())
	msrp := 38850.0
	tbl.FillPrices([]pricing.Result{{ID: "2015-bmw-3-series-328i", Price: &msrp}})

	var b strings.Builder
	if err := Render(&b, tbl); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"2015 BMW 3 Series 328i",
		`data-id="2015-bmw-3-series-328i"`,
		`class="price-cell text-success fw-bold">$38,850`,
		`data-trim="EX-L"`,
		"spinner-border",
		"240 hp",
		"Body Style",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRenderEscapes(t *testing.T) {
	v := domain.Vehicle{Year: 2015, Make: "<script>", Model: "x", Trim: "y"}.WithID()
	var b strings.Builder
	Render(&b, BuildTable([]domain.Vehicle{v}))
	if strings.Contains(b.String(), "<script>") {
		t.Fatal("vehicle fields must be escaped")
	}
}

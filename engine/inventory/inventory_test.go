package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/google/go-cmp/cmp"
)

type stubLookup struct {
	trims []carquery.Trim
	err   error
}

func (s stubLookup) Makes(context.Context, int) ([]carquery.Make, error)           { return nil, nil }
func (s stubLookup) Models(context.Context, int, string) ([]carquery.Model, error) { return nil, nil }
func (s stubLookup) Trims(context.Context, int, string, string) ([]carquery.Trim, error) {
	return s.trims, s.err
}

type stubFavs map[string]bool

func (f stubFavs) IDs(context.Context, string) (map[string]bool, error) { return f, nil }

func TestVehicleFromTrim(t *testing.T) {
	got := VehicleFromTrim(2015, "bmw", carquery.Trim{
		Name:             "3 Series",
		Trim:             "328i",
		Body:             "Sedan",
		PowerPS:          "240",
		TorqueNm:         "350",
		TransmissionType: "Automatic",
		LkmHwy:           "5.9",
		WeightKg:         "1505",
	})
	want := domain.Vehicle{
		Year: 2015, Make: "BMW", Model: "3 Series", Trim: "328i",
		Body: "Sedan", Engine: "N/A", Drive: "N/A",
		Power: "240", Torque: "350", Transmission: "Automatic",
		HwyMPG: "5.9", FuelType: "N/A", Weight: "1505",
		ID: "2015-bmw-3-series-328i",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("vehicle mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchCapsAndFlagsFavorites(t *testing.T) {
	var trims []carquery.Trim
	for i := 0; i < 20; i++ {
		trims = append(trims, carquery.Trim{Name: "Civic", Trim: carquery.Field(fmt.Sprintf("T%d", i))})
	}
	svc := New(stubLookup{trims: trims}, stubFavs{"2018-honda-civic-t3": true})

	cards, err := svc.Search(context.Background(), "v", 2018, "honda", "Civic")
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != MaxResults {
		t.Fatalf("expected %d cards, got %d", MaxResults, len(cards))
	}
	for i, c := range cards {
		if c.Favorite != (i == 3) {
			t.Fatalf("card %d (%s) favorite=%v", i, c.ID, c.Favorite)
		}
	}
}

func TestSearchNoTrims(t *testing.T) {
	svc := New(stubLookup{}, stubFavs{})
	if _, err := svc.Search(context.Background(), "v", 2018, "honda", "Civic"); !errors.Is(err, ErrNoTrims) {
		t.Fatalf("expected ErrNoTrims, got %v", err)
	}
}

func TestSearchLookupError(t *testing.T) {
	svc := New(stubLookup{err: carquery.ErrLookupFailed}, stubFavs{})
	if _, err := svc.Search(context.Background(), "v", 2018, "honda", "Civic"); !errors.Is(err, carquery.ErrLookupFailed) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestSearchRequiresFilters(t *testing.T) {
	svc := New(stubLookup{}, stubFavs{})
	_, err := svc.Search(context.Background(), "v", 2018, "honda", "")
	if !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected missing field, got %v", err)
	}
	if _, err := svc.Search(context.Background(), "v", 0, "honda", "Civic"); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected missing year, got %v", err)
	}
}

// Package inventory turns a year, make and model into vehicle cards.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/domain"
)

// MaxResults caps the cards returned by one search.
const MaxResults = 12

// Banner texts shown in place of results.
const (
	NoTrimsMessage = "No trims found."
	ErrorMessage   = "Error loading trims."
	IdleMessage    = "Choose filters and click Search to load sample trims."
)

// ErrNoTrims is returned when the model has no trims for the year.
var ErrNoTrims = errors.New("inventory: no trims found")

// Card is a search result: a vehicle plus whether the visitor saved it.
type Card struct {
	domain.Vehicle
	Favorite bool `json:"favorite"`
}

// FavoriteIDs reports which vehicle ids a visitor has saved.
type FavoriteIDs interface {
	IDs(ctx context.Context, visitor string) (map[string]bool, error)
}

// Service runs inventory searches.
type Service struct {
	lookup carquery.Lookup
	favs   FavoriteIDs
}

// New creates a Service.
func New(lookup carquery.Lookup, favs FavoriteIDs) *Service {
	return &Service{lookup: lookup, favs: favs}
}

// Search loads the trims of model and returns up to MaxResults cards.
func (s *Service) Search(ctx context.Context, visitor string, year int, makeID, model string) ([]Card, error) {
	if err := domain.Required("year", yearString(year), "make", makeID, "model", model); err != nil {
		return nil, err
	}
	trims, err := s.lookup.Trims(ctx, year, makeID, model)
	if err != nil {
		return nil, err
	}
	if len(trims) == 0 {
		return nil, ErrNoTrims
	}
	if len(trims) > MaxResults {
		trims = trims[:MaxResults]
	}

	saved, err := s.favs.IDs(ctx, visitor)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	cards := make([]Card, len(trims))
	for i, t := range trims {
		v := VehicleFromTrim(year, makeID, t)
		cards[i] = Card{Vehicle: v, Favorite: saved[v.ID]}
	}
	return cards, nil
}

// VehicleFromTrim maps a CarQuery trim record onto a Vehicle. The make is
// shown upper-cased, blank descriptive fields get placeholders and the id
// is derived.
func VehicleFromTrim(year int, makeID string, t carquery.Trim) domain.Vehicle {
	return domain.Vehicle{
		Year:         year,
		Make:         strings.ToUpper(makeID),
		Model:        t.Name.String(),
		Trim:         t.Trim.String(),
		Body:         t.Body.String(),
		Engine:       t.EnginePosition.String(),
		Drive:        t.Drive.String(),
		Power:        t.PowerPS.String(),
		Torque:       t.TorqueNm.String(),
		Transmission: t.TransmissionType.String(),
		CityMPG:      t.LkmCity.String(),
		HwyMPG:       t.LkmHwy.String(),
		FuelType:     t.EngineFuel.String(),
		Weight:       t.WeightKg.String(),
	}.WithDefaults().WithID()
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return fmt.Sprint(year)
}

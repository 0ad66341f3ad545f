package domain

import (
	"strconv"
	"strings"
)

// Model years offered by the inventory search.
const (
	MinModelYear = 2000
	MaxModelYear = 2020
)

// YearRange is an inclusive span of model years.
type YearRange struct {
	Min, Max int
}

// DefaultYearRange is MinModelYear..MaxModelYear.
var DefaultYearRange = YearRange{Min: MinModelYear, Max: MaxModelYear}

// Years lists the range newest first, the order the year dropdown shows.
func (r YearRange) Years() []int {
	if r.Max < r.Min {
		return nil
	}
	out := make([]int, 0, r.Max-r.Min+1)
	for y := r.Max; y >= r.Min; y-- {
		out = append(out, y)
	}
	return out
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// Validate checks a vehicle before it is stored as a favorite.
func (r YearRange) Validate(v Vehicle) error {
	if !r.Contains(v.Year) {
		return NewValidationError("year", strconv.Itoa(v.Year), ErrYearOutOfRange)
	}
	if strings.TrimSpace(v.Make) == "" {
		return NewValidationError("make", v.Make, ErrInvalidVehicle)
	}
	if strings.TrimSpace(v.Model) == "" {
		return NewValidationError("model", v.Model, ErrInvalidVehicle)
	}
	return nil
}

// ValidateVehicle validates v against DefaultYearRange.
func ValidateVehicle(v Vehicle) error {
	return DefaultYearRange.Validate(v)
}

// Required returns a ValidationError naming the first blank field, in the
// order given as name/value pairs.
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return NewValidationError(pairs[i], pairs[i+1], ErrMissingField)
		}
	}
	return nil
}

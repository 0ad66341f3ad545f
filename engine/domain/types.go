// Package domain defines the showroom's core types, identity rules and
// validation shared by every engine package.
package domain

import (
	"strconv"
	"strings"
	"unicode"
)

// Placeholders applied when a lookup record leaves a field blank.
const (
	DefaultTrim  = "Standard"
	NotAvailable = "N/A"
)

// Vehicle is one year/make/model/trim configuration with its headline specs.
// Spec values are kept as the upstream strings; empty means unknown.
type Vehicle struct {
	Year         int    `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Trim         string `json:"trim"`
	Body         string `json:"body"`
	Engine       string `json:"engine"`
	Drive        string `json:"drive"`
	Power        string `json:"power,omitempty"`
	Torque       string `json:"torque,omitempty"`
	Transmission string `json:"transmission"`
	CityMPG      string `json:"cityMPG,omitempty"`
	HwyMPG       string `json:"hwyMPG,omitempty"`
	FuelType     string `json:"fuelType"`
	Weight       string `json:"weight,omitempty"`
	ID           string `json:"id"`
}

// VehicleID derives the identity used for favorites: the lowercase
// "year-make-model-trim" with every whitespace run turned into one hyphen.
func VehicleID(year int, mk, model, trim string) string {
	raw := strconv.Itoa(year) + "-" + mk + "-" + model + "-" + trim
	var b strings.Builder
	b.Grow(len(raw))
	inSpace := false
	for _, r := range strings.ToLower(raw) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// WithID returns v with ID recomputed from its year, make, model and trim.
func (v Vehicle) WithID() Vehicle {
	v.ID = VehicleID(v.Year, v.Make, v.Model, v.Trim)
	return v
}

// WithDefaults fills blank descriptive fields with their placeholders.
func (v Vehicle) WithDefaults() Vehicle {
	if v.Trim == "" {
		v.Trim = DefaultTrim
	}
	for _, f := range []*string{&v.Body, &v.Engine, &v.Drive, &v.Transmission, &v.FuelType} {
		if *f == "" {
			*f = NotAvailable
		}
	}
	return v
}

// Title is the "year make model trim" heading used in tables and messages.
func (v Vehicle) Title() string {
	return strings.Join([]string{strconv.Itoa(v.Year), v.Make, v.Model, v.Trim}, " ")
}

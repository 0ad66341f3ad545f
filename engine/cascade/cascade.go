// Package cascade models the dependent year, make, model and trim dropdowns.
// Choosing a field resets and disables every field below it, then loads the
// next field's options through the CarQuery client.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/domain"
)

// ErrUnknownOption is returned when a value is not among a dropdown's options.
var ErrUnknownOption = errors.New("cascade: value not offered")

// Selection is the set of chosen values, as submitted by a form.
type Selection struct {
	Year  string `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Trim  string `json:"trim,omitempty"`
}

// Summary is a completed selection with the make's display label resolved.
type Summary struct {
	Year   int    `json:"year"`
	MakeID string `json:"make_id"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Trim   string `json:"trim"`
}

// Cascade is the state of one set of dependent dropdowns. It is not safe for
// concurrent use; build one per request.
type Cascade struct {
	lookup carquery.Lookup
	labels Labels
	years  domain.YearRange

	Year  Select `json:"year"`
	Make  Select `json:"make"`
	Model Select `json:"model"`
	Trim  Select `json:"trim"`
	// Ready is true once the last level has a value: the inventory search or
	// the test drive submit button is enabled.
	Ready bool `json:"ready"`
}

// New builds a cascade in its initial state.
func New(lookup carquery.Lookup, labels Labels, years domain.YearRange) *Cascade {
	c := &Cascade{lookup: lookup, labels: labels, years: years}
	c.Reset()
	return c
}

// Reset restores the initial state: years listed, everything else idle.
func (c *Cascade) Reset() {
	years := c.years.Years()
	opts := make([]Option, len(years))
	for i, y := range years {
		s := strconv.Itoa(y)
		opts[i] = Option{Value: s, Label: s}
	}
	c.Year.fill(opts, c.labels.Year)
	c.Make.idle(c.labels.MakeIdle)
	c.Model.idle(c.labels.ModelIdle)
	c.Trim.idle(c.labels.TrimIdle)
	c.Ready = false
}

// Levels reports how many dropdowns this cascade shows.
func (c *Cascade) Levels() int { return c.labels.Levels }

// SelectYear picks a year and loads its makes. An empty year clears it.
func (c *Cascade) SelectYear(ctx context.Context, year string) error {
	c.Make.idle(c.labels.MakeIdle)
	c.Model.idle(c.labels.ModelIdle)
	c.Trim.idle(c.labels.TrimIdle)
	c.Ready = false
	c.Year.Selected = ""
	if year == "" {
		return nil
	}
	if !c.Year.has(year) {
		return fmt.Errorf("%w: year %q", ErrUnknownOption, year)
	}
	c.Year.Selected = year
	y, _ := strconv.Atoi(year)

	makes, err := c.lookup.Makes(ctx, y)
	if err != nil {
		c.Make.fail(c.labels.MakeError)
		return err
	}
	opts := make([]Option, 0, len(makes))
	for _, m := range makes {
		opts = append(opts, Option{Value: m.ID.String(), Label: m.Display.String()})
	}
	c.Make.fill(opts, c.labels.Make)
	return nil
}

// SelectMake picks a make id and loads its models.
func (c *Cascade) SelectMake(ctx context.Context, makeID string) error {
	c.Model.idle(c.labels.ModelIdle)
	c.Trim.idle(c.labels.TrimIdle)
	c.Ready = false
	c.Make.Selected = ""
	if makeID == "" {
		return nil
	}
	if !c.Make.has(makeID) {
		return fmt.Errorf("%w: make %q", ErrUnknownOption, makeID)
	}
	c.Make.Selected = makeID

	models, err := c.lookup.Models(ctx, c.year(), makeID)
	if err != nil {
		c.Model.fail(c.labels.ModelError)
		return err
	}
	opts := make([]Option, 0, len(models))
	for _, m := range models {
		opts = append(opts, Option{Value: m.Name.String(), Label: m.Name.String()})
	}
	c.Model.fill(opts, c.labels.Model)
	return nil
}

// SelectModel picks a model. A three-level cascade becomes ready; a
// four-level one loads the model's trims.
func (c *Cascade) SelectModel(ctx context.Context, model string) error {
	c.Trim.idle(c.labels.TrimIdle)
	c.Ready = false
	c.Model.Selected = ""
	if model == "" {
		return nil
	}
	if !c.Model.has(model) {
		return fmt.Errorf("%w: model %q", ErrUnknownOption, model)
	}
	c.Model.Selected = model
	if c.labels.Levels < 4 {
		c.Ready = true
		return nil
	}

	trims, err := c.lookup.Trims(ctx, c.year(), c.Make.Selected, model)
	if err != nil {
		c.Trim.fail(c.labels.TrimError)
		return err
	}
	opts := make([]Option, 0, len(trims))
	for _, t := range trims {
		name := t.TrimName()
		opts = append(opts, Option{Value: name, Label: name})
	}
	c.Trim.fill(opts, c.labels.Trim)
	return nil
}

// SelectTrim picks a trim, making a four-level cascade ready.
func (c *Cascade) SelectTrim(trim string) error {
	c.Ready = false
	c.Trim.Selected = ""
	if trim == "" {
		return nil
	}
	if !c.Trim.has(trim) {
		return fmt.Errorf("%w: trim %q", ErrUnknownOption, trim)
	}
	c.Trim.Selected = trim
	c.Ready = true
	return nil
}

// Resolve replays sel in dependency order from the initial state, stopping
// at the first empty value or error. The cascade reflects everything applied
// up to that point.
func (c *Cascade) Resolve(ctx context.Context, sel Selection) error {
	c.Reset()
	type step struct {
		value string
		apply func() error
	}
	steps := []step{
		{sel.Year, func() error { return c.SelectYear(ctx, sel.Year) }},
		{sel.Make, func() error { return c.SelectMake(ctx, sel.Make) }},
		{sel.Model, func() error { return c.SelectModel(ctx, sel.Model) }},
	}
	if c.labels.Levels >= 4 {
		steps = append(steps, step{sel.Trim, func() error { return c.SelectTrim(sel.Trim) }})
	}
	for _, s := range steps {
		if s.value == "" {
			return nil
		}
		if err := s.apply(); err != nil {
			return err
		}
	}
	return nil
}

// Summary describes the current selection using the make's display label.
// It fails unless the cascade is ready.
func (c *Cascade) Summary() (Summary, error) {
	if !c.Ready {
		return Summary{}, domain.NewValidationError("selection", c.Year.Selected, domain.ErrMissingField)
	}
	trim := c.Trim.Selected
	if trim == "" {
		trim = domain.DefaultTrim
	}
	return Summary{
		Year:   c.year(),
		MakeID: c.Make.Selected,
		Make:   c.Make.Label(),
		Model:  c.Model.Selected,
		Trim:   trim,
	}, nil
}

func (c *Cascade) year() int {
	y, _ := strconv.Atoi(c.Year.Selected)
	return y
}

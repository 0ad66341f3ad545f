package cascade

// Option is one entry of a dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Select is the state of one dropdown. The placeholder is rendered as the
// first option with an empty value.
type Select struct {
	Placeholder string   `json:"placeholder"`
	Options     []Option `json:"options"`
	Selected    string   `json:"selected,omitempty"`
	Disabled    bool     `json:"disabled"`
	// Failed marks a dropdown whose options could not be loaded.
	Failed bool `json:"failed,omitempty"`
}

// fill replaces the options, enabling the dropdown only when there is
// something to choose.
func (s *Select) fill(items []Option, placeholder string) {
	*s = Select{
		Placeholder: placeholder,
		Options:     items,
		Disabled:    len(items) == 0,
	}
}

// idle empties and disables the dropdown, showing placeholder.
func (s *Select) idle(placeholder string) {
	*s = Select{Placeholder: placeholder, Options: []Option{}, Disabled: true}
}

// fail shows the error placeholder in place of any options.
func (s *Select) fail(placeholder string) {
	s.idle(placeholder)
	s.Failed = true
}

func (s *Select) has(value string) bool {
	for _, o := range s.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Label returns the label of the selected option, or "".
func (s Select) Label() string {
	for _, o := range s.Options {
		if o.Value == s.Selected {
			return o.Label
		}
	}
	return ""
}

// Labels holds the placeholder texts of one cascade variant.
type Labels struct {
	// Levels is 3 when the cascade stops at model, 4 when it includes trim.
	Levels int

	Year  string
	Make  string
	Model string
	Trim  string

	// Shown while the field above is unset.
	MakeIdle  string
	ModelIdle string
	TrimIdle  string

	MakeError  string
	ModelError string
	TrimError  string
}

// InventoryLabels drive the inventory search: year, make and model, with
// the search enabled once a model is picked.
var InventoryLabels = Labels{
	Levels:     3,
	Year:       "Any Year",
	Make:       "Make",
	Model:      "Model",
	MakeIdle:   "Select Year First",
	ModelIdle:  "Select Make First",
	MakeError:  "Error Loading Makes",
	ModelError: "Error Loading Models",
}

// TestDriveLabels drive the test drive form's four dropdowns.
var TestDriveLabels = Labels{
	Levels:     4,
	Year:       "Year",
	Make:       "Make",
	Model:      "Model",
	Trim:       "Trim",
	MakeIdle:   "Make",
	ModelIdle:  "Model",
	TrimIdle:   "Trim",
	MakeError:  "Error",
	ModelError: "Error",
	TrimError:  "Error",
}

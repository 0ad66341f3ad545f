package carquery

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Field is a record value that may arrive as a string, number, bool or null.
// It always holds the textual form; null becomes "".
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Field(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*f = Field(b)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = Field(n.String())
	}
	return nil
}

func (f Field) String() string { return string(f) }

// Int parses the field, returning 0 when it is not an integer.
func (f Field) Int() int {
	n, _ := strconv.Atoi(string(f))
	return n
}

// Make is one entry of a getMakes response.
type Make struct {
	ID       Field `json:"make_id"`
	Display  Field `json:"make_display"`
	IsCommon Field `json:"make_is_common"`
	Country  Field `json:"make_country"`
}

// Model is one entry of a getModels response.
type Model struct {
	Name   Field `json:"model_name"`
	MakeID Field `json:"model_make_id"`
}

// Trim is one entry of a getTrims response. Only the fields the showroom
// displays are decoded.
type Trim struct {
	ID               Field `json:"model_id"`
	MakeID           Field `json:"model_make_id"`
	Name             Field `json:"model_name"`
	Trim             Field `json:"model_trim"`
	Year             Field `json:"model_year"`
	Body             Field `json:"model_body"`
	EnginePosition   Field `json:"model_engine_position"`
	EngineFuel       Field `json:"model_engine_fuel"`
	Drive            Field `json:"model_drive"`
	PowerPS          Field `json:"model_engine_power_ps"`
	TorqueNm         Field `json:"model_engine_torque_nm"`
	TransmissionType Field `json:"model_transmission_type"`
	LkmCity          Field `json:"model_lkm_city"`
	LkmHwy           Field `json:"model_lkm_hwy"`
	WeightKg         Field `json:"model_weight_kg"`
}

// TrimName is the trim label, "Standard" when the record has none.
func (t Trim) TrimName() string {
	if t.Trim == "" {
		return "Standard"
	}
	return string(t.Trim)
}

type makesResponse struct {
	Makes []Make `json:"Makes"`
}

type modelsResponse struct {
	Models []Model `json:"Models"`
}

type trimsResponse struct {
	Trims []Trim `json:"Trims"`
}

// unwrapJSONP returns the JSON payload of body, which may be bare JSON or a
// JSONP call such as `cb({...});` or `?({...});`.
func unwrapJSONP(body []byte) ([]byte, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false
	}
	if body[0] == '{' || body[0] == '[' {
		return body, true
	}
	open := bytes.IndexByte(body, '(')
	end := bytes.LastIndexByte(body, ')')
	if open < 0 || end <= open {
		return nil, false
	}
	return bytes.TrimSpace(body[open+1 : end]), true
}

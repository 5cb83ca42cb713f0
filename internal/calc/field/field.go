package field

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a leniently decoded numeric field. Numbers, numeric strings and
// booleans are accepted; anything else decodes to 0 without failing the
// surrounding document. Set reports whether the key was present and not null.
type Number struct {
	Value float64
	Set   bool
}

func Num(v float64) Number {
	return Number{Value: v, Set: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	*n = Number{Set: true}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		n.Value = parse(s)
	case 't':
		n.Value = 1
	case 'f':
		n.Value = 0
	default:
		n.Value = parse(string(b))
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// Or returns the value, or def when the field was absent.
func (n Number) Or(def float64) float64 {
	if !n.Set {
		return def
	}
	return n.Value
}

func parse(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Text is a leniently decoded string field. Non-string JSON values decode to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = ""
		return nil
	}
	*t = Text(s)
	return nil
}

// Record is one component's field set. A non-object value decodes to an empty record.
type Record map[string]Number

func (r *Record) UnmarshalJSON(b []byte) error {
	var m map[string]Number
	if err := json.Unmarshal(b, &m); err != nil {
		*r = Record{}
		return nil
	}
	*r = m
	return nil
}

func (r Record) Get(name string) Number {
	if r == nil {
		return Number{}
	}
	return r[name]
}

// Format renders a measured value the way the advisory messages quote it:
// shortest round-trip digits, always with a fractional part ("100.0", "0.2"),
// switching to exponent form below 1e-4 and from 1e16 up ("1e-05", "1e+16").
func Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if v != 0 {
		exp := strconv.FormatFloat(v, 'e', -1, 64)
		if e, err := strconv.Atoi(exp[strings.IndexByte(exp, 'e')+1:]); err == nil && (e < -4 || e >= 16) {
			return exp
		}
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

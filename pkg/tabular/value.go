package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the scalar stored in a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "null"
	}
}

// Value is a tagged scalar cell: null, string or number.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s as a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps f as a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Parse infers a Value from raw cell text. Empty text is null. Text is only
// treated as a number when formatting the parsed float reproduces it exactly,
// so values such as "007" or "1e3" stay strings and re-export unchanged.
func Parse(raw string) Value {
	if raw == "" {
		return Null()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return String(raw)
	}
	if formatNumber(f) != raw {
		return String(raw)
	}
	return Number(f)
}

// Kind reports the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload and whether the value is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the display form; null renders as an empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return v.Text()
}

// Equal compares kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	default:
		return true
	}
}

// Less orders numbers before strings; nulls sort first.
func (v Value) Less(other Value) bool {
	if v.kind != other.kind {
		return rank(v.kind) < rank(other.kind)
	}
	switch v.kind {
	case KindNumber:
		return v.num < other.num
	case KindString:
		return v.str < other.str
	default:
		return false
	}
}

// ContainsFold reports whether the text form contains term, ignoring case.
// Null values never match.
func (v Value) ContainsFold(term string) bool {
	if v.kind == KindNull {
		return false
	}
	return strings.Contains(strings.ToLower(v.Text()), strings.ToLower(term))
}

// MarshalJSON encodes the value as JSON null, string or number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(formatNumber(v.num)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes JSON null, string or number.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Null()
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode string cell: %w", err)
		}
		*v = String(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return fmt.Errorf("decode numeric cell: %w", err)
	}
	*v = Number(f)
	return nil
}

func rank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindNumber:
		return 1
	default:
		return 2
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

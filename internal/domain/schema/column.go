package schema

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"golang.org/x/exp/constraints"

	"github.com/leengari/simpledb/internal/domain/errors"
)

type ColumnType string

const (
	ColumnTypeInt   ColumnType = "INT"
	ColumnTypeFloat ColumnType = "FLOAT"
	ColumnTypeText  ColumnType = "TEXT"
	ColumnTypeDate  ColumnType = "DATE"
)

// DateLayout is the ISO-8601 calendar date form used for DATE values on disk
const DateLayout = "2006-01-02"

var columnTypeAliases = map[string]ColumnType{
	"INT":     ColumnTypeInt,
	"INTEGER": ColumnTypeInt,
	"FLOAT":   ColumnTypeFloat,
	"REAL":    ColumnTypeFloat,
	"TEXT":    ColumnTypeText,
	"STR":     ColumnTypeText,
	"STRING":  ColumnTypeText,
	"DATE":    ColumnTypeDate,
}

// ParseColumnType maps a type tag (canonical or alias, any case) to a ColumnType
func ParseColumnType(tag string) (ColumnType, error) {
	t, ok := columnTypeAliases[strings.ToUpper(strings.TrimSpace(tag))]
	if !ok {
		return "", errors.NewInvalidSchema("", fmt.Sprintf("unknown column type %q", tag))
	}
	return t, nil
}

type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Coerce checks that v is an instance of the column type and returns it in
// canonical form (int64, float64, string, UTC date)
func (t ColumnType) Coerce(v interface{}) (interface{}, bool) {
	switch t {
	case ColumnTypeInt:
		return toInt64(v)
	case ColumnTypeFloat:
		switch f := v.(type) {
		case float64:
			return f, finite(f)
		case float32:
			return float64(f), finite(float64(f))
		}
		if i, ok := toInt64(v); ok {
			return float64(i.(int64)), true
		}
	case ColumnTypeText:
		if s, ok := v.(string); ok && utf8.ValidString(s) {
			return s, true
		}
	case ColumnTypeDate:
		if d, ok := v.(time.Time); ok {
			return truncateDate(d), true
		}
	}
	return nil, false
}

// CoerceMatch is Coerce for comparison values. It also lets a whole-valued
// float stand for an INT, so 2.0 finds a stored 2.
func (t ColumnType) CoerceMatch(v interface{}) (interface{}, bool) {
	if cv, ok := t.Coerce(v); ok {
		return cv, true
	}
	if t != ColumnTypeInt {
		return nil, false
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return nil, false
	}
	if !finite(f) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, false
	}
	return int64(f), true
}

// Encode converts a canonical value into its stored JSON form
func (t ColumnType) Encode(v interface{}) interface{} {
	if t == ColumnTypeDate {
		if d, ok := v.(time.Time); ok {
			return d.Format(DateLayout)
		}
	}
	return v
}

// Decode is the inverse of Encode for values read back from a table document
func (t ColumnType) Decode(stored interface{}) (interface{}, error) {
	switch t {
	case ColumnTypeInt:
		if n, ok := stored.(json.Number); ok {
			return n.Int64()
		}
	case ColumnTypeFloat:
		if n, ok := stored.(json.Number); ok {
			return n.Float64()
		}
	case ColumnTypeText:
		if s, ok := stored.(string); ok {
			return s, nil
		}
	case ColumnTypeDate:
		if s, ok := stored.(string); ok {
			d, err := time.Parse(DateLayout, s)
			if err != nil {
				return nil, fmt.Errorf("invalid date %q: %w", s, err)
			}
			return d, nil
		}
	}
	if v, ok := t.Coerce(stored); ok {
		return v, nil
	}
	return nil, fmt.Errorf("stored value %v (%T) is not a valid %s", stored, stored, t)
}

// ParseLiteral reads a textual literal (as typed at a prompt) as a value of this type
func (t ColumnType) ParseLiteral(text string) (interface{}, error) {
	switch t {
	case ColumnTypeInt:
		return strconv.ParseInt(text, 10, 64)
	case ColumnTypeFloat:
		return strconv.ParseFloat(text, 64)
	case ColumnTypeText:
		return text, nil
	case ColumnTypeDate:
		return time.Parse(DateLayout, text)
	}
	return nil, fmt.Errorf("unknown column type %q", t)
}

// Compare orders two canonical values of this column type
func (t ColumnType) Compare(a, b interface{}) int {
	switch t {
	case ColumnTypeInt:
		return cmp.Compare(a.(int64), b.(int64))
	case ColumnTypeFloat:
		return cmp.Compare(a.(float64), b.(float64))
	case ColumnTypeText:
		return strings.Compare(a.(string), b.(string))
	case ColumnTypeDate:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return 0
}

// Equal compares two canonical values of this column type
func (t ColumnType) Equal(a, b interface{}) bool {
	return t.Compare(a, b) == 0
}

func toInt64(v interface{}) (interface{}, bool) {
	switch n := v.(type) {
	case int:
		return widen(n)
	case int8:
		return widen(n)
	case int16:
		return widen(n)
	case int32:
		return widen(n)
	case int64:
		return n, true
	case uint:
		return widen(n)
	case uint8:
		return widen(n)
	case uint16:
		return widen(n)
	case uint32:
		return widen(n)
	case uint64:
		return widen(n)
	}
	return nil, false
}

func widen[T constraints.Integer](x T) (interface{}, bool) {
	if x > 0 && uint64(x) > math.MaxInt64 {
		return nil, false
	}
	return int64(x), true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func truncateDate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CoerceFunc converts an arbitrary value into a property's canonical
// representation. Built-in functions are total: every input maps to a value,
// unparseable input maps to nil.
type CoerceFunc func(value any) any

// Coercion is a named coercion function. The name is what model files and
// schema imports refer to; the zero value behaves like Any.
type Coercion struct {
	Name string
	Fn   CoerceFunc
}

func (c Coercion) IsZero() bool { return c.Name == "" && c.Fn == nil }

func (c Coercion) Apply(value any) any {
	if c.Fn == nil {
		return value
	}
	return c.Fn(value)
}

// Custom wraps a caller-supplied coercion function so it can participate in
// declarations alongside the built-ins.
func Custom(name string, fn CoerceFunc) Coercion {
	return Coercion{Name: name, Fn: fn}
}

var (
	Any     = Coercion{Name: "any", Fn: coerceAny}
	Integer = Coercion{Name: "integer", Fn: coerceInteger}
	Float   = Coercion{Name: "float", Fn: coerceFloat}
	String  = Coercion{Name: "string", Fn: coerceString}
	Boolean = Coercion{Name: "boolean", Fn: coerceBoolean}
	Date    = Coercion{Name: "date", Fn: coerceDate}
)

// TypeTable returns the built-in coercions keyed by name.
func TypeTable() map[string]Coercion {
	return map[string]Coercion{
		Any.Name:     Any,
		Integer.Name: Integer,
		Float.Name:   Float,
		String.Name:  String,
		Boolean.Name: Boolean,
		Date.Name:    Date,
	}
}

func ParseCoercion(value string) (Coercion, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	if c, ok := TypeTable()[name]; ok {
		return c, nil
	}
	return Coercion{}, fmt.Errorf("invalid coercion type %q", value)
}

func coerceAny(value any) any { return value }

func coerceInteger(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int64:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return coerceInteger(float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return int64(math.Trunc(v))
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return v.UnixMilli()
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(math.Trunc(f))
		}
		return nil
	default:
		return nil
	}
}

func coerceFloat(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case float32:
		return coerceFloat(float64(v))
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return float64(1)
		}
		return float64(0)
	case time.Time:
		return float64(v.UnixMilli())
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
		return nil
	default:
		return nil
	}
}

func coerceString(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return coerceString(float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceBoolean(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return coerceBoolean(float64(v))
	case float64:
		return !math.IsNaN(v) && v != 0
	case string:
		return len(v) > 0
	default:
		return true
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceDate(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return v
	case int:
		return time.UnixMilli(int64(v)).UTC()
	case int64:
		return time.UnixMilli(v).UTC()
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return time.UnixMilli(int64(v)).UTC()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t
			}
		}
		return nil
	default:
		return nil
	}
}

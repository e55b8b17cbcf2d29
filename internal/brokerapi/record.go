package brokerapi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const backendTimestampLayout = "2006-01-02 15:04:05"

// Record is one collection item as the backend returned it. Field shapes are
// owned by the backend, so values are read through the typed accessors below.
type Record map[string]any

// ID returns the render key of the record. Backends in the wild use "id" or
// "_id"; both are accepted.
func (r Record) ID() string {
	if id := r.String("id"); id != "" {
		return id
	}
	return r.String("_id")
}

// Lookup walks a dot-separated path through nested objects.
func (r Record) Lookup(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	var current any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := asObject(current)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case Record:
		return obj, true
	default:
		return nil, false
	}
}

// String formats the value at path for display and matching. Missing and null
// values are empty.
func (r Record) String(path string) string {
	value, ok := r.Lookup(path)
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return formatNumber(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

// Float reads a numeric value; numeric strings such as "1,250,000.50" are
// accepted.
func (r Record) Float(path string) (float64, bool) {
	value, ok := r.Lookup(path)
	if !ok || value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool reads a boolean; "true"/"1" strings count as true.
func (r Record) Bool(path string) bool {
	value, ok := r.Lookup(path)
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Time parses the timestamp at path, returning the zero time when absent or
// unparseable.
func (r Record) Time(path string) time.Time {
	return ParseTime(r.String(path))
}

// Clone returns a deep copy so views can be handed out without sharing maps.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Record:
		return Record(cloneValue(map[string]any(val)).(map[string]any))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// CloneRecords deep-copies a collection.
func CloneRecords(items []Record) []Record {
	if len(items) == 0 {
		return nil
	}
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// ParseTime accepts the timestamp layouts the backend emits.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

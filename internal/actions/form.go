package actions

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FieldKind selects how a form value is validated and encoded.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldDate
	FieldChoice
	FieldFile // value is a local path; uploaded as multipart
)

// DateLayout is the input format for date fields.
const DateLayout = "2006-01-02"

// FormField describes one input of a create/edit form.
type FormField struct {
	Name     string // payload key
	Label    string
	Kind     FieldKind
	Required bool
	Min, Max *float64 // number fields only
	Options  []string // choice fields only
	Source   string   // record path used to prefill edits; defaults to Name
}

func (f FormField) source() string {
	if f.Source != "" {
		return f.Source
	}
	return f.Name
}

func (f FormField) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Bound is a helper for Min and Max.
func Bound(v float64) *float64 {
	return &v
}

// Validate checks values against fields and returns messages keyed by field
// name. An empty map means the form may be submitted.
func Validate(fields []FormField, values map[string]string) map[string]string {
	errs := make(map[string]string)
	for _, f := range fields {
		value := strings.TrimSpace(values[f.Name])
		if value == "" {
			if f.Required {
				errs[f.Name] = f.label() + " is required"
			}
			continue
		}
		if msg := checkValue(f, value); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

func checkValue(f FormField, value string) string {
	switch f.Kind {
	case FieldNumber:
		n, err := ParseNumber(value)
		if err != nil {
			return f.label() + " must be a number"
		}
		if f.Min != nil && n < *f.Min {
			return fmt.Sprintf("%s must be at least %s", f.label(), humanize.Ftoa(*f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Sprintf("%s must be at most %s", f.label(), humanize.Ftoa(*f.Max))
		}
	case FieldDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return f.label() + " must be a date (YYYY-MM-DD)"
		}
	case FieldChoice:
		if _, ok := matchOption(f.Options, value); !ok {
			return fmt.Sprintf("%s must be one of: %s", f.label(), strings.Join(f.Options, ", "))
		}
	}
	return ""
}

func matchOption(options []string, value string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return opt, true
		}
	}
	return "", false
}

// ParseNumber accepts plain and comma-grouped numbers such as "1,250,000.50".
// NaN and infinities are rejected.
func ParseNumber(value string) (float64, error) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a finite number", value)
	}
	return n, nil
}

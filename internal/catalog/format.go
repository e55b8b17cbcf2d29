package catalog

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/session"
)

// DisplayDate is the date format used in tables and search.
const DisplayDate = "Jan 2, 2006"

// Peso formats an amount as Philippine pesos with two decimals.
func Peso(v float64) string {
	if v < 0 {
		return "-₱" + humanize.FormatFloat("#,###.##", -v)
	}
	return "₱" + humanize.FormatFloat("#,###.##", v)
}

func money(path string) func(brokerapi.Record) string {
	return func(r brokerapi.Record) string {
		v, ok := r.Float(path)
		if !ok {
			return r.String(path)
		}
		return Peso(v)
	}
}

func date(path string) func(brokerapi.Record) string {
	return func(r brokerapi.Record) string {
		t := r.Time(path)
		if t.IsZero() {
			return r.String(path)
		}
		return t.Format(DisplayDate)
	}
}

func timeAt(path string) func(brokerapi.Record) time.Time {
	return func(r brokerapi.Record) time.Time { return r.Time(path) }
}

func field(path string) func(brokerapi.Record) string {
	return func(r brokerapi.Record) string { return r.String(path) }
}

// firstOf returns the first non-empty value among paths.
func firstOf(paths ...string) func(brokerapi.Record) string {
	return func(r brokerapi.Record) string {
		for _, p := range paths {
			if v := r.String(p); v != "" {
				return v
			}
		}
		return ""
	}
}

// FullName joins firstName, middleName, and lastName, falling back to name.
func FullName(r brokerapi.Record) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{"firstName", "middleName", "lastName"} {
		if v := r.String(p); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return r.String("name")
	}
	return strings.Join(parts, " ")
}

// AffiliateRole renders the numeric role stored on agent and broker records.
func AffiliateRole(r brokerapi.Record) string {
	raw := r.String("role")
	if raw == "" {
		return ""
	}
	role, err := session.ParseRole(raw)
	if err != nil {
		return raw
	}
	name := role.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

func licenseStatus(r brokerapi.Record) string {
	if r.String("prcLicenseNumber") != "" || r.Bool("licensed") {
		return "Licensed"
	}
	return "Unlicensed"
}

// search builds the derived search fields from extractors.
func search(extractors ...func(brokerapi.Record) string) func(brokerapi.Record) []string {
	return func(r brokerapi.Record) []string {
		out := make([]string, 0, len(extractors))
		for _, fn := range extractors {
			if v := fn(r); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
}

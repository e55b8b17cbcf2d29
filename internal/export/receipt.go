package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
)

const receiptWidth = 44

type receiptLine struct {
	label string
	value string
}

// Receipt renders a sales encoding as a plain-text acknowledgement receipt.
// Only values the backend supplied are printed; nothing is computed.
func Receipt(rec brokerapi.Record, now time.Time) string {
	lines := []receiptLine{
		{"Receipt no.", rec.ID()},
		{"Client", firstString(rec, "clientName", "buyerName")},
		{"Property", rec.String("propertyName")},
		{"Developer", firstString(rec, "developer.name", "developer")},
		{"Agent", firstString(rec, "agentName", "agent.name")},
		{"Reserved", receiptDate(rec, "reservationDate")},
		{"Financing", rec.String("financing")},
		{"Contract price", receiptMoney(rec, "totalPrice")},
		{"Down payment", receiptMoney(rec, "downPayment")},
		{"Reservation fee", receiptMoney(rec, "reservationFee")},
		{"Commission", receiptMoney(rec, "commission")},
		{"Status", rec.String("status")},
	}

	var b strings.Builder
	rule := strings.Repeat("=", receiptWidth)
	b.WriteString(rule + "\n")
	b.WriteString(center("SALES ENCODING RECEIPT") + "\n")
	b.WriteString(rule + "\n")
	for _, line := range lines {
		if line.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%-16s %s\n", line.label+":", line.value)
	}
	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")
	if created := rec.Time("createdAt"); !created.IsZero() {
		fmt.Fprintf(&b, "Encoded %s (%s)\n", created.Format(catalog.DisplayDate), humanize.RelTime(created, now, "ago", "from now"))
	}
	fmt.Fprintf(&b, "Printed %s\n", now.Format("Jan 2, 2006 3:04 PM"))
	return b.String()
}

func firstString(rec brokerapi.Record, paths ...string) string {
	for _, p := range paths {
		if v := rec.String(p); v != "" {
			return v
		}
	}
	return ""
}

func receiptMoney(rec brokerapi.Record, path string) string {
	if v, ok := rec.Float(path); ok {
		return catalog.Peso(v)
	}
	return rec.String(path)
}

func receiptDate(rec brokerapi.Record, path string) string {
	if t := rec.Time(path); !t.IsZero() {
		return t.Format(catalog.DisplayDate)
	}
	return rec.String(path)
}

func center(s string) string {
	pad := (receiptWidth - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

package tableview

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID       int
	Name     string
	Category string
	Sold     time.Time
}

func rowFilter() Filter[row] {
	return Filter[row]{
		Search: func(r row) []string {
			return []string{r.Name, r.Category, r.Sold.Format("Jan 02, 2006")}
		},
		Predicates: []Predicate[row]{
			Equals("category", "Category", func(r row) string { return r.Category }, "Sold", "Available"),
			DateRange("date", "Date", func(r row) time.Time { return r.Sold }),
		},
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleRows() []row {
	return []row{
		{ID: 1, Name: "Aldin Tagolimot", Category: "Sold", Sold: day("2024-01-15")},
		{ID: 2, Name: "Venus Reyes", Category: "Available", Sold: day("2024-02-10")},
		{ID: 3, Name: "Ricky Roa", Category: "Sold", Sold: day("2024-03-05")},
	}
}

func names(rows []row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestFilter_EmptyQueryKeepsCollection(t *testing.T) {
	raw := sampleRows()
	got := rowFilter().Apply(raw, "", nil)
	if diff := cmp.Diff(raw, got); diff != "" {
		t.Fatalf("Apply with empty query mismatch (-want +got):\n%s", diff)
	}

	got = rowFilter().Apply(raw, "   ", map[string]string{"category": "all", "date": ""})
	if diff := cmp.Diff(raw, got); diff != "" {
		t.Fatalf("Apply with disabled filters mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	got := rowFilter().Apply(sampleRows(), "ald", nil)
	assert.Equal(t, []string{"Aldin Tagolimot"}, names(got))

	got = rowFilter().Apply(sampleRows(), "  REYES ", nil)
	assert.Equal(t, []string{"Venus Reyes"}, names(got))

	got = rowFilter().Apply(sampleRows(), "mar 05", nil)
	assert.Equal(t, []string{"Ricky Roa"}, names(got))
}

func TestFilter_SubstringMonotonicity(t *testing.T) {
	raw := sampleRows()
	f := rowFilter()
	pairs := [][2]string{{"a", "al"}, {"r", "ro"}, {"", "sold"}, {"o", "roa"}}
	for _, p := range pairs {
		wide := f.Apply(raw, p[0], nil)
		narrow := f.Apply(raw, p[1], nil)
		ids := map[int]bool{}
		for _, r := range wide {
			ids[r.ID] = true
		}
		for _, r := range narrow {
			assert.Truef(t, ids[r.ID], "%q result %d missing from %q result", p[1], r.ID, p[0])
		}
	}
}

func TestFilter_StructuredAndCombination(t *testing.T) {
	raw := sampleRows()
	f := rowFilter()
	structured := map[string]string{"category": "sold"}

	both := f.Apply(raw, "r", structured)
	queryOnly := f.Apply(raw, "r", nil)
	catOnly := f.Apply(raw, "", structured)

	require.NotEmpty(t, both)
	for _, r := range both {
		assert.Contains(t, queryOnly, r)
		assert.Contains(t, catOnly, r)
	}
	assert.Equal(t, []string{"Aldin Tagolimot", "Ricky Roa"}, names(catOnly))
}

func TestFilter_PreservesOrderAndDoesNotMutate(t *testing.T) {
	raw := sampleRows()
	before := append([]row(nil), raw...)
	got := rowFilter().Apply(raw, "o", nil)
	assert.Equal(t, []int{1, 3}, []int{got[0].ID, got[1].ID})
	assert.Equal(t, before, raw)

	got[0].Name = "changed"
	assert.Equal(t, "Aldin Tagolimot", raw[0].Name)
}

func TestFilter_Idempotent(t *testing.T) {
	raw := sampleRows()
	structured := map[string]string{"date": "2024-01-01..2024-02-28"}
	first := rowFilter().Apply(raw, "e", structured)
	second := rowFilter().Apply(raw, "e", structured)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated Apply differs (-first +second):\n%s", diff)
	}
}

func TestFilter_UnknownKeysIgnored(t *testing.T) {
	got := rowFilter().Apply(sampleRows(), "", map[string]string{"status": "approved"})
	assert.Len(t, got, 3)
}

func TestDateRange(t *testing.T) {
	f := rowFilter()
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"both bounds inclusive", "2024-01-15..2024-02-10", []string{"Aldin Tagolimot", "Venus Reyes"}},
		{"open start", "..2024-01-31", []string{"Aldin Tagolimot"}},
		{"open end", "2024-02-01..", []string{"Venus Reyes", "Ricky Roa"}},
		{"single day", "2024-03-05", []string{"Ricky Roa"}},
		{"malformed", "last week", []string{}},
		{"reversed", "2024-03-01..2024-01-01", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Apply(sampleRows(), "", map[string]string{"date": tt.value})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestDateRange_ZeroDateNeverMatches(t *testing.T) {
	raw := []row{{ID: 9, Name: "Undated"}}
	got := rowFilter().Apply(raw, "", map[string]string{"date": "2024-01-01.."})
	assert.Empty(t, got)
}

func TestTake_Bounds(t *testing.T) {
	view := make([]int, 57)
	for i := range view {
		view[i] = i
	}
	for _, n := range []int{0, 1, 10, 56, 57, 58, 1000} {
		got := Take(view, PageSize(n))
		assert.Len(t, got, min(n, len(view)), "n=%d", n)
	}
	assert.Equal(t, view, Take(view, All))
	assert.Empty(t, Take(view, PageSize(-7)))
	assert.Empty(t, Take([]int(nil), PageSize(10)))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Showing 0 to 0 of 0 entries", Summary(0, 0))
	assert.Equal(t, "Showing 1 to 5 of 12 entries", Summary(5, 12))
	assert.Equal(t, "Showing 0 to 0 of 4 entries", Summary(0, 4))
	assert.Equal(t, "Showing 1 to 3 of 3 entries", Summary(3, 1))
}

func TestApply_Scenarios(t *testing.T) {
	raw := make([]row, 57)
	for i := range raw {
		raw[i] = row{ID: i + 1, Name: fmt.Sprintf("Agent %02d", i+1), Category: "Available"}
	}

	all := Apply(raw, rowFilter(), NewState(All))
	assert.Len(t, all.Displayed, 57)
	assert.Equal(t, "Showing 1 to 57 of 57 entries", all.Summary)

	ten := Apply(raw, rowFilter(), NewState(10))
	assert.Len(t, ten.Displayed, 10)
	assert.Len(t, ten.Filtered, 57)
	assert.Equal(t, "Showing 1 to 10 of 57 entries", ten.Summary)
	if diff := cmp.Diff(ten.Filtered[:10], ten.Displayed); diff != "" {
		t.Fatalf("displayed is not a prefix of filtered (-want +got):\n%s", diff)
	}

	sold := Apply(raw, rowFilter(), NewState(10).WithStructured("category", "Sold"))
	assert.Empty(t, sold.Displayed)
	assert.Equal(t, "Showing 0 to 0 of 0 entries", sold.Summary)
}

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		in      string
		want    PageSize
		wantErr bool
	}{
		{"all", All, false},
		{" ALL ", All, false},
		{"25", 25, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePageSize(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPageSize_CycleAndString(t *testing.T) {
	assert.Equal(t, PageSize(25), PageSize(10).Cycle(nil))
	assert.Equal(t, PageSize(10), All.Cycle(nil))
	assert.Equal(t, PageSize(10), PageSize(7).Cycle(nil))
	assert.Equal(t, "all", All.String())
	assert.Equal(t, "50", PageSize(50).String())
}

func TestState_WithStructured(t *testing.T) {
	base := NewState(10)
	next := base.WithStructured("category", " Sold ")
	assert.Empty(t, base.Structured)
	assert.Equal(t, []string{"category=Sold"}, next.ActiveFilters())

	cleared := next.WithStructured("category", "ALL")
	assert.Empty(t, cleared.ActiveFilters())
	assert.Equal(t, "Sold", next.Structured["category"])
}

package acquire

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// finisherRow renders one listing row the way the results site does.
func finisherRow(place, name, nat, age, finishTime string) string {
	return fmt.Sprintf(`<li class="list-active list-group-item row">
		<div class="type-place place-primary">%s</div>
		<h4 class="type-fullname">%s</h4>
		<span class="type-nat">%s</span>
		<span class="type-age_class">%s</span>
		<div class="type-time">%s</div>
	</li>`, place, name, nat, age, finishTime)
}

// listingHTML wraps rows in a listing page, optionally with the result
// counter element.
func listingHTML(counter string, rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	if counter != "" {
		b.WriteString(`<span class="str_num">` + counter + `</span>`)
	}
	b.WriteString(`<ul class="list-group">`)
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

func TestParseListing(t *testing.T) {
	page, err := parseListing(strings.NewReader(listingHTML("1835 Results",
		finisherRow("1.", "Hunter McIntyre", "USA", "30-34", "Total 1:05:31"),
		finisherRow("2.", "Alexander Roncevic", "AUT", "25-29", "Run Total 1:07:02"),
		finisherRow("3.", "Tobias Lautwein", "GER", "30-34", "1:08:15"),
	)))
	require.NoError(t, err)
	require.Equal(t, 1835, page.total)
	require.Len(t, page.rows, 3)

	first := page.rows[0]
	require.Equal(t, 1, first.Rank)
	require.Equal(t, "Hunter McIntyre", first.Name)
	require.Equal(t, "USA", first.Nationality)
	require.Equal(t, "30-34", first.AgeGroup)
	require.Equal(t, "1:05:31", first.FinishTime)
	require.InDelta(t, 3931.0, first.FinishSeconds, 1e-9)

	require.Equal(t, "1:07:02", page.rows[1].FinishTime)
	require.InDelta(t, 4022.0, page.rows[1].FinishSeconds, 1e-9)
	require.InDelta(t, 4095.0, page.rows[2].FinishSeconds, 1e-9)
}

func TestParseListingSkipsBadRows(t *testing.T) {
	page, err := parseListing(strings.NewReader(listingHTML("",
		finisherRow("1.", "A. Runner", "NED", "30-34", "Total 1:10:00"),
		finisherRow("2.", "", "GBR", "30-34", "Total 1:11:00"),
		finisherRow("3.", "B. Walker", "GBR", "30-34", "DNF"),
		finisherRow("DSQ", "C. Pacer", "GER", "30-34", "Total 1:12:00"),
	)))
	require.NoError(t, err)
	require.Len(t, page.rows, 2)

	// Nameless and time-less rows are dropped; disqualified rows keep
	// their time but carry rank 0.
	require.Equal(t, "A. Runner", page.rows[0].Name)
	require.Equal(t, "C. Pacer", page.rows[1].Name)
	require.Equal(t, 0, page.rows[1].Rank)
}

func TestParseListingTotalFromText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "entries label",
			body: `<html><body><div>Entries: 412</div></body></html>`,
			want: 412,
		},
		{
			name: "results range",
			body: `<html><body><div>Results 1-50 of 978</div></body></html>`,
			want: 978,
		},
		{
			name: "counter element wins",
			body: `<html><body><span class="str_num">120 Results</span><div>Entries: 999</div></body></html>`,
			want: 120,
		},
		{
			name: "absent",
			body: `<html><body></body></html>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := parseListing(strings.NewReader(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want, page.total)
		})
	}
}

func TestParseListingEmptyPage(t *testing.T) {
	page, err := parseListing(strings.NewReader(listingHTML("")))
	require.NoError(t, err)
	require.Empty(t, page.rows)
	require.Zero(t, page.total)
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1.", 1},
		{" 412. ", 412},
		{"73", 73},
		{"DSQ", 0},
		{"–", 0},
		{"", 0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, parseRank(tt.in), "parseRank(%q)", tt.in)
	}
}

func TestCleanTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Total 1:05:31", "1:05:31"},
		{"Run Total 58:46", "58:46"},
		{"  1:05:31  ", "1:05:31"},
		{"1:05:31", "1:05:31"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, cleanTime(tt.in), "cleanTime(%q)", tt.in)
	}
}

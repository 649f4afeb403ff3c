package acquire

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/coursecorrect/internal/domain/timeparse"
)

// Patterns for the total entry count. The listing shows it either as a
// dedicated counter element or inline in the page text.
var (
	reDigits       = regexp.MustCompile(`(\d+)`)
	reEntries      = regexp.MustCompile(`Entries:\s*(\d+)`)
	reResultsRange = regexp.MustCompile(`Results \d+-\d+ of (\d+)`)
)

// listingRow is one finisher parsed from a results page, before venue
// and gender labeling.
type listingRow struct {
	Rank          int // 0 when unranked (DSQ, missing place)
	Name          string
	Nationality   string
	AgeGroup      string
	FinishTime    string
	FinishSeconds float64
}

// listingPage is everything extracted from one results page.
type listingPage struct {
	rows  []listingRow
	total int // total entries for the active filter, 0 when absent
}

// parseListing extracts finisher rows and the total entry count from a
// results page. Rows without a name or a parsable finish time are
// dropped; a page full of such rows is simply empty, not an error.
func parseListing(r io.Reader) (listingPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return listingPage{}, fmt.Errorf("parse listing: %w", err)
	}

	var page listingPage
	doc.Find("li.list-active").Each(func(_ int, row *goquery.Selection) {
		name := strings.TrimSpace(row.Find("h4.type-fullname").First().Text())
		if name == "" {
			return
		}

		finishTime := cleanTime(row.Find("div.type-time").First().Text())
		seconds, err := timeparse.ParseToSeconds(finishTime)
		if err != nil || !timeparse.ValidSeconds(seconds) {
			return
		}

		page.rows = append(page.rows, listingRow{
			Rank:          parseRank(row.Find("div.type-place").First().Text()),
			Name:          name,
			Nationality:   strings.TrimSpace(row.Find("span.type-nat").First().Text()),
			AgeGroup:      strings.TrimSpace(row.Find("span.type-age_class").First().Text()),
			FinishTime:    finishTime,
			FinishSeconds: seconds,
		})
	})

	page.total = parseTotal(doc)
	return page, nil
}

// parseRank turns a place label like "12." into its number. DSQ and
// placeholder labels come back as 0.
func parseRank(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	rank, err := strconv.Atoi(s)
	if err != nil || rank < 0 {
		return 0
	}
	return rank
}

// cleanTime strips the field label the site prepends to the finish time.
func cleanTime(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Run Total")
	s = strings.TrimPrefix(s, "Total")
	return strings.TrimSpace(s)
}

// parseTotal finds the total entry count for the active filter, trying
// the counter element first and the inline text variants after.
func parseTotal(doc *goquery.Document) int {
	if counter := strings.TrimSpace(doc.Find("span.str_num").First().Text()); counter != "" {
		if m := reDigits.FindStringSubmatch(counter); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}

	text := doc.Text()
	for _, re := range []*regexp.Regexp{reEntries, reResultsRange} {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}

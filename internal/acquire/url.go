package acquire

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/coursecorrect/internal/domain/model"
)

// listingQuery identifies one page of one event listing.
type listingQuery struct {
	eventID string
	group   string
	gender  model.Gender
	page    int
	perPage int
}

// listingURL builds the results page URL. The parameter set mirrors the
// listing site's own pagination links: a flat list ranked by net finish
// time, filtered to one gender, with age class and nation left open.
func listingURL(baseURL string, q listingQuery) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.page))
	params.Set("event", q.eventID)
	params.Set("num_results", strconv.Itoa(q.perPage))
	params.Set("pid", "list")
	params.Set("ranking", "time_finish_netto")
	params.Set("search[sex]", string(q.gender))
	params.Set("search[age_class]", "%")
	params.Set("search[nation]", "%")
	if q.group != "" {
		params.Set("event_main_group", q.group)
	}

	base := strings.TrimRight(baseURL, "/")
	return base + "/?" + params.Encode()
}

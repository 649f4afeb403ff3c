package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/pkg/logger"
)

// Fetcher defaults. One request per second keeps the scrape well under
// the listing site's patience; the page cap matches the deepest field
// observed on any venue.
const (
	defaultPerPage     = 50
	defaultTopFraction = 0.8
	defaultMaxPages    = 150
	defaultMaxRetries  = 3
	defaultConcurrency = 2
	defaultHTTPTimeout = 30 * time.Second
)

// Fetcher walks event listings and returns normalized records.
type Fetcher struct {
	baseURL     string
	client      *http.Client
	limiter     *rate.Limiter
	aliases     Aliases
	genders     []model.Gender
	perPage     int
	topFraction float64
	topN        int
	maxPages    int
	maxRetries  int
	concurrency int
	logger      logger.Logger
}

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithRateLimit sets the sustained request rate and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(f *Fetcher) {
		if perSecond > 0 && burst > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithAliases sets the venue alias table.
func WithAliases(aliases Aliases) Option {
	return func(f *Fetcher) {
		if aliases != nil {
			f.aliases = aliases
		}
	}
}

// WithGenders restricts the scrape to the given divisions.
func WithGenders(genders ...model.Gender) Option {
	return func(f *Fetcher) {
		if len(genders) > 0 {
			f.genders = genders
		}
	}
}

// WithPerPage sets the page size requested from the listing.
func WithPerPage(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.perPage = n
		}
	}
}

// WithTopFraction keeps only the leading share of each field, by rank.
// Zero disables the cutoff.
func WithTopFraction(fraction float64) Option {
	return func(f *Fetcher) {
		if fraction >= 0 && fraction <= 1 {
			f.topFraction = fraction
		}
	}
}

// WithTopN caps the records kept per event and gender. Zero means no cap.
func WithTopN(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.topN = n
		}
	}
}

// WithMaxPages bounds pagination per listing and gender.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithConcurrency sets how many events are scraped in parallel.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher builds a Fetcher for the given listing base URL.
func NewFetcher(baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: defaultHTTPTimeout},
		limiter:     rate.NewLimiter(rate.Limit(1), 1),
		aliases:     DefaultAliases(),
		genders:     []model.Gender{model.GenderMen, model.GenderWomen},
		perPage:     defaultPerPage,
		topFraction: defaultTopFraction,
		maxPages:    defaultMaxPages,
		maxRetries:  defaultMaxRetries,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get().Named("acquire")
	}
	return f
}

// FetchAll scrapes every event with bounded concurrency. Records from
// all events are returned together; events that yielded nothing at all
// are reported through a joined error so partial results stay usable.
func (f *Fetcher) FetchAll(ctx context.Context, events []Event) ([]Record, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	var (
		mu      sync.Mutex
		records []Record
		failed  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, ev := range events {
		ev := ev
		g.Go(func() error {
			evRecords, err := f.FetchEvent(gctx, ev)
			mu.Lock()
			defer mu.Unlock()
			records = append(records, evRecords...)
			if err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", ev.Name, err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return records, err
	}
	return records, errors.Join(failed...)
}

// FetchEvent scrapes one event across its listing IDs and divisions.
// Multi-day splits are consolidated under the event name; day-local
// ranks make rank order meaningless across splits, so the per-gender
// top-N cap keeps the fastest finish times instead. A division that
// fails mid-way keeps its partial rows; the event errors only when
// nothing could be fetched.
func (f *Fetcher) FetchEvent(ctx context.Context, ev Event) ([]Record, error) {
	if err := ev.validate(); err != nil {
		return nil, err
	}

	var (
		records []Record
		errs    []error
	)
	for _, gender := range f.genders {
		var division []Record
		for _, listingID := range ev.listingIDs() {
			rows, err := f.fetchListing(ctx, ev, listingID, gender)
			division = append(division, rows...)
			if err != nil {
				if ctx.Err() != nil {
					return records, err
				}
				errs = append(errs, err)
				f.logger.Warn(ctx, "division scrape incomplete",
					logger.String("event", ev.Name),
					logger.String("gender", string(gender)),
					logger.Err(err),
				)
			}
		}
		if f.topN > 0 && len(division) > f.topN {
			sort.Slice(division, func(i, j int) bool {
				if division[i].FinishSeconds != division[j].FinishSeconds {
					return division[i].FinishSeconds < division[j].FinishSeconds
				}
				return division[i].Name < division[j].Name
			})
			division = division[:f.topN]
		}
		records = append(records, division...)
	}

	if len(records) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	f.logger.Info(ctx, "event scraped",
		logger.String("event", ev.Name),
		logger.Int("records", len(records)),
	)
	return records, nil
}

// fetchListing paginates one listing ID for one gender.
func (f *Fetcher) fetchListing(ctx context.Context, ev Event, listingID string, gender model.Gender) ([]Record, error) {
	venue := f.aliases.Canonical(ev.Name)

	var (
		records  []Record
		cutoff   int
		failures int
	)

	for page := 1; page <= f.maxPages; {
		url := listingURL(f.baseURL, listingQuery{
			eventID: listingID,
			group:   ev.Group,
			gender:  gender,
			page:    page,
			perPage: f.perPage,
		})

		parsed, err := f.fetchPage(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			failures++
			if failures >= f.maxRetries {
				return records, fmt.Errorf("page %d of %s %s: %w", page, listingID, gender, err)
			}
			continue
		}
		failures = 0

		if len(parsed.rows) == 0 {
			break
		}

		// The first page carries the field size; the rank cutoff keeps
		// the leading share and drops stragglers whose times say more
		// about attrition than about the venue.
		if page == 1 && f.topFraction > 0 && parsed.total > 0 {
			cutoff = int(float64(parsed.total) * f.topFraction)
			f.logger.Debug(ctx, "field size discovered",
				logger.String("event", ev.Name),
				logger.String("gender", string(gender)),
				logger.Int("total", parsed.total),
				logger.Int("cutoff", cutoff),
			)
		}

		pastCutoff := false
		for _, row := range parsed.rows {
			if cutoff > 0 {
				if row.Rank == 0 {
					continue
				}
				if row.Rank > cutoff {
					pastCutoff = true
					break
				}
			}
			records = append(records, Record{
				Venue:         venue,
				Gender:        gender,
				Rank:          row.Rank,
				Name:          row.Name,
				Nationality:   row.Nationality,
				AgeGroup:      row.AgeGroup,
				FinishTime:    row.FinishTime,
				FinishSeconds: row.FinishSeconds,
			})
			if f.topN > 0 && len(records) >= f.topN {
				return records, nil
			}
		}
		if pastCutoff {
			break
		}
		page++
	}

	return records, nil
}

// fetchPage retrieves and parses one listing page. A 404 reads as an
// empty page so pagination stops cleanly past the last one.
func (f *Fetcher) fetchPage(ctx context.Context, url string) (listingPage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return listingPage{}, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return listingPage{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return listingPage{}, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return listingPage{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return listingPage{}, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	return parseListing(resp.Body)
}

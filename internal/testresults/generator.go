package testresults

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/coursecorrect/pkg/logger"
)

// Division pacing constants (seconds). Centers sit well inside the
// engine's plausibility bounds even after the largest planted offset.
const (
	menCenterSeconds   = 4800
	womenCenterSeconds = 5400
)

// Constants for pacing tier ranges, as offsets from the division center.
const (
	eliteMin      = -600
	eliteRange    = 150
	frontMin      = -450
	frontRange    = 210
	chaserMin     = -240
	chaserRange   = 180
	midMin        = -60
	midRange      = 150
	steadyMin     = 90
	steadyRange   = 150
	backMin       = 240
	backRange     = 180
	stragglerMin  = 420
	stragglerRang = 150
	fullMin       = -600
	fullRange     = 1200
)

// Constants for pacing tier cases.
const (
	caseElite       = 0
	caseFrontPack   = 1
	caseChasers     = 2
	caseMidPack     = 3
	caseMidPackTwo  = 4
	caseSteady      = 5
	caseBackHalf    = 6
	caseStragglers  = 7
	pacingTierCount = 8
)

// venueOffset plants a known correction for one synthetic venue,
// expressed in seconds against the baseline venue. Positive runs slower.
type venueOffset struct {
	Venue  string
	Offset int
}

// venuePlan returns the synthetic venues, ordered fastest to slowest.
// The middle venue carries offset zero and must come out as the
// baseline: the selector picks the median venue of the ordering, and
// every venue here receives an identical field shifted by its offset.
func venuePlan() []venueOffset {
	return []venueOffset{
		{Venue: "Rotterdam", Offset: -300},
		{Venue: "Valencia", Offset: -120},
		{Venue: "Maastricht", Offset: 0},
		{Venue: "Hamburg", Offset: 150},
		{Venue: "Katowice", Offset: 420},
	}
}

// genders lists the divisions every venue is populated with.
func genders() []string {
	return []string{"M", "W"}
}

// groundTruth captures what the engine is expected to publish for the
// generated dataset.
type groundTruth struct {
	Plan        []venueOffset
	Baseline    string
	PerDivision int
	// Medians holds the baseline division median per gender, needed to
	// predict the published correction percentages.
	Medians map[string]float64
}

// getRandomInt returns a random int in [0, n) using crypto/rand.
func getRandomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateResults creates synthetic finish times for every venue and
// division. Each division's field is generated once and reused for all
// venues shifted by the planted offset, so venue medians differ from the
// baseline median by exactly that offset and every check downstream can
// demand exact equality.
func generateResults(ctx context.Context, config *Config, stats *Stats) ([]Result, *groundTruth, error) {
	plan := venuePlan()
	divisions := len(plan) * len(genders())

	perDivision := config.NumResults / divisions
	if perDivision < 1 {
		perDivision = 1
	}

	logger.Get().Info(ctx, "generating results with planted offsets",
		logger.Int("requested", config.NumResults),
		logger.Int("venues", len(plan)),
		logger.Int("perDivision", perDivision))

	truth := &groundTruth{
		Plan:        plan,
		PerDivision: perDivision,
		Medians:     make(map[string]float64, len(genders())),
	}
	for _, v := range plan {
		if v.Offset == 0 {
			truth.Baseline = v.Venue
		}
	}
	if truth.Baseline == "" {
		return nil, nil, fmt.Errorf("venue plan has no zero-offset venue")
	}

	results := make([]Result, 0, perDivision*divisions)
	for _, gender := range genders() {
		center := menCenterSeconds
		if gender == "W" {
			center = womenCenterSeconds
		}

		base := make([]int, perDivision)
		for i := range base {
			base[i] = center + pacingOffset()
		}
		truth.Medians[gender] = medianOf(base)

		for _, venue := range plan {
			for i, seconds := range base {
				select {
				case <-ctx.Done():
					return nil, nil, fmt.Errorf("context cancelled during result generation: %w", ctx.Err())
				default:
				}
				results = append(results, Result{
					RecordID:      fmt.Sprintf("perf_%s_%s_%d_%s", venue.Venue, gender, i, uuid.New().String()),
					Venue:         venue.Venue,
					Gender:        gender,
					FinishSeconds: float64(seconds + venue.Offset),
				})
			}
		}
	}

	stats.ResultsGenerated = len(results)
	logger.Get().Info(ctx, "generated results successfully",
		logger.Int("count", len(results)),
		logger.String("baseline", truth.Baseline))

	return results, truth, nil
}

// pacingOffset draws a finish-time offset from the division center with
// a varied field shape: a dense mid pack, thinner front and back, and
// rare elites and stragglers.
func pacingOffset() int {
	switch getRandomInt(pacingTierCount) {
	case caseElite:
		// Elite finishers, rare
		return eliteMin + getRandomInt(eliteRange)
	case caseFrontPack:
		// Front pack
		return frontMin + getRandomInt(frontRange)
	case caseChasers:
		// Chasers behind the front pack
		return chaserMin + getRandomInt(chaserRange)
	case caseMidPack, caseMidPackTwo:
		// Mid pack, the most common tier
		return midMin + getRandomInt(midRange)
	case caseSteady:
		// Steady finishers past the median
		return steadyMin + getRandomInt(steadyRange)
	case caseBackHalf:
		// Back half of the field
		return backMin + getRandomInt(backRange)
	case caseStragglers:
		// Stragglers, rare
		return stragglerMin + getRandomInt(stragglerRang)
	default:
		return fullMin + getRandomInt(fullRange)
	}
}

// medianOf returns the median of an integer sample as the engine
// computes it: mean of the two middle values on even sizes.
func medianOf(values []int) float64 {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
}

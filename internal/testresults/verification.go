package testresults

import (
	"context"
	"fmt"
	"log"
	"math"
)

// floatEq compares JSON round-tripped numbers. Every planted value is an
// integer number of seconds, so disagreement beyond rounding noise is a
// real failure.
func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// expectedPct predicts the published correction percentage for a planted
// offset: sign-flipped so positive means faster, rounded to one decimal,
// with sub-0.05 magnitudes collapsing to zero.
func expectedPct(offset int, baselineMedian float64) float64 {
	raw := -(float64(offset) / baselineMedian) * PercentageMultiplier
	if math.Abs(raw) < 0.05 {
		return 0.0
	}
	return math.Round(raw*10) / 10
}

// verifier counts checks so a run can report exactly what failed.
type verifier struct {
	stats *Stats
}

// check records one verification outcome.
func (v *verifier) check(ok bool, format string, args ...any) {
	v.stats.ChecksRun++
	if ok {
		return
	}
	v.stats.ChecksFailed++
	log.Printf("⚠️  Check failed: "+format, args...)
}

// verifyCorrections checks the published run against the planted ground
// truth: baseline choice, listing shape and order, correction
// percentages, sample counts, and conversion behavior.
func verifyCorrections(ctx context.Context, config *Config, truth *groundTruth, rec *RecomputeResponse, rows []VenueRow, stats *Stats) error {
	log.Println("🔍 Verifying published corrections...")

	v := &verifier{stats: stats}

	// Run summary.
	v.check(rec.Status == "ok", "recompute status is %q", rec.Status)
	v.check(rec.BaselineVenue == truth.Baseline,
		"baseline venue is %q, planted %q", rec.BaselineVenue, truth.Baseline)
	v.check(rec.VenueCount == len(truth.Plan),
		"run covers %d venues, planted %d", rec.VenueCount, len(truth.Plan))
	v.check(rec.FilteredRecords == stats.ResultsSuccessful,
		"run kept %d records, %d were accepted", rec.FilteredRecords, stats.ResultsSuccessful)

	verifyVenueRows(v, truth, rows)
	verifyConversions(ctx, v, config, truth)

	if stats.ChecksFailed > 0 {
		return fmt.Errorf("%d of %d verification checks failed", stats.ChecksFailed, stats.ChecksRun)
	}

	log.Printf("✅ All %d verification checks passed", stats.ChecksRun)
	return nil
}

// verifyVenueRows checks the venue listing against the plan. The listing
// orders fastest venue first, which for distinct planted offsets is
// exactly the plan order.
func verifyVenueRows(v *verifier, truth *groundTruth, rows []VenueRow) {
	v.check(len(rows) == len(truth.Plan),
		"listing has %d rows, planted %d venues", len(rows), len(truth.Plan))
	if len(rows) != len(truth.Plan) {
		return
	}

	expectedSamples := truth.PerDivision * len(genders())
	for i, planted := range truth.Plan {
		row := rows[i]
		v.check(row.Venue == planted.Venue,
			"row %d is %q, expected %q", i, row.Venue, planted.Venue)
		if row.Venue != planted.Venue {
			continue
		}

		v.check(row.Baseline == (planted.Venue == truth.Baseline),
			"%s baseline flag is %v", row.Venue, row.Baseline)
		v.check(row.SampleCount == expectedSamples,
			"%s carries %d samples, submitted %d", row.Venue, row.SampleCount, expectedSamples)

		v.check(row.MenCorrectionPct != nil && row.WomenCorrectionPct != nil,
			"%s is missing a division correction", row.Venue)
		if row.MenCorrectionPct != nil {
			want := expectedPct(planted.Offset, truth.Medians["M"])
			v.check(floatEq(*row.MenCorrectionPct, want),
				"%s men correction is %.1f%%, planted %.1f%%", row.Venue, *row.MenCorrectionPct, want)
		}
		if row.WomenCorrectionPct != nil {
			want := expectedPct(planted.Offset, truth.Medians["W"])
			v.check(floatEq(*row.WomenCorrectionPct, want),
				"%s women correction is %.1f%%, planted %.1f%%", row.Venue, *row.WomenCorrectionPct, want)
		}
	}
}

// verifyConversions exercises the conversion endpoint against the
// planted offsets: identity, exact offset recovery in both directions,
// a round trip, and the baseline alias.
func verifyConversions(ctx context.Context, v *verifier, config *Config, truth *groundTruth) {
	client := newHTTPClient(config.Timeout, config.Token)

	fastest := truth.Plan[0]
	slowest := truth.Plan[len(truth.Plan)-1]

	for _, gender := range genders() {
		probe := menCenterSeconds
		if gender == "W" {
			probe = womenCenterSeconds
		}
		probeTime := formatSeconds(probe)

		// Identity: converting within one venue changes nothing.
		conv, err := convertTime(ctx, client, config.BaseURL, gender, probeTime, truth.Baseline, truth.Baseline)
		v.check(err == nil, "%s identity conversion: %v", gender, err)
		if err == nil {
			v.check(floatEq(conv.ConvertedSeconds, float64(probe)) && !conv.Faster,
				"%s identity conversion moved %s to %.1f", gender, probeTime, conv.ConvertedSeconds)
		}

		// Every planted offset must be recovered exactly, both toward
		// the baseline and away from it.
		for _, planted := range truth.Plan {
			if planted.Offset == 0 {
				continue
			}

			conv, err = convertTime(ctx, client, config.BaseURL, gender, probeTime, planted.Venue, truth.Baseline)
			v.check(err == nil, "%s conversion from %s: %v", gender, planted.Venue, err)
			if err == nil {
				want := float64(probe - planted.Offset)
				v.check(floatEq(conv.ConvertedSeconds, want),
					"%s %s→baseline converted %s to %.1f, planted %.1f",
					gender, planted.Venue, probeTime, conv.ConvertedSeconds, want)
				v.check(conv.Faster == (planted.Offset > 0),
					"%s %s→baseline faster flag is %v for offset %+d",
					gender, planted.Venue, conv.Faster, planted.Offset)
			}

			conv, err = convertTime(ctx, client, config.BaseURL, gender, probeTime, truth.Baseline, planted.Venue)
			v.check(err == nil, "%s conversion to %s: %v", gender, planted.Venue, err)
			if err == nil {
				want := float64(probe + planted.Offset)
				v.check(floatEq(conv.ConvertedSeconds, want),
					"%s baseline→%s converted %s to %.1f, planted %.1f",
					gender, planted.Venue, probeTime, conv.ConvertedSeconds, want)
			}
		}

		// Round trip across the extremes lands back on the original.
		conv, err = convertTime(ctx, client, config.BaseURL, gender, probeTime, fastest.Venue, slowest.Venue)
		v.check(err == nil, "%s %s→%s conversion: %v", gender, fastest.Venue, slowest.Venue, err)
		if err == nil {
			back, backErr := convertTime(ctx, client, config.BaseURL, gender,
				formatSeconds(int(conv.ConvertedSeconds)), slowest.Venue, fastest.Venue)
			v.check(backErr == nil, "%s return conversion: %v", gender, backErr)
			if backErr == nil {
				v.check(floatEq(back.ConvertedSeconds, float64(probe)),
					"%s round trip returned %.1f, started at %d", gender, back.ConvertedSeconds, probe)
			}
		}

		// The baseline alias resolves to the baseline venue.
		conv, err = convertTime(ctx, client, config.BaseURL, gender, probeTime, slowest.Venue, "normalized")
		v.check(err == nil, "%s alias conversion: %v", gender, err)
		if err == nil {
			v.check(conv.ToVenue == truth.Baseline,
				"%s alias resolved to %q, expected %q", gender, conv.ToVenue, truth.Baseline)
			v.check(floatEq(conv.ConvertedSeconds, float64(probe-slowest.Offset)),
				"%s alias conversion returned %.1f", gender, conv.ConvertedSeconds)
		}
	}
}

// displayCorrectionTable shows the published listing.
func displayCorrectionTable(rows []VenueRow) {
	log.Printf("🏆 Published venue corrections (%d venues):", len(rows))
	for _, row := range rows {
		marker := ""
		if row.Baseline {
			marker = " (baseline)"
		}
		log.Printf("   %s%s - men: %s, women: %s, samples: %d, confidence: %s",
			row.Venue, marker,
			formatPct(row.MenCorrectionPct), formatPct(row.WomenCorrectionPct),
			row.SampleCount, row.Confidence)
	}
}

// formatPct renders a nullable correction percentage.
func formatPct(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *pct)
}

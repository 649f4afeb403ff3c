package baseline

import (
	"errors"
	"testing"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/stats"
)

func stat(venue string, gender model.Gender, median float64, count int) stats.VenueStat {
	return stats.VenueStat{Venue: venue, Gender: gender, MedianSeconds: median, SampleCount: count}
}

func TestSelect_MedianVenue(t *testing.T) {
	// Three candidates, agreeing order for both genders: the middle
	// one (floor(3/2) = index 1) wins.
	input := []stats.VenueStat{
		stat("Fastest", model.GenderMen, 4000, 100),
		stat("Fastest", model.GenderWomen, 4600, 100),
		stat("Middle", model.GenderMen, 4400, 100),
		stat("Middle", model.GenderWomen, 5000, 100),
		stat("Slowest", model.GenderMen, 4800, 100),
		stat("Slowest", model.GenderWomen, 5400, 100),
	}

	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "Middle" {
		t.Errorf("Select = %q, want Middle", got)
	}
}

func TestSelect_EvenCandidateCount(t *testing.T) {
	// floor(4/2) = index 2, the upper-middle venue.
	input := []stats.VenueStat{
		stat("A", model.GenderMen, 4000, 10), stat("A", model.GenderWomen, 4500, 10),
		stat("B", model.GenderMen, 4200, 10), stat("B", model.GenderWomen, 4700, 10),
		stat("C", model.GenderMen, 4400, 10), stat("C", model.GenderWomen, 4900, 10),
		stat("D", model.GenderMen, 4600, 10), stat("D", model.GenderWomen, 5100, 10),
	}

	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "C" {
		t.Errorf("Select = %q, want C", got)
	}
}

func TestSelect_SingleCandidate(t *testing.T) {
	input := []stats.VenueStat{
		stat("OnlyBoth", model.GenderMen, 4400, 40),
		stat("OnlyBoth", model.GenderWomen, 5000, 35),
		stat("MenOnly", model.GenderMen, 4000, 500),
	}

	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "OnlyBoth" {
		t.Errorf("Select = %q, want OnlyBoth", got)
	}
}

func TestSelect_IgnoresSingleGenderVenues(t *testing.T) {
	// MenOnly has the middle men's median but must not be a candidate.
	input := []stats.VenueStat{
		stat("A", model.GenderMen, 4000, 10), stat("A", model.GenderWomen, 4500, 10),
		stat("MenOnly", model.GenderMen, 4300, 10),
		stat("B", model.GenderMen, 4600, 10), stat("B", model.GenderWomen, 5100, 10),
		stat("C", model.GenderMen, 4900, 10), stat("C", model.GenderWomen, 5400, 10),
	}

	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "B" {
		t.Errorf("Select = %q, want B", got)
	}
}

func TestSelect_MedianTieBreaks(t *testing.T) {
	// B and C tie on both medians. Larger sample orders first; the
	// pick lands deterministically regardless of input order.
	input := []stats.VenueStat{
		stat("A", model.GenderMen, 4000, 10), stat("A", model.GenderWomen, 4500, 10),
		stat("B", model.GenderMen, 4400, 20), stat("B", model.GenderWomen, 4900, 20),
		stat("C", model.GenderMen, 4400, 90), stat("C", model.GenderWomen, 4900, 90),
	}

	// Order: A, C (larger sample), B. floor(3/2) = index 1 -> C.
	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "C" {
		t.Errorf("Select = %q, want C", got)
	}
}

func TestSelect_MedianAndSampleTieFallsToName(t *testing.T) {
	input := []stats.VenueStat{
		stat("A", model.GenderMen, 4000, 10), stat("A", model.GenderWomen, 4500, 10),
		stat("Zurich", model.GenderMen, 4400, 20), stat("Zurich", model.GenderWomen, 4900, 20),
		stat("Berlin", model.GenderMen, 4400, 20), stat("Berlin", model.GenderWomen, 4900, 20),
	}

	// Full tie between Zurich and Berlin: Berlin sorts first, so the
	// index-1 pick is Zurich.
	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "Zurich" {
		t.Errorf("Select = %q, want Zurich", got)
	}
}

func TestSelect_DivergentPicksDecidedBySampleWeight(t *testing.T) {
	// Men and women order the three candidates differently. Women carry
	// far more filtered records, so the women's pick wins.
	input := []stats.VenueStat{
		stat("A", model.GenderMen, 4000, 10), stat("A", model.GenderWomen, 5000, 400),
		stat("B", model.GenderMen, 4400, 10), stat("B", model.GenderWomen, 4600, 400),
		stat("C", model.GenderMen, 4800, 10), stat("C", model.GenderWomen, 5400, 400),
	}

	// Men's order: A, B, C -> pick B. Women's order: B, A, C -> pick A.
	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "A" {
		t.Errorf("Select = %q, want women's pick A", got)
	}
}

func TestSelect_DivergentPicksEvenSplitPrefersMens(t *testing.T) {
	input := []stats.VenueStat{
		stat("A", model.GenderMen, 4000, 100), stat("A", model.GenderWomen, 5000, 100),
		stat("B", model.GenderMen, 4400, 100), stat("B", model.GenderWomen, 4600, 100),
		stat("C", model.GenderMen, 4800, 100), stat("C", model.GenderWomen, 5400, 100),
	}

	got, err := Select(input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got != "B" {
		t.Errorf("Select = %q, want men's pick B", got)
	}
}

func TestSelect_NoEligibleBaseline(t *testing.T) {
	input := []stats.VenueStat{
		stat("MenOnly", model.GenderMen, 4000, 100),
		stat("WomenOnly", model.GenderWomen, 5000, 100),
	}

	_, err := Select(input)
	if !errors.Is(err, ErrNoEligibleBaseline) {
		t.Errorf("Select error = %v, want ErrNoEligibleBaseline", err)
	}
}

func TestSelect_EmptyInput(t *testing.T) {
	_, err := Select(nil)
	if !errors.Is(err, ErrNoEligibleBaseline) {
		t.Errorf("Select(nil) error = %v, want ErrNoEligibleBaseline", err)
	}
}

package correction

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/stats"
)

func stat(venue string, gender model.Gender, median float64, count int) stats.VenueStat {
	return stats.VenueStat{Venue: venue, Gender: gender, MedianSeconds: median, SampleCount: count}
}

func TestBuild_OffsetsAgainstBaseline(t *testing.T) {
	input := []stats.VenueStat{
		stat("Maastricht", model.GenderMen, 4800, 200),
		stat("Maastricht", model.GenderWomen, 5400, 180),
		stat("London", model.GenderMen, 4046, 300),
		stat("London", model.GenderWomen, 4900, 250),
	}

	table, err := Build("Maastricht", input, 50)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	london, ok := table.Entry(model.GenderMen, "London")
	if !ok {
		t.Fatal("London men entry missing")
	}
	if london.OffsetSeconds != -754 {
		t.Errorf("OffsetSeconds = %v, want -754", london.OffsetSeconds)
	}
	if london.OffsetPct != 15.7 {
		t.Errorf("OffsetPct = %v, want 15.7", london.OffsetPct)
	}
	if london.Confidence != ConfidenceNormal {
		t.Errorf("Confidence = %v, want normal", london.Confidence)
	}
}

func TestBuild_BaselineEntriesAreZero(t *testing.T) {
	input := []stats.VenueStat{
		stat("Base", model.GenderMen, 4800, 200),
		stat("Base", model.GenderWomen, 5400, 180),
		stat("Other", model.GenderMen, 4500, 100),
		stat("Other", model.GenderWomen, 5600, 100),
	}

	table, err := Build("Base", input, 50)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	for _, gender := range model.Genders() {
		entry, ok := table.Entry(gender, "Base")
		if !ok {
			t.Fatalf("baseline %s entry missing", gender)
		}
		if entry.OffsetSeconds != 0 {
			t.Errorf("baseline %s OffsetSeconds = %v, want 0", gender, entry.OffsetSeconds)
		}
		if entry.OffsetPct != 0 || math.Signbit(entry.OffsetPct) {
			t.Errorf("baseline %s OffsetPct = %v, want exactly 0.0", gender, entry.OffsetPct)
		}
	}
}

func TestBuild_SignConsistency(t *testing.T) {
	input := []stats.VenueStat{
		stat("Base", model.GenderMen, 4800, 200),
		stat("Base", model.GenderWomen, 5400, 200),
		stat("Faster", model.GenderMen, 4400, 200),
		stat("Slower", model.GenderMen, 5200, 200),
	}

	table, err := Build("Base", input, 50)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	faster, _ := table.Entry(model.GenderMen, "Faster")
	if faster.OffsetSeconds >= 0 || faster.OffsetPct <= 0 {
		t.Errorf("faster venue: offset %v, pct %v; want negative offset, positive pct",
			faster.OffsetSeconds, faster.OffsetPct)
	}

	slower, _ := table.Entry(model.GenderMen, "Slower")
	if slower.OffsetSeconds <= 0 || slower.OffsetPct >= 0 {
		t.Errorf("slower venue: offset %v, pct %v; want positive offset, negative pct",
			slower.OffsetSeconds, slower.OffsetPct)
	}
}

func TestBuild_PctRounding(t *testing.T) {
	tests := []struct {
		name   string
		median float64
		want   float64
	}{
		// Against baseline median 5000.
		{"rounds to one decimal", 4214, 15.7},   // raw 15.72
		{"rounds half away", 4992.5, 0.2},       // raw 0.15
		{"near-zero collapses", 4999, 0.0},      // raw 0.02
		{"near-zero from above", 5001, 0.0},     // raw -0.02
		{"negative keeps decimal", 5786, -15.7}, // raw -15.72
	}
	for _, tt := range tests {
		input := []stats.VenueStat{
			stat("Base", model.GenderMen, 5000, 200),
			stat("Base", model.GenderWomen, 5500, 200),
			stat("V", model.GenderMen, tt.median, 200),
		}
		table, err := Build("Base", input, 50)
		if err != nil {
			t.Fatalf("%s: Build returned error: %v", tt.name, err)
		}
		entry, _ := table.Entry(model.GenderMen, "V")
		if entry.OffsetPct != tt.want {
			t.Errorf("%s: OffsetPct = %v, want %v", tt.name, entry.OffsetPct, tt.want)
		}
		if entry.OffsetPct == 0 && math.Signbit(entry.OffsetPct) {
			t.Errorf("%s: OffsetPct is negative zero", tt.name)
		}
	}
}

func TestBuild_SingleGenderVenueGetsSingleEntry(t *testing.T) {
	input := []stats.VenueStat{
		stat("Base", model.GenderMen, 4800, 200),
		stat("Base", model.GenderWomen, 5400, 200),
		stat("MenOnly", model.GenderMen, 4600, 80),
	}

	table, err := Build("Base", input, 50)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if _, ok := table.Entry(model.GenderMen, "MenOnly"); !ok {
		t.Error("MenOnly men entry missing")
	}
	if _, ok := table.Entry(model.GenderWomen, "MenOnly"); ok {
		t.Error("MenOnly women entry should not exist")
	}
	if table.EntryCount(model.GenderMen) != 2 || table.EntryCount(model.GenderWomen) != 1 {
		t.Errorf("entry counts = %d men / %d women, want 2/1",
			table.EntryCount(model.GenderMen), table.EntryCount(model.GenderWomen))
	}
}

func TestBuild_LowConfidence(t *testing.T) {
	input := []stats.VenueStat{
		stat("Base", model.GenderMen, 4800, 200),
		stat("Base", model.GenderWomen, 5400, 200),
		stat("Sparse", model.GenderMen, 4600, 49),
		stat("Sampled", model.GenderMen, 4700, 50),
	}

	table, err := Build("Base", input, 50)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	sparse, _ := table.Entry(model.GenderMen, "Sparse")
	if sparse.Confidence != ConfidenceLow {
		t.Errorf("Sparse confidence = %v, want low", sparse.Confidence)
	}
	sampled, _ := table.Entry(model.GenderMen, "Sampled")
	if sampled.Confidence != ConfidenceNormal {
		t.Errorf("Sampled confidence = %v, want normal", sampled.Confidence)
	}
}

func TestBuild_MissingBaselineStat(t *testing.T) {
	input := []stats.VenueStat{
		stat("Base", model.GenderMen, 4800, 200),
		stat("Other", model.GenderWomen, 5400, 200),
	}

	_, err := Build("Base", input, 50)
	if !errors.Is(err, ErrMissingBaseline) {
		t.Errorf("Build error = %v, want ErrMissingBaseline", err)
	}
}

func TestTable_Venues(t *testing.T) {
	input := []stats.VenueStat{
		stat("Base", model.GenderMen, 4800, 200),
		stat("Base", model.GenderWomen, 5400, 200),
		stat("Zurich", model.GenderMen, 4600, 80),
		stat("Amsterdam", model.GenderWomen, 5500, 90),
	}

	table, err := Build("Base", input, 50)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	want := []string{"Amsterdam", "Base", "Zurich"}
	got := table.Venues()
	if len(got) != len(want) {
		t.Fatalf("Venues = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Venues = %v, want %v", got, want)
		}
	}

	// Stable across calls.
	again := table.Venues()
	for i := range got {
		if got[i] != again[i] {
			t.Fatal("Venues ordering is not stable across calls")
		}
	}
}

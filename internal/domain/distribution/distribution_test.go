package distribution

import (
	"testing"

	"github.com/okian/coursecorrect/internal/domain/model"
)

func defaultParams() Params {
	return Params{LowerBound: 3000, UpperBound: 9000, BinWidth: 300}
}

func group(venue string, gender model.Gender) model.Group {
	return model.Group{Venue: venue, Gender: gender}
}

func TestCompute_BinLayout(t *testing.T) {
	h := Compute(defaultParams(), nil, Selection{})

	if len(h.Bins) != 20 {
		t.Fatalf("bin count = %d, want 20", len(h.Bins))
	}
	if h.Bins[0].Start != 3000 || h.Bins[0].End != 3300 {
		t.Errorf("first bin = [%v, %v)", h.Bins[0].Start, h.Bins[0].End)
	}
	last := h.Bins[len(h.Bins)-1]
	if last.Start != 8700 || last.End != 9000 {
		t.Errorf("last bin = [%v, %v]", last.Start, last.End)
	}
	for i := 1; i < len(h.Bins); i++ {
		if h.Bins[i].Start != h.Bins[i-1].End {
			t.Errorf("gap between bins %d and %d", i-1, i)
		}
	}
}

func TestCompute_Counts(t *testing.T) {
	groups := map[model.Group][]float64{
		group("London", model.GenderMen): {3000, 3100, 3299.9, 3300, 4500},
	}

	h := Compute(defaultParams(), groups, Selection{})

	if h.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", h.TotalCount)
	}
	if h.Bins[0].Count != 3 {
		t.Errorf("bin[3000,3300) count = %d, want 3", h.Bins[0].Count)
	}
	if h.Bins[1].Count != 1 {
		t.Errorf("bin[3300,3600) count = %d, want 1", h.Bins[1].Count)
	}
	if h.Bins[5].Count != 1 {
		t.Errorf("bin[4500,4800) count = %d, want 1", h.Bins[5].Count)
	}
}

func TestCompute_UpperBoundInclusive(t *testing.T) {
	groups := map[model.Group][]float64{
		group("London", model.GenderMen): {9000},
	}

	h := Compute(defaultParams(), groups, Selection{})

	last := h.Bins[len(h.Bins)-1]
	if last.Count != 1 {
		t.Errorf("time at the upper bound not counted in the final bin")
	}
	if h.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", h.TotalCount)
	}
}

func TestCompute_OutOfRangeIgnored(t *testing.T) {
	groups := map[model.Group][]float64{
		group("London", model.GenderMen): {2999.9, 9000.1},
	}

	h := Compute(defaultParams(), groups, Selection{})

	if h.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", h.TotalCount)
	}
}

func TestCompute_VenueSelection(t *testing.T) {
	groups := map[model.Group][]float64{
		group("London", model.GenderMen):   {3100, 3200},
		group("Berlin", model.GenderMen):   {3100},
		group("London", model.GenderWomen): {3400},
	}

	h := Compute(defaultParams(), groups, Selection{Venues: []string{"London"}})

	if h.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3 (both London genders)", h.TotalCount)
	}
}

func TestCompute_GenderSelection(t *testing.T) {
	groups := map[model.Group][]float64{
		group("London", model.GenderMen):   {3100, 3200},
		group("Berlin", model.GenderWomen): {3400, 3500, 3600},
	}

	h := Compute(defaultParams(), groups, Selection{Genders: []model.Gender{model.GenderWomen}})

	if h.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", h.TotalCount)
	}
}

func TestCompute_CombinedSelection(t *testing.T) {
	groups := map[model.Group][]float64{
		group("London", model.GenderMen):   {3100},
		group("London", model.GenderWomen): {3400},
		group("Berlin", model.GenderMen):   {3200},
	}

	h := Compute(defaultParams(), groups, Selection{
		Venues:  []string{"London"},
		Genders: []model.Gender{model.GenderMen},
	})

	if h.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", h.TotalCount)
	}
}

func TestCompute_UnevenFinalBin(t *testing.T) {
	p := Params{LowerBound: 3000, UpperBound: 3500, BinWidth: 300}
	groups := map[model.Group][]float64{
		group("London", model.GenderMen): {3450, 3500},
	}

	h := Compute(p, groups, Selection{})

	if len(h.Bins) != 2 {
		t.Fatalf("bin count = %d, want 2", len(h.Bins))
	}
	last := h.Bins[1]
	if last.Start != 3300 || last.End != 3500 {
		t.Errorf("clamped final bin = [%v, %v], want [3300, 3500]", last.Start, last.End)
	}
	if last.Count != 2 {
		t.Errorf("final bin count = %d, want 2", last.Count)
	}
}

func TestGroupVenues(t *testing.T) {
	groups := map[model.Group][]float64{
		group("Zurich", model.GenderMen):   {3100},
		group("Berlin", model.GenderMen):   {3200},
		group("Berlin", model.GenderWomen): {3400},
	}

	got := GroupVenues(groups)
	want := []string{"Berlin", "Zurich"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("GroupVenues = %v, want %v", got, want)
	}
}

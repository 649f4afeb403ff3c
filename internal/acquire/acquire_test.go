package acquire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okian/coursecorrect/internal/domain/model"
)

func TestRecordID(t *testing.T) {
	r := Record{
		Venue:  "New York City",
		Gender: model.GenderWomen,
		Rank:   12,
		Name:   "Anna-Maria O'Neil",
	}
	require.Equal(t, "annamariaoneil-newyorkcity-w-12", r.RecordID())
}

func TestRecordIDStable(t *testing.T) {
	r := Record{Venue: "London", Gender: model.GenderMen, Rank: 3, Name: "J. Smith"}
	require.Equal(t, r.RecordID(), r.RecordID())
}

func TestRecordIDDistinguishesSameName(t *testing.T) {
	a := Record{Venue: "London", Gender: model.GenderMen, Rank: 3, Name: "J. Smith"}
	b := Record{Venue: "London", Gender: model.GenderMen, Rank: 57, Name: "J. Smith"}
	require.NotEqual(t, a.RecordID(), b.RecordID())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hunter McIntyre", "huntermcintyre"},
		{"Anna-Maria O'Neil", "annamariaoneil"},
		{"Łukasz Nowak", "ukasznowak"},
		{"  spaced  out  ", "spacedout"},
		{"42", "42"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}

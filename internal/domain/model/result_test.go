package model_test

import (
	"errors"
	"math"
	"testing"

	model "github.com/okian/coursecorrect/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseGender(t *testing.T) {
	convey.Convey("Given gender spellings from feeds and forms", t, func() {
		convey.Convey("When parsing men's spellings", func() {
			for _, s := range []string{"M", "m", "men", "Male", " MEN "} {
				g, err := model.ParseGender(s)

				convey.So(err, convey.ShouldBeNil)
				convey.So(g, convey.ShouldEqual, model.GenderMen)
			}
		})

		convey.Convey("When parsing women's spellings", func() {
			for _, s := range []string{"W", "w", "f", "women", "Female"} {
				g, err := model.ParseGender(s)

				convey.So(err, convey.ShouldBeNil)
				convey.So(g, convey.ShouldEqual, model.GenderWomen)
			}
		})

		convey.Convey("When parsing unknown spellings", func() {
			for _, s := range []string{"", "x", "mixed", "relay"} {
				_, err := model.ParseGender(s)

				convey.So(errors.Is(err, model.ErrInvalidGender), convey.ShouldBeTrue)
			}
		})
	})
}

func TestResult_Validate(t *testing.T) {
	convey.Convey("Given candidate result records", t, func() {
		convey.Convey("When the record is complete", func() {
			r := model.Result{ID: "rec-1", Venue: "London", Gender: model.GenderMen, FinishSeconds: 4046}

			convey.Convey("Then it should validate", func() {
				convey.So(r.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the venue is blank", func() {
			r := model.Result{Venue: "   ", Gender: model.GenderWomen, FinishSeconds: 5000}

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(r.Validate(), model.ErrInvalidRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the gender is not a division", func() {
			r := model.Result{Venue: "London", Gender: model.Gender("X"), FinishSeconds: 5000}

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(r.Validate(), model.ErrInvalidGender), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the finish time is not positive finite", func() {
			for _, secs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
				r := model.Result{Venue: "London", Gender: model.GenderMen, FinishSeconds: secs}

				convey.So(errors.Is(r.Validate(), model.ErrInvalidRecord), convey.ShouldBeTrue)
			}
		})
	})
}

func TestGenders(t *testing.T) {
	convey.Convey("Given the canonical division order", t, func() {
		convey.So(model.Genders(), convey.ShouldResemble, []model.Gender{model.GenderMen, model.GenderWomen})
	})
}

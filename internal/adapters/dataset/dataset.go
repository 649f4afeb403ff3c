// Package dataset loads seed results from external sources at startup.
//
// Sources normalize rows into model.Result values; individual bad rows
// are skipped so one malformed entry cannot abort a whole load.
package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/timeparse"
)

// Source loads a batch of results for the initial dataset.
type Source interface {
	Load(ctx context.Context) ([]model.Result, error)
}

// rawRecord is one source row before normalization.
type rawRecord struct {
	ID            string
	Venue         string
	Gender        string
	FinishTime    string
	FinishSeconds float64
}

// toResult normalizes a raw row. Seconds win when both finish fields
// are populated.
func (r rawRecord) toResult() (model.Result, error) {
	venue := strings.TrimSpace(r.Venue)
	if venue == "" {
		return model.Result{}, fmt.Errorf("%w: venue is required", model.ErrInvalidRecord)
	}

	gender, err := model.ParseGender(r.Gender)
	if err != nil {
		return model.Result{}, err
	}

	seconds := r.FinishSeconds
	if seconds == 0 && r.FinishTime != "" {
		seconds, err = timeparse.ParseToSeconds(r.FinishTime)
		if err != nil {
			return model.Result{}, err
		}
	}
	if !timeparse.ValidSeconds(seconds) {
		return model.Result{}, fmt.Errorf("%w: finish time must be positive", model.ErrInvalidRecord)
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = uuid.New().String()
	}

	return model.Result{
		ID:            id,
		Venue:         venue,
		Gender:        gender,
		FinishSeconds: seconds,
	}, nil
}

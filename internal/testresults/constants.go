package testresults

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DrainPollInterval    = 200 * time.Millisecond
	DrainTimeout         = 30 * time.Second
	ReplaySampleSize     = 100
	PercentageMultiplier = 100
)

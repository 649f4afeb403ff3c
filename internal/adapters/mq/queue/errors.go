package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrQueueFull signals that an enqueue was refused for capacity.
	ErrQueueFull = errors.New("queue full")

	// ErrQueueClosed signals that an enqueue was refused after Close.
	ErrQueueClosed = errors.New("queue closed")
)

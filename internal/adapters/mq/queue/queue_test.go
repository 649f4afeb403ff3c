package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/coursecorrect/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	r1 := model.Result{ID: "rec1", Venue: "Maastricht", Gender: model.GenderMen, FinishSeconds: 4800}
	if !q.Enqueue(ctx, r1) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	resultChan := q.Dequeue(ctx)
	r := <-resultChan
	if r.ID != "rec1" {
		t.Errorf("expected rec1, got %v", r.ID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Fill the queue
	r1 := model.Result{ID: "rec1", Venue: "Maastricht", Gender: model.GenderMen, FinishSeconds: 4700}
	r2 := model.Result{ID: "rec2", Venue: "London", Gender: model.GenderWomen, FinishSeconds: 4900}
	r3 := model.Result{ID: "rec3", Venue: "Berlin", Gender: model.GenderMen, FinishSeconds: 4500}

	if !q.Enqueue(ctx, r1) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, r2) {
		t.Error("expected enqueue to succeed")
	}

	// Try to enqueue when full
	if q.Enqueue(ctx, r3) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numGoroutines := 10
	numResults := 100

	// Start producer goroutines
	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numResults; j++ {
				r := model.Result{
					ID:            fmt.Sprintf("rec%d_%d", id, j),
					Venue:         fmt.Sprintf("Venue%d", id),
					Gender:        model.GenderMen,
					FinishSeconds: 3000 + float64(j),
				}
				for !q.Enqueue(ctx, r) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	// Start consumer goroutines
	consumed := make(chan string, numGoroutines*numResults)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			resultChan := q.Dequeue(ctx)
			for r := range resultChan {
				consumed <- r.ID
			}
		}()
	}

	// Wait for producers to finish
	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	// Wait a bit for consumers to process
	time.Sleep(100 * time.Millisecond)

	// Check final queue length
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	// Enqueue some results
	r1 := model.Result{ID: "rec1", Venue: "Maastricht", Gender: model.GenderMen, FinishSeconds: 4700}
	r2 := model.Result{ID: "rec2", Venue: "London", Gender: model.GenderWomen, FinishSeconds: 4900}

	if !q.Enqueue(ctx, r1) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, r2) {
		t.Error("expected enqueue to succeed")
	}

	// Check initial state
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	// Close the queue
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	// Check closed state
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	// Try to enqueue after closing (should fail)
	if q.Enqueue(ctx, r1) {
		t.Error("expected enqueue to fail after closing")
	}

	// Dequeue channel should be closed
	resultChan := q.Dequeue(ctx)

	// Wait for channel to be closed
	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case _, ok := <-resultChan:
			if !ok {
				// Channel is closed, which is expected
				goto channelClosed
			}
		case <-timeout:
			t.Error("expected dequeue channel to be closed within timeout")
			return
		}
	}
channelClosed:

	// Close again should not error
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}

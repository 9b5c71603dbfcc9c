//go:build !integration

package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingJob struct {
	runs int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	return j.err
}

func TestScheduler(t *testing.T) {
	logger := zerolog.New(io.Discard)

	t.Run("should run the job on every tick until stopped", func(t *testing.T) {
		job := &countingJob{err: errors.New("ignored")}
		s := NewScheduler(10*time.Millisecond, job, &logger)
		s.Start(context.Background())
		s.Start(context.Background()) // no-op

		deadline := time.Now().Add(2 * time.Second)
		for atomic.LoadInt32(&job.runs) < 3 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		s.Stop()
		if got := atomic.LoadInt32(&job.runs); got < 3 {
			t.Fatalf("expected at least 3 runs, got %d", got)
		}

		after := atomic.LoadInt32(&job.runs)
		time.Sleep(30 * time.Millisecond)
		if got := atomic.LoadInt32(&job.runs); got != after {
			t.Errorf("expected no runs after Stop, got %d more", got-after)
		}
	})

	t.Run("should tolerate Stop without Start", func(t *testing.T) {
		s := NewScheduler(0, &countingJob{}, &logger)
		s.Stop()
		if s.interval != time.Minute {
			t.Errorf("expected default interval, got %v", s.interval)
		}
	})
}

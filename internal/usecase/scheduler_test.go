package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
	"github.com/tullogher/gaa-fixtures/internal/infrastructure/repository/memory"
	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
)

func TestSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	repo := memory.NewFixtureRepository()
	var calls atomic.Int64
	source := &fakeSource{fetch: func(context.Context) ([]fixture.Record, int, error) {
		calls.Add(1)
		return sourceBatch(), 0, nil
	}}
	refresh := NewRefreshService(source, repo, logging.NewNop())
	scheduler := NewScheduler(refresh, 20*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler ran %d times, want at least 3", calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	scheduler.Wait()
}

func TestSchedulerKeepsGoingAfterFailures(t *testing.T) {
	repo := memory.NewFixtureRepository()
	var calls atomic.Int64
	source := &fakeSource{fetch: func(context.Context) ([]fixture.Record, int, error) {
		calls.Add(1)
		return nil, 0, errors.New("upstream down")
	}}
	refresh := NewRefreshService(source, repo, logging.NewNop())
	scheduler := NewScheduler(refresh, 20*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler ran %d times after failures, want at least 2", calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	scheduler.Wait()
}

package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunNowRecordsOutcome(t *testing.T) {
	svc := New()
	details, err := svc.RunNow(context.Background(), JobSessionSweep, func(context.Context) (any, error) {
		return map[string]int{"expired": 2}, nil
	})
	if err != nil || details == nil {
		t.Fatalf("unexpected result %v %v", details, err)
	}
	if run := svc.LastRuns()[JobSessionSweep]; run.Status != "completed" {
		t.Fatalf("expected completed run, got %+v", run)
	}

	_, err = svc.RunNow(context.Background(), JobSessionSweep, func(context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if run := svc.LastRuns()[JobSessionSweep]; run.Status != "failed" || run.Error != "boom" {
		t.Fatalf("expected failed run, got %+v", run)
	}
}

func TestScheduledJobRuns(t *testing.T) {
	svc := New()
	var calls atomic.Int32
	svc.Every("tick", 5*time.Millisecond, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("scheduled job did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

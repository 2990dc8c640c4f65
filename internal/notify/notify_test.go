package notify

import (
	"testing"
	"time"
)

func TestToasterReplacesCurrent(t *testing.T) {
	toaster := NewToaster(time.Hour)
	Success(toaster, "saved")
	Error(toaster, "failed")

	current, ok := toaster.Current()
	if !ok || current.Message != "failed" || current.Level != LevelError {
		t.Fatalf("expected latest notification, got %+v", current)
	}

	toaster.Dismiss()
	if _, ok := toaster.Current(); ok {
		t.Fatal("expected no notification after dismiss")
	}
}

func TestToasterClearsAfterTTL(t *testing.T) {
	toaster := NewToaster(20 * time.Millisecond)
	Warning(toaster, "select at least one row")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := toaster.Current(); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected notification to clear")
}

func TestToasterNewToastCancelsOldTimer(t *testing.T) {
	toaster := NewToaster(30 * time.Millisecond)
	Success(toaster, "first")
	time.Sleep(20 * time.Millisecond)
	toaster.ttl = time.Hour
	Success(toaster, "second")
	time.Sleep(40 * time.Millisecond)

	current, ok := toaster.Current()
	if !ok || current.Message != "second" {
		t.Fatalf("old timer cleared the new toast: %+v %v", current, ok)
	}
}

func TestRecorderKeepsOrder(t *testing.T) {
	var rec Recorder
	Success(&rec, "ok")
	Error(&rec, "failed")
	if len(rec.All()) != 2 {
		t.Fatalf("expected two notifications, got %d", len(rec.All()))
	}
	last, ok := rec.Last()
	if !ok || last.Level != LevelError || last.Message != "failed" {
		t.Fatalf("unexpected last %+v", last)
	}
	rec.Reset()
	if _, ok := rec.Last(); ok {
		t.Fatal("reset should clear the recorder")
	}
	Success(nil, "ignored")
}

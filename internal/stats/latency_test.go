package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/copywrite/internal/copywriting"
)

func TestLatencySnapshotPercentiles(t *testing.T) {
	l := NewLatency(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		l.Record(time.Duration(us) * time.Microsecond)
	}

	snap := l.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinUs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinUs)
	}
	if snap.MaxUs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxUs)
	}
	if snap.AvgUs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgUs)
	}
	if snap.P50Us != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Us)
	}
	if snap.P95Us != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Us)
	}
	if snap.P99Us != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Us)
	}
}

func TestLatencyPrunesExpiredSamples(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLatency(time.Minute)
	l.now = func() time.Time { return clock }

	l.Record(100 * time.Microsecond)
	clock = clock.Add(2 * time.Minute)

	if snap := l.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	l.Record(200 * time.Microsecond)
	snap := l.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinUs != 200 || snap.MaxUs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}

func TestLatencyRecordClampsNegativeDuration(t *testing.T) {
	l := NewLatency(time.Hour)
	l.Record(-10 * time.Microsecond)
	snap := l.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinUs != 0 || snap.MaxUs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}

func TestRecorderObserve(t *testing.T) {
	r := NewRecorder(time.Hour)
	r.Observe(copywriting.Report{Total: 5, Eligible: 3, Protected: 1, Changed: 2, CodeSpacing: 1, Duration: time.Millisecond}, nil)
	r.Observe(copywriting.Report{Skipped: copywriting.SkipLanguage}, nil)
	r.Observe(copywriting.Report{}, errors.New("boom"))

	totals := r.Totals()
	if totals.Posts != 3 || totals.Formatted != 1 || totals.Failed != 1 {
		t.Errorf("unexpected post counts: %+v", totals)
	}
	if totals.Skipped["language"] != 1 {
		t.Errorf("expected one language skip, got %v", totals.Skipped)
	}
	if totals.Eligible != 3 || totals.Changed != 2 || totals.CodeSpacing != 1 {
		t.Errorf("unexpected node counts: %+v", totals)
	}
	if n := r.Latency.Snapshot().Count; n != 1 {
		t.Errorf("expected only formatted posts in the latency window, got %d", n)
	}

	// Mutating the copy must not leak into the recorder.
	totals.Skipped["language"] = 99
	if r.Totals().Skipped["language"] != 1 {
		t.Error("expected Totals to return a copy")
	}
}

package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/copywrite/internal/config"
	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/dgallion1/copywrite/internal/dictionary"
	"github.com/dgallion1/copywrite/internal/spacing"
	"github.com/dgallion1/copywrite/internal/stats"
	"go.uber.org/goleak"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T, queueSize int) (*Orchestrator, *stats.Recorder) {
	t.Helper()
	log := testLogger()
	dict := dictionary.New(dictionary.Entry{Incorrect: "golang", Correct: "Go"})
	filter := copywriting.New(dict, spacing.Text, log)
	rec := stats.NewRecorder(time.Hour)
	cfg := config.Config{MaxQueueSize: queueSize, JobTTL: time.Hour}
	return NewOrchestrator(cfg, filter, copywriting.DefaultFlags(), rec, log), rec
}

func waitTerminal(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		if snap.Status.Terminal() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish, last status %q", job.ID, job.Snapshot().Status)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	orch, rec := newTestOrchestrator(t, 10)
	orch.Start(context.Background())
	defer orch.Stop()

	formatted := NewJob("hello.md", []byte("---\ntitle: 你好\n---\n我用golang写服务,很好用!\n"))
	skipped := NewJob("en.md", []byte("---\nlang: en\n---\nplain english, untouched.\n"))
	broken := NewJob("notes.pdf", []byte("%PDF"))

	for _, job := range []*Job{formatted, skipped, broken} {
		if err := orch.Submit(job); err != nil {
			t.Fatalf("submit %s: %v", job.Filename, err)
		}
	}

	snap := waitTerminal(t, formatted)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Errors)
	}
	if snap.Title != "你好" {
		t.Errorf("expected title from front matter, got %q", snap.Title)
	}
	content, _ := formatted.Content()
	if !strings.Contains(content, "我用 Go 写服务，很好用！") {
		t.Errorf("expected formatted prose, got %q", content)
	}

	snap = waitTerminal(t, skipped)
	if snap.Status != StatusSkipped || snap.Phase != string(copywriting.SkipLanguage) {
		t.Errorf("expected language skip, got %q/%q", snap.Status, snap.Phase)
	}
	content, _ = skipped.Content()
	if !strings.Contains(content, "plain english, untouched.") {
		t.Errorf("expected untouched content, got %q", content)
	}

	snap = waitTerminal(t, broken)
	if snap.Status != StatusFailed || len(snap.Errors) == 0 {
		t.Errorf("expected failure with errors, got %q %v", snap.Status, snap.Errors)
	}

	if got := orch.GetJob(formatted.ID); got != formatted {
		t.Error("expected GetJob to return the submitted job")
	}
	totals := rec.Totals()
	if totals.Formatted != 1 || totals.Skipped["language"] != 1 {
		t.Errorf("unexpected totals: %+v", totals)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Not started, so nothing drains the queue.
	orch, _ := newTestOrchestrator(t, 1)
	defer orch.Stop()

	if err := orch.Submit(NewJob("a.md", []byte("一"))); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", orch.QueueDepth())
	}

	job := NewJob("b.md", []byte("二"))
	if err := orch.Submit(job); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected queue_full failure, got %q/%q", snap.Status, snap.Phase)
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	orch, _ := newTestOrchestrator(t, 1)
	orch.Start(context.Background())
	orch.Stop()
	orch.Stop()

	if err := orch.Submit(NewJob("a.md", []byte("一"))); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

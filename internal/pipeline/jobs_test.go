package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/copywrite/internal/copywriting"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("post.md", []byte("hello world"))
	if job.Status != StatusQueued {
		t.Errorf("expected %q, got %q", StatusQueued, job.Status)
	}
	if len(job.ID) != 26 {
		t.Errorf("expected 26-char ULID, got %q", job.ID)
	}
	if job.ContentHash != ContentHashHex([]byte("hello world")) {
		t.Errorf("unexpected content hash %q", job.ContentHash)
	}
	if string(job.FileData()) != "hello world" {
		t.Errorf("expected file data to be kept, got %q", job.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status   JobStatus
		phase    string
		terminal bool
	}{
		{StatusParsing, "parsing", false},
		{StatusFormatting, "formatting", false},
		{StatusCompleted, "done", true},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
		if job.Status.Terminal() != tr.terminal {
			t.Errorf("expected Terminal()=%v for %q", tr.terminal, tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("parse: unexpected EOF")
	job.AddError("format: boom")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "parse: unexpected EOF" {
		t.Errorf("expected first error %q, got %q", "parse: unexpected EOF", snap.Errors[0])
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("post.md", []byte("raw"))
	if _, ok := job.Content(); ok {
		t.Fatal("expected no content before SetResult")
	}

	job.SetResult("标题", "<p>你好</p>", copywriting.Report{Eligible: 1, Changed: 1})

	content, ok := job.Content()
	if !ok || content != "<p>你好</p>" {
		t.Errorf("expected formatted content, got %q (ok=%v)", content, ok)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released after SetResult")
	}

	snap := job.Snapshot()
	if snap.Title != "标题" {
		t.Errorf("expected title to be recorded, got %q", snap.Title)
	}
	if snap.Report == nil || snap.Report.Changed != 1 {
		t.Errorf("expected report in snapshot, got %+v", snap.Report)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Report != nil {
		t.Errorf("expected no report, got %+v", snap.Report)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	store.Put(&Job{ID: "old", UpdatedAt: time.Now()})
	time.Sleep(100 * time.Millisecond)
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	if n := store.Cleanup(); n != 0 {
		t.Errorf("expected no evictions, got %d", n)
	}
}

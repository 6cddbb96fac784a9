package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/dgallion1/copywrite/internal/parser"
	"github.com/dgallion1/copywrite/internal/stats"
)

// Worker formats a single queued post.
type Worker struct {
	filter *copywriting.Filter
	flags  copywriting.Flags
	stats  *stats.Recorder
	log    *slog.Logger
}

func NewWorker(filter *copywriting.Filter, flags copywriting.Flags, rec *stats.Recorder, log *slog.Logger) *Worker {
	return &Worker{
		filter: filter,
		flags:  flags,
		stats:  rec,
		log:    log,
	}
}

// Process parses the job's file, runs the filter over it and stores the
// outcome on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	post, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Format
	job.SetStatus(StatusFormatting, "formatting")
	rep, err := w.filter.Apply(post, w.flags)
	if w.stats != nil {
		w.stats.Observe(rep, err)
	}
	if err != nil {
		log.Error("format failed", "error", err)
		job.AddError(fmt.Sprintf("format: %s", err))
		job.SetStatus(StatusFailed, "formatting")
		return
	}

	job.SetResult(post.Title, post.Content, rep)
	if rep.Skipped != "" {
		log.Info("post skipped", "reason", rep.Skipped)
		job.SetStatus(StatusSkipped, string(rep.Skipped))
		return
	}

	log.Info("post formatted",
		"changed", rep.Changed,
		"eligible", rep.Eligible,
		"code_spacing", rep.CodeSpacing,
		"duration", rep.Duration,
	)
	job.SetStatus(StatusCompleted, "done")
}

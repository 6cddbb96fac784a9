package api

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/copywrite/internal/parser"
	"github.com/dgallion1/copywrite/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type jobResult struct {
	Filename string             `json:"filename"`
	JobID    string             `json:"job_id,omitempty"`
	Status   pipeline.JobStatus `json:"status,omitempty"`
	PollURL  string             `json:"poll_url,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// handleSubmitJobs queues every uploaded file for background formatting.
func (s *Server) handleSubmitJobs(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]jobResult, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, jobResult{
				Filename: filename,
				Error:    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, jobResult{Filename: filename, Error: "failed to open file"})
			continue
		}
		data, err := readLimited(f, s.cfg.MaxUploadBytes)
		f.Close()
		if err != nil {
			results = append(results, jobResult{Filename: filename, Error: err.Error()})
			continue
		}

		job := pipeline.NewJob(filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, jobResult{Filename: filename, JobID: job.ID, Error: err.Error()})
			continue
		}

		results = append(results, jobResult{
			Filename: filename,
			JobID:    job.ID,
			Status:   pipeline.StatusQueued,
			PollURL:  fmt.Sprintf("/api/jobs/%s", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleJobContent returns the formatted HTML of a finished job.
func (s *Server) handleJobContent(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	content, ok := job.Content()
	if !ok {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(content))
}

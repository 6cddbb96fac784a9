package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/copywrite/internal/config"
	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/dgallion1/copywrite/internal/doctree"
	"github.com/dgallion1/copywrite/internal/parser"
)

type formatRequest struct {
	Content    string             `json:"content"`
	Title      string             `json:"title"`
	Layout     string             `json:"layout"`
	Lang       string             `json:"lang"`
	Standalone bool               `json:"standalone"`
	Options    config.Copywriting `json:"options"`
}

type formatResponse struct {
	Content string             `json:"content"`
	Title   string             `json:"title,omitempty"`
	Report  copywriting.Report `json:"report"`
}

// handleFormat formats already-rendered HTML sent as JSON.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req formatRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	layout := req.Layout
	if layout == "" {
		layout = parser.DefaultLayout
	}
	post := &doctree.Post{
		Title:      req.Title,
		Layout:     layout,
		Lang:       req.Lang,
		Content:    req.Content,
		Standalone: req.Standalone,
	}

	rep, err := s.apply(post, req.Options)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{Content: post.Content, Report: rep})
}

// handleFormatFile parses an uploaded source file and formats it inline.
func (s *Server) handleFormatFile(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	post, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if title := r.FormValue("title"); title != "" {
		post.Title = title
	}

	rep, err := s.apply(post, formOptions(r))
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{Content: post.Content, Title: post.Title, Report: rep})
}

func (s *Server) apply(post *doctree.Post, opts config.Copywriting) (copywriting.Report, error) {
	rep, err := s.filter.Apply(post, narrow(s.flags, opts))
	if s.stats != nil {
		s.stats.Observe(rep, err)
	}
	return rep, err
}

// narrow applies request options on top of the server defaults. A request can
// switch stages off but never on.
func narrow(base copywriting.Flags, opts config.Copywriting) copywriting.Flags {
	req := opts.Flags()
	return copywriting.Flags{
		Enable:      base.Enable && req.Enable,
		Pangu:       base.Pangu && req.Pangu,
		Punctuation: base.Punctuation && req.Punctuation,
		ProperNouns: base.ProperNouns && req.ProperNouns,
	}
}

// formOptions reads stage switches from multipart form fields.
func formOptions(r *http.Request) config.Copywriting {
	get := func(key string) *bool {
		switch strings.ToLower(r.FormValue(key)) {
		case "false", "0", "off", "no":
			v := false
			return &v
		}
		return nil
	}
	return config.Copywriting{
		Enable:      get("enable"),
		Pangu:       get("pangu"),
		Punctuation: get("punctuation"),
		ProperNouns: get("proper_nouns"),
	}
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", limit)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

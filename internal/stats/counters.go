package stats

import (
	"sync"
	"time"

	"github.com/dgallion1/copywrite/internal/copywriting"
)

// Totals are cumulative counts across every formatted post.
type Totals struct {
	Posts       int64            `json:"posts"`
	Formatted   int64            `json:"formatted"`
	Skipped     map[string]int64 `json:"skipped"`
	Failed      int64            `json:"failed"`
	TextNodes   int64            `json:"text_nodes"`
	Eligible    int64            `json:"eligible"`
	Protected   int64            `json:"protected"`
	Changed     int64            `json:"changed"`
	CodeSpacing int64            `json:"code_spacing"`
}

// Recorder aggregates filter reports.
type Recorder struct {
	Latency *Latency

	mu     sync.Mutex
	totals Totals
}

func NewRecorder(window time.Duration) *Recorder {
	return &Recorder{
		Latency: NewLatency(window),
		totals:  Totals{Skipped: make(map[string]int64)},
	}
}

// Observe records the outcome of one Filter.Apply call.
func (r *Recorder) Observe(rep copywriting.Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totals.Posts++
	switch {
	case err != nil:
		r.totals.Failed++
		return
	case rep.Skipped != "":
		r.totals.Skipped[string(rep.Skipped)]++
		return
	}

	r.totals.Formatted++
	r.totals.TextNodes += int64(rep.Total)
	r.totals.Eligible += int64(rep.Eligible)
	r.totals.Protected += int64(rep.Protected)
	r.totals.Changed += int64(rep.Changed)
	r.totals.CodeSpacing += int64(rep.CodeSpacing)
	r.Latency.Record(rep.Duration)
}

// Totals returns a copy of the cumulative counts.
func (r *Recorder) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.totals
	t.Skipped = make(map[string]int64, len(r.totals.Skipped))
	for k, v := range r.totals.Skipped {
		t.Skipped[k] = v
	}
	return t
}

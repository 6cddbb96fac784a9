package copywriting

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/copywrite/internal/dictionary"
	"github.com/dgallion1/copywrite/internal/doctree"
	"github.com/dgallion1/copywrite/internal/textpipe"
)

// Flags switches the filter and its optional stages.
type Flags struct {
	Enable      bool
	Pangu       bool
	Punctuation bool
	ProperNouns bool
}

// DefaultFlags enables everything.
func DefaultFlags() Flags {
	return Flags{Enable: true, Pangu: true, Punctuation: true, ProperNouns: true}
}

// SkipReason explains why a post was returned unmodified.
type SkipReason string

const (
	SkipDisabled SkipReason = "disabled"
	SkipLayout   SkipReason = "layout"
	SkipLanguage SkipReason = "language"
	SkipEmpty    SkipReason = "empty"
)

// Report summarizes one Apply call.
type Report struct {
	Skipped     SkipReason    `json:"skipped,omitempty"`
	Total       int           `json:"total_text_nodes"`
	Eligible    int           `json:"eligible_text_nodes"`
	Protected   int           `json:"protected_text_nodes"`
	Changed     int           `json:"changed_text_nodes"`
	CodeSpacing int           `json:"code_spacing"`
	Duration    time.Duration `json:"duration_ns"`
}

// cjkLangs are the language prefixes the filter formats.
var cjkLangs = []string{"zh", "ja", "ko"}

const snippetLen = 50

// Filter formats CJK prose in rendered posts.
type Filter struct {
	dict   *dictionary.Dictionary
	spacer textpipe.SpacingFunc
	log    *slog.Logger

	// Compiled pipelines keyed by stage selection.
	pipelines map[textpipe.Options]*textpipe.Pipeline
}

// New builds a filter. The dictionary is shared read-only; spacer may be nil
// to disable inter-script spacing entirely.
func New(dict *dictionary.Dictionary, spacer textpipe.SpacingFunc, log *slog.Logger) *Filter {
	if dict == nil {
		dict = dictionary.Empty()
	}
	f := &Filter{
		dict:      dict,
		spacer:    spacer,
		log:       log,
		pipelines: make(map[textpipe.Options]*textpipe.Pipeline),
	}
	// Precompile every stage combination so Apply never writes to the map.
	for _, nouns := range []bool{false, true} {
		for _, punct := range []bool{false, true} {
			for _, space := range []bool{false, true} {
				opts := textpipe.Options{ProperNouns: nouns, Punctuation: punct, Spacing: space}
				f.pipelines[opts] = textpipe.New(dict, spacer, opts, log)
			}
		}
	}
	return f
}

// Dictionary returns the dictionary the filter was built with.
func (f *Filter) Dictionary() *dictionary.Dictionary {
	return f.dict
}

// Gate reports why post would be skipped, or "" if it would be formatted.
func Gate(post *doctree.Post, flags Flags) SkipReason {
	if !flags.Enable {
		return SkipDisabled
	}
	if post.Layout != "post" {
		return SkipLayout
	}
	if post.Lang != "" && !isCJKLang(post.Lang) {
		return SkipLanguage
	}
	if strings.TrimSpace(post.Content) == "" {
		return SkipEmpty
	}
	return ""
}

func isCJKLang(lang string) bool {
	lang = strings.ToLower(lang)
	for _, prefix := range cjkLangs {
		if strings.HasPrefix(lang, prefix) {
			return true
		}
	}
	return false
}

// Apply formats post.Content in place. Skipped posts and posts that fail to
// parse are left untouched.
func (f *Filter) Apply(post *doctree.Post, flags Flags) (Report, error) {
	start := time.Now()
	title := post.Title
	if title == "" {
		title = "Untitled"
	}
	log := f.log.With("title", title)

	if reason := Gate(post, flags); reason != "" {
		log.Debug("skipping post", "reason", reason, "layout", post.Layout, "lang", post.Lang)
		return Report{Skipped: reason, Duration: time.Since(start)}, nil
	}
	log.Debug("processing post")

	var tree *doctree.Tree
	var err error
	if post.Standalone {
		tree, err = doctree.Parse(strings.NewReader(post.Content))
	} else {
		tree, err = doctree.ParseFragment(strings.NewReader(post.Content))
	}
	if err != nil {
		return Report{}, fmt.Errorf("format %q: %w", title, err)
	}

	pipe := f.pipelines[textpipe.Options{
		ProperNouns: flags.ProperNouns,
		Punctuation: flags.Punctuation,
		Spacing:     flags.Pangu,
	}]

	var rep Report
	for id := range tree.TextNodes() {
		rep.Total++
		index := rep.Total
		text := tree.Text(id)

		switch tree.Classify(id) {
		case doctree.ClassBlank:
			continue
		case doctree.ClassProtected:
			rep.Protected++
			log.Debug("protected text node", "index", index, "text", snippet(text))
			continue
		}

		rep.Eligible++
		res := pipe.Run(text)
		tree.SetText(id, res.Final)
		if res.Changed() {
			rep.Changed++
			log.Debug("formatted text node",
				"index", rep.Eligible,
				"original", snippet(res.Original),
				"proper_nouns", snippet(res.ProperNouns),
				"punctuation", snippet(res.Punctuation),
				"spacing", snippet(res.Spaced),
				"final", snippet(res.Final),
			)
		}
	}

	log.Info("text analysis complete",
		"eligible", rep.Eligible,
		"protected", rep.Protected,
		"total", rep.Total,
	)

	if flags.Pangu {
		rep.CodeSpacing = SpaceInlineCode(tree, log)
		if rep.CodeSpacing > 0 {
			log.Info("applied code tag spacing corrections", "count", rep.CodeSpacing)
		}
	}

	var out strings.Builder
	if err := tree.Render(&out); err != nil {
		return Report{}, fmt.Errorf("format %q: %w", title, err)
	}
	post.Content = out.String()
	rep.Duration = time.Since(start)
	return rep, nil
}

// snippet truncates s to snippetLen runes for logging.
func snippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:snippetLen]) + "..."
}

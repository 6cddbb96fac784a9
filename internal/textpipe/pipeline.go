package textpipe

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/dgallion1/copywrite/internal/dictionary"
)

// SpacingFunc inserts spaces between CJK and Latin runs. Implementations must
// be idempotent and must not rewrite punctuation.
type SpacingFunc func(string) string

// Options selects the optional stages. Cleanup always runs.
type Options struct {
	ProperNouns bool
	Punctuation bool
	Spacing     bool
}

// Result carries the text after every stage.
type Result struct {
	Original    string
	ProperNouns string
	Punctuation string
	Spaced      string
	Final       string
}

// Changed reports whether the pipeline altered the text.
func (r Result) Changed() bool {
	return r.Original != r.Final
}

// Pipeline rewrites eligible text. It is safe for concurrent use once built.
type Pipeline struct {
	opts        Options
	properNouns Rule
	punctuation Rule
	spacing     Rule
	cleanup     Rule
}

// New compiles the stages. Dictionary terms that fail to compile are logged
// and skipped.
func New(dict *dictionary.Dictionary, spacer SpacingFunc, opts Options, log *slog.Logger) *Pipeline {
	p := &Pipeline{
		opts:        opts,
		punctuation: Compose(Punctuation...),
		cleanup:     Compose(Cleanup...),
	}

	var nouns []Rule
	if opts.ProperNouns {
		for incorrect, correct := range dict.All() {
			rule, err := ProperNoun(incorrect, correct)
			if err != nil {
				log.Warn("skipping dictionary term", "term", incorrect, "error", err)
				continue
			}
			nouns = append(nouns, rule)
		}
	}
	if len(nouns) > 0 {
		p.properNouns = Compose(nouns...)
	}
	if opts.Spacing && spacer != nil {
		p.spacing = Rule(spacer)
	}
	return p
}

// ProperNoun builds a rule replacing every case-insensitive whole-word
// occurrence of incorrect with the literal correct.
func ProperNoun(incorrect, correct string) (Rule, error) {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(incorrect) + `\b`)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", incorrect, err)
	}
	return func(s string) string {
		return re.ReplaceAllLiteralString(s, correct)
	}, nil
}

// Run applies the stages in order.
func (p *Pipeline) Run(s string) Result {
	res := Result{Original: s}

	res.ProperNouns = s
	if p.properNouns != nil {
		res.ProperNouns = p.properNouns(res.ProperNouns)
	}

	res.Punctuation = res.ProperNouns
	if p.opts.Punctuation {
		res.Punctuation = p.punctuation(res.Punctuation)
	}

	res.Spaced = res.Punctuation
	if p.spacing != nil {
		res.Spaced = p.spacing(res.Spaced)
	}

	res.Final = p.cleanup(res.Spaced)
	return res
}

// Format is Run returning only the final text.
func (p *Pipeline) Format(s string) string {
	return p.Run(s).Final
}

// Package spacing inserts spaces between CJK text and half-width Latin
// letters, digits and symbols.
package spacing

import "regexp"

const cjk = `\x{2e80}-\x{2eff}\x{2f00}-\x{2fdf}\x{3040}-\x{309f}\x{30a0}-\x{30fa}\x{30fc}-\x{30ff}` +
	`\x{3100}-\x{312f}\x{3200}-\x{32ff}\x{3400}-\x{4dbf}\x{4e00}-\x{9fff}\x{f900}-\x{faff}` +
	`\x{ac00}-\x{d7af}`

// Half-width characters that take a space when they touch CJK text.
const (
	ansAfterCJK  = `A-Za-z\x{0370}-\x{03ff}0-9@\$%\^&\*\-\+\\=\|/\x{00a1}-\x{00ff}\x{2150}-\x{218f}\x{2700}-\x{27bf}`
	ansBeforeCJK = `A-Za-z\x{0370}-\x{03ff}0-9~\$%\^&\*\-\+\\=\|/!;:,\.\?\x{00a1}-\x{00ff}\x{2150}-\x{218f}\x{2700}-\x{27bf}`
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

var rules = []rule{
	{regexp.MustCompile(`([` + cjk + `])([` + ansAfterCJK + `])`), "$1 $2"},
	{regexp.MustCompile(`([` + ansBeforeCJK + `])([` + cjk + `])`), "$1 $2"},
	{regexp.MustCompile(`([` + cjk + `])([\(\[\{<])`), "$1 $2"},
	{regexp.MustCompile(`([\)\]\}>])([` + cjk + `])`), "$1 $2"},
}

// Text returns s with a single space inserted at every boundary between CJK
// and half-width text. Running it on its own output is a no-op, and it never
// replaces characters, only inserts spaces.
func Text(s string) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

package textpipe

import (
	"regexp"
	"strings"
)

// Rule is a single pure text rewrite.
type Rule func(string) string

// Compose chains rules left to right.
func Compose(rules ...Rule) Rule {
	return func(s string) string {
		for _, r := range rules {
			s = r(s)
		}
		return s
	}
}

// Replace builds a rule from a pattern and a regexp replacement template.
func Replace(pattern, repl string) Rule {
	re := regexp.MustCompile(pattern)
	return func(s string) string {
		return re.ReplaceAllString(s, repl)
	}
}

const (
	han = `[\x{4e00}-\x{9fa5}]`
	ws  = `[\s\v\p{Zs}\x{feff}\x{2028}\x{2029}]`
)

// hanAdjacent converts a half-width mark to its full-width form when a Han
// character sits on either side, swallowing the whitespace around the mark.
func hanAdjacent(mark, full string) Rule {
	m := regexp.QuoteMeta(mark)
	return Compose(
		Replace(`(`+han+`)`+ws+`*`+m+ws+`*`, "${1}"+full),
		Replace(ws+`*`+m+ws+`*(`+han+`)`, full+"${1}"),
	)
}

// surround converts every occurrence of any alternative to full, swallowing
// the whitespace around it.
func surround(full string, alternatives ...string) Rule {
	quoted := make([]string, len(alternatives))
	for i, a := range alternatives {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return Replace(ws+`*(?:`+strings.Join(quoted, "|")+`)`+ws+`*`, full)
}

// Punctuation rules. Marks next to a Han character become full-width; quotes,
// parentheses and ellipses are converted wherever they appear.
var (
	Comma       = hanAdjacent(",", "，")
	Question    = hanAdjacent("?", "？")
	Exclamation = hanAdjacent("!", "！")
	Colon       = hanAdjacent(":", "：")
	Semicolon   = hanAdjacent(";", "；")
	Ellipsis    = Replace(ws+`*\.{3,}`+ws+`*`, "……")
	// FullStop only looks behind the period.
	FullStop    = Replace(`(`+han+`)`+ws+`*\.`+ws+`*`, "${1}。")
	DoubleQuote = Compose(
		surround("「", "“", "&ldquo;"),
		surround("」", "”", "&rdquo;"),
	)
	SingleQuote = Compose(
		surround("『", "‘", "&lsquo;"),
		surround("』", "’", "&rsquo;"),
	)
	Parentheses = Compose(
		surround("（", "("),
		surround("）", ")"),
	)
)

// Punctuation holds the punctuation rules in application order.
var Punctuation = []Rule{
	Comma,
	Question,
	Exclamation,
	Colon,
	Semicolon,
	Ellipsis,
	FullStop,
	DoubleQuote,
	SingleQuote,
	Parentheses,
}

// Cleanup rules: drop whitespace before closing and after opening full-width
// marks, then collapse runs of spaces.
var (
	TrimBeforeClosing = Replace(ws+`+(」|』|）|，|。|？|！|：|；|……)`, "${1}")
	TrimAfterOpening  = Replace(`(「|『|（)`+ws+`+`, "${1}")
	CollapseSpaces    = Replace(` {2,}`, " ")
)

// Cleanup holds the whitespace rules that always run last.
var Cleanup = []Rule{
	TrimBeforeClosing,
	TrimAfterOpening,
	CollapseSpaces,
}

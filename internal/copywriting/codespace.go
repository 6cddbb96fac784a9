package copywriting

import (
	"log/slog"
	"regexp"

	"github.com/dgallion1/copywrite/internal/doctree"
)

var (
	endsWithHan   = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]$`)
	startsWithHan = regexp.MustCompile(`^[\x{4e00}-\x{9fa5}]`)
)

// isInlineCode reports whether id is a <code> element outside a <pre> block.
func isInlineCode(t *doctree.Tree, id doctree.NodeID) bool {
	return t.HasTag(id, "code") && !t.HasTag(t.Parent(id), "pre")
}

// SpaceInlineCode pads the text siblings of inline code elements that touch
// Han characters. It must run after every text node has been formatted and
// returns the number of spaces inserted.
func SpaceInlineCode(t *doctree.Tree, log *slog.Logger) int {
	var codes []doctree.NodeID
	for id := range t.Elements() {
		if isInlineCode(t, id) {
			codes = append(codes, id)
		}
	}

	count := 0
	for _, code := range codes {
		if prev := t.PrevSibling(code); t.IsText(prev) {
			text := t.Text(prev)
			if endsWithHan.MatchString(text) {
				t.SetText(prev, text+" ")
				count++
				log.Debug("added space before <code>", "before", text, "after", text+" ")
			}
		}
		if next := t.NextSibling(code); t.IsText(next) {
			text := t.Text(next)
			if startsWithHan.MatchString(text) {
				t.SetText(next, " "+text)
				count++
				log.Debug("added space after <code>", "before", text, "after", " "+text)
			}
		}
	}
	return count
}

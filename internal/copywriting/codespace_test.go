package copywriting

import (
	"strings"
	"testing"

	"github.com/dgallion1/copywrite/internal/doctree"
)

func parseFragment(t *testing.T, src string) *doctree.Tree {
	t.Helper()
	tree, err := doctree.ParseFragment(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestSpaceInlineCode(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{
			name:  "both sides",
			in:    "<p>请看<code>go test</code>的输出</p>",
			want:  "<p>请看 <code>go test</code> 的输出</p>",
			count: 2,
		},
		{
			name:  "latin neighbours",
			in:    "<p>run <code>go test</code> now</p>",
			want:  "<p>run <code>go test</code> now</p>",
			count: 0,
		},
		{
			name:  "already spaced",
			in:    "<p>请看 <code>x</code> 的输出</p>",
			want:  "<p>请看 <code>x</code> 的输出</p>",
			count: 0,
		},
		{
			name:  "element neighbours",
			in:    "<p>中文<code>a</code><code>b</code>文字</p>",
			want:  "<p>中文 <code>a</code><code>b</code> 文字</p>",
			count: 2,
		},
		{
			name:  "code block",
			in:    "<pre><code>x</code></pre>中文",
			want:  "<pre><code>x</code></pre>中文",
			count: 0,
		},
		{
			name:  "no siblings",
			in:    "<p><code>x</code></p>",
			want:  "<p><code>x</code></p>",
			count: 0,
		},
		{
			name:  "punctuation neighbour",
			in:    "<p>看，<code>x</code>。</p>",
			want:  "<p>看，<code>x</code>。</p>",
			count: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseFragment(t, tt.in)
			if n := SpaceInlineCode(tree, discard); n != tt.count {
				t.Errorf("expected %d insertions, got %d", tt.count, n)
			}
			if got := tree.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSpaceInlineCode_NoDoubleInsertion(t *testing.T) {
	tree := parseFragment(t, "<p>请看<code>x</code>的用法</p>")
	if n := SpaceInlineCode(tree, discard); n != 2 {
		t.Fatalf("expected 2 insertions, got %d", n)
	}
	if n := SpaceInlineCode(tree, discard); n != 0 {
		t.Errorf("expected rerun to insert nothing, got %d", n)
	}
	if got := tree.String(); got != "<p>请看 <code>x</code> 的用法</p>" {
		t.Errorf("unexpected output %q", got)
	}
}

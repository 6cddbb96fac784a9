package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_Document(t *testing.T) {
	input := `<!DOCTYPE html>
<html lang="ja">
<head>
  <title> 日本語の記事 </title>
  <meta name="layout" content="page">
</head>
<body><p>本文</p></body>
</html>`
	p := &HTMLParser{}
	post, err := p.Parse(strings.NewReader(input), "article.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Title != "日本語の記事" {
		t.Errorf("expected title %q, got %q", "日本語の記事", post.Title)
	}
	if post.Lang != "ja" {
		t.Errorf("expected lang %q, got %q", "ja", post.Lang)
	}
	if post.Layout != "page" {
		t.Errorf("expected layout %q, got %q", "page", post.Layout)
	}
	if !post.Standalone {
		t.Error("expected full document to be standalone")
	}
	if post.Content != input {
		t.Error("expected content to be the untouched source")
	}
}

func TestHTMLParser_Fragment(t *testing.T) {
	input := `<p>你好,世界</p><meta name="lang" content="zh-TW">`
	p := &HTMLParser{}
	post, err := p.Parse(strings.NewReader(input), "dir/fragment.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Standalone {
		t.Error("expected fragment not to be standalone")
	}
	if post.Title != "fragment" {
		t.Errorf("expected title from filename, got %q", post.Title)
	}
	if post.Layout != "post" {
		t.Errorf("expected default layout, got %q", post.Layout)
	}
	if post.Lang != "zh-TW" {
		t.Errorf("expected lang from meta, got %q", post.Lang)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"post.md", false},
		{"post.MARKDOWN", false},
		{"page.html", false},
		{"page.htm", false},
		{"notes.txt", false},
		{"report.pdf", true},
		{"noext", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): expected error=%v, got %v", tt.filename, tt.wantErr, err)
		}
		if IsSupportedExtension(tt.filename) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q) disagrees with ForFile", tt.filename)
		}
	}
}

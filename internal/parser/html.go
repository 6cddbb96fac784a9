package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/copywrite/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles pre-rendered HTML files, either full documents or
// body fragments.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Post, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	post := &doctree.Post{
		Title:      stem(filename),
		Layout:     DefaultLayout,
		Content:    string(src),
		Standalone: isStandalone(src),
		Source:     filename,
	}

	// Extract title from <title> tag if present.
	if title := findTitle(doc); title != "" {
		post.Title = title
	}
	if root := findElement(doc, "html"); root != nil {
		post.Lang = attr(root, "lang")
	}
	if layout := findMeta(doc, "layout"); layout != "" {
		post.Layout = layout
	}
	if post.Lang == "" {
		post.Lang = findMeta(doc, "lang")
	}

	return post, nil
}

// isStandalone reports whether src is a full document rather than a fragment.
func isStandalone(src []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(src))
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<!doctype")) || bytes.Contains(head, []byte("<html"))
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if t := findElement(n, "title"); t != nil {
		return textContent(t)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findMeta returns the content of the first <meta name=...> with the given
// name.
func findMeta(n *html.Node, name string) string {
	if n.Type == html.ElementNode && n.Data == "meta" && strings.EqualFold(attr(n, "name"), name) {
		return attr(n, "content")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v := findMeta(c, name); v != "" {
			return v
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

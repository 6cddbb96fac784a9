package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/copywrite/internal/doctree"
	"github.com/pelletier/go-toml/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// MarkdownParser renders Markdown posts with goldmark. YAML (---) and TOML
// (+++) front matter supply the post metadata.
type MarkdownParser struct{}

// FrontMatter is the subset of post metadata the filter needs.
type FrontMatter struct {
	Title  string `yaml:"title" toml:"title"`
	Layout string `yaml:"layout" toml:"layout"`
	Lang   string `yaml:"lang" toml:"lang"`
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// Posts routinely embed raw HTML.
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Post, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fm, body, err := ParseFrontMatter(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	post := &doctree.Post{
		Title:   fm.Title,
		Layout:  fm.Layout,
		Lang:    fm.Lang,
		Content: buf.String(),
		Source:  filename,
	}
	if post.Title == "" {
		post.Title = stem(filename)
	}
	if post.Layout == "" {
		post.Layout = DefaultLayout
	}
	return post, nil
}

// ParseFrontMatter splits a leading front matter block off src and decodes
// it. Sources without front matter return the zero FrontMatter and src.
func ParseFrontMatter(src []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter

	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	line, rest, _ := bytes.Cut(src, []byte("\n"))
	delim := string(bytes.TrimRight(line, " \t\r"))
	if delim != "---" && delim != "+++" {
		return fm, src, nil
	}

	var block []byte
	for len(rest) > 0 {
		var l []byte
		l, rest, _ = bytes.Cut(rest, []byte("\n"))
		if string(bytes.TrimRight(l, " \t\r")) == delim {
			switch delim {
			case "---":
				if err := yaml.Unmarshal(block, &fm); err != nil {
					return fm, nil, fmt.Errorf("parse yaml front matter: %w", err)
				}
			case "+++":
				if err := toml.Unmarshal(block, &fm); err != nil {
					return fm, nil, fmt.Errorf("parse toml front matter: %w", err)
				}
			}
			return fm, rest, nil
		}
		block = append(block, l...)
		block = append(block, '\n')
	}

	// No closing delimiter: treat the whole file as body.
	return FrontMatter{}, src, nil
}

package parser

import (
	"bufio"
	"html"
	"io"
	"strings"

	"github.com/dgallion1/copywrite/internal/doctree"
)

// TextParser handles plain text files. Blank-line separated paragraphs
// become <p> elements.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Post, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var content strings.Builder
	for i, para := range paragraphs {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString("<p>")
		content.WriteString(html.EscapeString(para))
		content.WriteString("</p>")
	}

	return &doctree.Post{
		Title:   stem(filename),
		Layout:  DefaultLayout,
		Content: content.String(),
		Source:  filename,
	}, nil
}

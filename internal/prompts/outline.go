package prompts

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// examplesHeading is the section whose subsections are worked examples.
const examplesHeading = "Examples"

// Heading is a markdown heading found in a template.
type Heading struct {
	Level int
	Title string
}

// Sections returns the template's markdown headings in document order.
// Lines inside fenced code blocks are not headings, so comments in the
// example scripts never show up here.
func (t Template) Sections() []Heading {
	src := []byte(t.text)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var out []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		out = append(out, Heading{
			Level: h.Level,
			Title: strings.TrimSpace(string(h.Text(src))),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// Examples returns the titles of the worked examples, in order. Templates
// without an examples section return nil.
func (t Template) Examples() []string {
	var (
		out    []string
		inside bool
		level  int
	)
	for _, h := range t.Sections() {
		switch {
		case h.Title == examplesHeading:
			inside, level = true, h.Level
		case inside && h.Level <= level:
			inside = false
		case inside && h.Level == level+1:
			out = append(out, h.Title)
		}
	}
	return out
}

// HasExamples reports whether the template embeds worked examples.
func (t Template) HasExamples() bool {
	return len(t.Examples()) > 0
}

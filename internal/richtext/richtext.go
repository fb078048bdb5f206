// Package richtext turns the HTML a task detail may carry into something a terminal can
// show: sanitized HTML, Markdown for the preview pane, or a single plain-text line for
// table cells.
package richtext

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func ugc() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// Sanitize strips scripts, event handlers and unsafe URLs from s.
func Sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return ugc().Sanitize(s)
}

func parse(s string) []*html.Node {
	s = Sanitize(s)
	if s == "" {
		return nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return []*html.Node{{Type: html.TextNode, Data: s}}
	}
	return nodes
}

// PlainText collapses s into one line of text with tags removed and entities decoded.
func PlainText(s string) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Br || isBlock(n.DataAtom) {
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			b.WriteByte(' ')
		}
	}
	for _, n := range parse(s) {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Tr, atom.Td, atom.Th:
		return true
	}
	return false
}

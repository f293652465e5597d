// Package textnorm turns the HTML that TestLink's rich text editor stores
// into plain text that survives a CSV import.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var (
	stripper   = strings.NewReplacer("\n", "", "\t", "")
	spaceRun   = regexp.MustCompile(`[ \f\r\v\x{00a0}]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Normalize removes embedded newlines and tabs and renders any markup as
// text. Lists, emphasis, links and line breaks keep a light markdown form.
func Normalize(s string) string {
	s = stripper.Replace(s)
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// x/net/html only fails on reader errors
		return s
	}

	r := &renderer{}
	r.walk(doc)
	return r.finish()
}

type list struct {
	ordered bool
	n       int
}

type renderer struct {
	b     strings.Builder
	lists []list
}

func (r *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
		return
	case html.ElementNode:
		r.element(n)
		return
	}
	r.children(n)
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func (r *renderer) element(n *html.Node) {
	switch n.Data {
	case "script", "style", "head", "title":
		return

	case "br":
		r.b.WriteString("\n")

	case "p", "div", "blockquote", "pre", "table", "section", "article":
		r.block()
		r.children(n)
		r.block()

	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(n.Data[1:])
		r.block()
		r.b.WriteString(strings.Repeat("#", level) + " ")
		r.children(n)
		r.block()

	case "ul", "ol":
		if len(r.lists) == 0 {
			r.block()
		}
		r.lists = append(r.lists, list{ordered: n.Data == "ol"})
		r.children(n)
		r.lists = r.lists[:len(r.lists)-1]
		if len(r.lists) == 0 {
			r.block()
		}

	case "li":
		r.line()
		r.b.WriteString(r.marker())
		r.children(n)
		r.line()

	case "tr":
		r.line()
		r.children(n)
		r.line()

	case "td", "th":
		r.children(n)
		r.b.WriteString("  ")

	case "strong", "b":
		r.wrap(n, "**")

	case "em", "i":
		r.wrap(n, "_")

	case "code":
		r.wrap(n, "`")

	case "a":
		r.link(n)

	case "img":
		r.text(attr(n, "alt"))

	default:
		r.children(n)
	}
}

func (r *renderer) wrap(n *html.Node, mark string) {
	r.b.WriteString(mark)
	r.children(n)
	r.b.WriteString(mark)
}

func (r *renderer) link(n *html.Node) {
	href := attr(n, "href")
	if href == "" || strings.HasPrefix(href, "#") {
		r.children(n)
		return
	}

	inner := &renderer{lists: r.lists}
	inner.children(n)
	label := strings.TrimSpace(inner.b.String())
	if label == "" || label == href {
		r.text(href)
		return
	}
	r.b.WriteString("[" + label + "](" + href + ")")
}

func (r *renderer) marker() string {
	depth := len(r.lists)
	if depth == 0 {
		return "* "
	}
	cur := &r.lists[depth-1]
	indent := strings.Repeat("  ", depth-1)
	if cur.ordered {
		cur.n++
		return indent + strconv.Itoa(cur.n) + ". "
	}
	return indent + "* "
}

func (r *renderer) text(s string) {
	s = spaceRun.ReplaceAllString(s, " ")
	if s == "" {
		return
	}
	if r.atLineStart() {
		s = strings.TrimLeft(s, " ")
	}
	r.b.WriteString(s)
}

func (r *renderer) atLineStart() bool {
	out := r.b.String()
	return out == "" || strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "* ") || strings.HasSuffix(out, ". ")
}

// line ends the current line unless already at the start of one.
func (r *renderer) line() {
	out := r.b.String()
	if out != "" && !strings.HasSuffix(out, "\n") {
		r.b.WriteString("\n")
	}
}

// block separates block level content by one blank line.
func (r *renderer) block() {
	out := r.b.String()
	switch {
	case out == "", strings.HasSuffix(out, "\n\n"):
	case strings.HasSuffix(out, "\n"):
		r.b.WriteString("\n")
	default:
		r.b.WriteString("\n\n")
	}
}

func (r *renderer) finish() string {
	lines := strings.Split(r.b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	out := strings.Join(lines, "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

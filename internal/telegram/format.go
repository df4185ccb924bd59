package telegram

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))

	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// FormatHTML converts model Markdown into the HTML subset accepted by
// Telegram's parse_mode=HTML. Headings become bold lines and lists become
// bulleted or numbered lines, since Telegram has no tags for either.
func FormatHTML(md string) string {
	src := []byte(md)
	doc := markdown.Parser().Parse(text.NewReader(src))

	w := &htmlWriter{src: src}
	_ = ast.Walk(doc, w.visit)

	out := strings.TrimSpace(w.buf.String())
	if out == "" && strings.TrimSpace(md) != "" {
		return textEscaper.Replace(strings.TrimSpace(md))
	}
	return out
}

type htmlWriter struct {
	src []byte
	buf bytes.Buffer
}

func (w *htmlWriter) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.buf.WriteString("<b>")
		} else {
			w.buf.WriteString("</b>")
			w.endBlock(2)
		}

	case *ast.Paragraph:
		if !entering {
			if _, inItem := n.Parent().(*ast.ListItem); inItem {
				w.endBlock(1)
			} else {
				w.endBlock(2)
			}
		}

	case *ast.TextBlock:
		if !entering {
			w.endBlock(1)
		}

	case *ast.Text:
		if entering {
			w.buf.WriteString(textEscaper.Replace(string(node.Segment.Value(w.src))))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.buf.WriteByte('\n')
			}
		}

	case *ast.String:
		if entering {
			w.buf.WriteString(textEscaper.Replace(string(node.Value)))
		}

	case *ast.Emphasis:
		tag := "i"
		if node.Level >= 2 {
			tag = "b"
		}
		w.tag(tag, entering)

	case *east.Strikethrough:
		w.tag("s", entering)

	case *ast.CodeSpan:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.buf.WriteString("<code>")
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				w.buf.WriteString(textEscaper.Replace(string(t.Segment.Value(w.src))))
			case *ast.String:
				w.buf.WriteString(textEscaper.Replace(string(t.Value)))
			}
		}
		w.buf.WriteString("</code>")
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		if lang := node.Language(w.src); len(lang) > 0 {
			w.buf.WriteString(`<pre><code class="language-` + attrEscaper.Replace(string(lang)) + `">`)
		} else {
			w.buf.WriteString("<pre><code>")
		}
		w.writeLines(n)
		w.buf.WriteString("</code></pre>")
		w.endBlock(2)
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.buf.WriteString("<pre><code>")
		w.writeLines(n)
		w.buf.WriteString("</code></pre>")
		w.endBlock(2)
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		if entering {
			w.buf.WriteString(`<a href="` + attrEscaper.Replace(string(node.Destination)) + `">`)
		} else {
			w.buf.WriteString("</a>")
		}

	case *ast.Image:
		if entering {
			w.buf.WriteString(`<a href="` + attrEscaper.Replace(string(node.Destination)) + `">`)
		} else {
			w.buf.WriteString("</a>")
		}

	case *ast.AutoLink:
		if !entering {
			return ast.WalkContinue, nil
		}
		url := string(node.URL(w.src))
		w.buf.WriteString(`<a href="` + attrEscaper.Replace(url) + `">` + textEscaper.Replace(string(node.Label(w.src))) + "</a>")
		return ast.WalkSkipChildren, nil

	case *ast.Blockquote:
		if entering {
			w.buf.WriteString("<blockquote>")
		} else {
			w.trimNewlines()
			w.buf.WriteString("</blockquote>")
			w.endBlock(2)
		}

	case *ast.List:
		if !entering {
			if _, nested := n.Parent().(*ast.ListItem); nested {
				w.endBlock(1)
			} else {
				w.endBlock(2)
			}
		}

	case *ast.ListItem:
		if entering {
			w.buf.WriteString(strings.Repeat("  ", listDepth(n)))
			w.buf.WriteString(itemMarker(node))
		} else {
			w.endBlock(1)
		}

	case *ast.ThematicBreak:
		if entering {
			w.buf.WriteString("----")
			w.endBlock(2)
		}

	case *ast.HTMLBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.writeLines(n)
		if node.HasClosure() {
			w.buf.WriteString(textEscaper.Replace(string(node.ClosureLine.Value(w.src))))
		}
		w.endBlock(2)
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if !entering {
			return ast.WalkContinue, nil
		}
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			w.buf.WriteString(textEscaper.Replace(string(seg.Value(w.src))))
		}
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

func (w *htmlWriter) tag(name string, entering bool) {
	if entering {
		w.buf.WriteString("<" + name + ">")
	} else {
		w.buf.WriteString("</" + name + ">")
	}
}

// writeLines writes the raw lines of a block, escaped, without the final newline
func (w *htmlWriter) writeLines(n ast.Node) {
	var body strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		body.Write(seg.Value(w.src))
	}
	w.buf.WriteString(textEscaper.Replace(strings.TrimRight(body.String(), "\n")))
}

func (w *htmlWriter) trimNewlines() {
	b := w.buf.Bytes()
	end := len(b)
	for end > 0 && b[end-1] == '\n' {
		end--
	}
	w.buf.Truncate(end)
}

// endBlock leaves exactly n newlines at the end of the output
func (w *htmlWriter) endBlock(n int) {
	if w.buf.Len() == 0 {
		return
	}
	w.trimNewlines()
	w.buf.WriteString(strings.Repeat("\n", n))
}

func listDepth(n ast.Node) int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*ast.List); ok {
			depth++
		}
	}
	if depth > 0 {
		depth--
	}
	return depth
}

func itemMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}
	idx := 0
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		idx++
	}
	return strconv.Itoa(list.Start+idx) + ". "
}

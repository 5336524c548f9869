// Package markdown renders the streaming analysis preview. The input
// is the cumulative text seen so far, re-rendered from scratch on every
// delta, so the renderer must be deterministic and must tolerate
// markup that is still incomplete (an open fence, a dangling bold
// marker) without ever failing.
//
// The recognized dialect is deliberately small and applies in fixed
// precedence: fenced code blocks shield their content from all other
// rules, then inline code spans, headings (levels 1-3), bold, italic,
// list items, and finally blank-line paragraph splitting. All text is
// HTML-escaped before any markup substitution.
package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
)

// Render converts text to HTML. Pure: the same input always yields the
// same output, and a truncated tail renders as literal text rather
// than an error.
func Render(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(html.EscapeString(text), "\n")

	var (
		out  strings.Builder
		para []string
		list []string
	)
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		out.WriteString("<p>" + renderInline(strings.Join(para, "\n")) + "</p>")
		para = nil
	}
	flushList := func() {
		if len(list) == 0 {
			return
		}
		out.WriteString("<ul>")
		for _, item := range list {
			out.WriteString("<li>" + renderInline(item) + "</li>")
		}
		out.WriteString("</ul>")
		list = nil
	}
	flush := func() {
		flushPara()
		flushList()
	}

	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "```"):
			flush()
			i++
			start := i
			for i < len(lines) && !strings.HasPrefix(lines[i], "```") {
				i++
			}
			code := strings.Join(lines[start:i], "\n")
			if i < len(lines) {
				// Closed fence: the source had a newline before it.
				if code != "" {
					code += "\n"
				}
				i++
			}
			out.WriteString("<pre><code>" + code + "</code></pre>")
		case headingLevel(line) > 0:
			flush()
			lvl := headingLevel(line)
			out.WriteString(fmt.Sprintf("<h%d>%s</h%d>", lvl, renderInline(line[lvl+1:]), lvl))
			i++
		case strings.HasPrefix(line, "- ") && line != "- ":
			flushPara()
			list = append(list, line[2:])
			i++
		case orderedItem(line) != "":
			flush()
			out.WriteString("<li>" + renderInline(orderedItem(line)) + "</li>")
			i++
		case strings.TrimSpace(line) == "":
			flush()
			i++
		default:
			flushList()
			para = append(para, line)
			i++
		}
	}
	flush()
	return out.String()
}

// headingLevel returns 1-3 for a heading line, 0 otherwise. Deeper
// nesting is left as plain text.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n < 1 || n > 3 || n >= len(line)-1 || line[n] != ' ' {
		return 0
	}
	return n
}

// orderedItem returns the item text of an "N. text" line, or "".
func orderedItem(line string) string {
	n := 0
	for n < len(line) && line[n] >= '0' && line[n] <= '9' {
		n++
	}
	if n == 0 || n+2 >= len(line) || line[n] != '.' || line[n+1] != ' ' {
		return ""
	}
	return line[n+2:]
}

// renderInline applies code spans, then bold, then italic to escaped
// text. Code span content is taken literally; an unpaired backtick or
// asterisk stays in the output as-is.
func renderInline(s string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '`')
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i+1:], '`')
		if j < 0 {
			break
		}
		j += i + 1
		if j == i+1 {
			// Empty span: both backticks are literal.
			b.WriteString(renderEmphasis(s[:j+1]))
			s = s[j+1:]
			continue
		}
		b.WriteString(renderEmphasis(s[:i]))
		b.WriteString("<code>" + s[i+1:j] + "</code>")
		s = s[j+1:]
	}
	b.WriteString(renderEmphasis(s))
	return b.String()
}

func renderEmphasis(s string) string {
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	return italicRe.ReplaceAllString(s, "<em>$1</em>")
}

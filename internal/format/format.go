// Package format post-processes raw model output into display-ready text:
// paragraph splitting, bullet and bold markers, and hyperlink annotation.
package format

import (
	"regexp"
	"strings"
)

const bullet = "• "

// Conservative URL matcher: an http(s) token, optionally wrapped in square
// brackets, optionally followed by a parenthesized duplicate of itself (a
// pattern some models emit when asked for sources).
var urlPattern = regexp.MustCompile(`\[?(https?://[^\s\[\]()<>"]+)\]?(?:\((https?://[^\s()]+)\))?`)

// Response reformats raw upstream text for client rendering. It is a pure
// function: the same input always yields the same output.
func Response(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	var parts []string
	if strings.Contains(text, "\n\n") {
		parts = strings.Split(text, "\n\n")
	} else {
		parts = strings.Split(text, "\n")
	}

	var paragraphs []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, paragraph(p))
	}
	return strings.Join(paragraphs, "\n\n")
}

func paragraph(p string) string {
	lines := strings.Split(p, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		line := strings.TrimSpace(l)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "- "):
			// Content after the 2-character marker is kept verbatim.
			out = append(out, bullet+linkify(line[2:]))
		case len(line) > 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			out = append(out, linkify(strings.TrimSpace(line[2:len(line)-2])))
		default:
			out = append(out, linkify(line))
		}
	}
	return strings.Join(out, "\n")
}

func linkify(line string) string {
	return urlPattern.ReplaceAllString(line, `<a href="$1" target="_blank">$1</a>`)
}

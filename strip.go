package htmlutils

import (
	"io"
	"regexp"
	"strings"
)

// strippedTags are elements whose direct text content is not part of
// the readable text of a document.
var strippedTags = set("script", "style", "head", "iframe", "frameset", "frame", "object", "base")

var whitespaceRegexp = regexp.MustCompile(`[\s\x0B\p{Z}\x{FEFF}]+`)

// StripHTML removes all tags from htmlStr and returns its text content.
// Entities are decoded and runs of whitespace are collapsed into a single
// space. The result is meant to be plain text, but since decoding may
// produce markup, every "<" is encoded again as "&lt;".
func StripHTML(htmlStr string) string {
	out, _ := StripHTMLReader(strings.NewReader(htmlStr))
	return out
}

// StripHTMLReader is like StripHTML but reads the HTML from r.
func StripHTMLReader(r io.Reader) (string, error) {
	s := &stripper{}
	if err := newTagParser(r, s).Process(); err != nil {
		return "", err
	}

	text := whitespaceRegexp.ReplaceAllString(s.buf.String(), " ")
	return strings.ReplaceAll(text, "<", "&lt;"), nil
}

type stripper struct {
	buf      strings.Builder
	tagStack []string
}

func (s *stripper) currentTag() string {
	if len(s.tagStack) == 0 {
		return ""
	}
	return s.tagStack[len(s.tagStack)-1]
}

func (s *stripper) handleStartTag(name string, _ *Attributes) {
	s.tagStack = append(s.tagStack, name)
}

func (s *stripper) handleText(text string) {
	if strippedTags[s.currentTag()] {
		return
	}
	s.buf.WriteString(text)
}

func (s *stripper) handleEndTag(name string) {
	if s.currentTag() == name {
		s.tagStack = s.tagStack[:len(s.tagStack)-1]
	}
}

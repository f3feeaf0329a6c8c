package htmlutils

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"mvdan.cc/xurls/v2"
)

// NoMdConvClass is the class added to every emitted tag when
// SanitizeOptions.AddNoMdConvClass is set. A later HTML-to-Markdown pass
// uses it to tell raw HTML kept by the user apart from HTML produced by
// the Markdown renderer.
const NoMdConvClass = "jop-noMdConv"

// SanitizeOptions controls optional behaviour of SanitizeHTML. The zero
// value (and a nil pointer) disables every option.
type SanitizeOptions struct {
	// AddNoMdConvClass appends NoMdConvClass to the class attribute of
	// every emitted tag. The class is never added twice.
	AddNoMdConvClass bool

	// Linkify converts plain-text http and https URLs found outside of
	// any <a> element into links.
	Linkify bool
}

// disallowedTags are dropped together with their whole subtree.
//
// "base" can change the URL relative resources are loaded from. "link"
// and "meta" can be used to escape the parser and load scripts. Form
// controls have no business in a rendered note.
var disallowedTags = set(
	"script", "iframe", "frameset", "frame", "object", "base",
	"embed", "link", "meta", "noscript", "button", "form",
	"input", "select", "textarea", "option", "optgroup",
)

// acceptedURLPrefixes are the only href prefixes kept on anchors.
var acceptedURLPrefixes = []string{"https://", "http://", "mailto://"}

// noLinkTags are elements whose text must not be linkified: an existing
// anchor, or elements whose content is read back as text.
var noLinkTags = set("a", "title", "textarea", "script", "style", "iframe")

// linkRegexp matches URLs with a scheme inside plain text.
var linkRegexp = xurls.Strict()

// IsSelfClosingTag reports whether tagName is a void element, which is
// rendered as "<tag/>" and never gets a closing tag. The check is case
// insensitive.
func IsSelfClosingTag(tagName string) bool {
	return voidElements[strings.ToLower(tagName)]
}

// SanitizeHTML returns a copy of htmlStr that is safe to embed in a
// trusted page. Scripts and other active elements are removed along with
// everything they contain, inline event handlers are stripped, anchors
// may only point to http, https or mailto URLs, and all text is
// re-encoded. Everything else, including unknown tags and attributes, is
// preserved.
//
// Malformed input is never rejected; the tokenizer recovers the same way
// a browser would. If opts is nil, all options are off.
func SanitizeHTML(htmlStr string, opts *SanitizeOptions) string {
	// Reading from a string cannot fail.
	out, _ := SanitizeHTMLReader(strings.NewReader(htmlStr), opts)
	return out
}

// SanitizeHTMLReader reads HTML from r and returns the sanitized HTML
// string. The only possible error is one returned by r.
func SanitizeHTMLReader(r io.Reader, opts *SanitizeOptions) (string, error) {
	s := &sanitizer{}
	if opts != nil {
		s.opts = *opts
	}

	if err := newTagParser(r, s).Process(); err != nil {
		return "", err
	}
	return s.buf.String(), nil
}

// sanitizer holds the state of a single SanitizeHTML call.
type sanitizer struct {
	opts     SanitizeOptions
	buf      strings.Builder
	tagStack []string

	// When we are inside a disallowed tag, every tag within it is
	// skipped too, including nested disallowed tags. Skipping only the
	// disallowed tag itself lets crafted nesting smuggle markup out.
	disallowedDepth int
}

func (s *sanitizer) currentTag() string {
	if len(s.tagStack) == 0 {
		return ""
	}
	return s.tagStack[len(s.tagStack)-1]
}

func (s *sanitizer) handleStartTag(name string, attrs *Attributes) {
	s.tagStack = append(s.tagStack, name)

	if disallowedTags[name] {
		s.disallowedDepth++
		return
	}
	if s.disallowedDepth > 0 {
		return
	}

	attrs = attrs.Clone()

	// Anything starting with "on" is treated as an event handler. The
	// list of events is open ended so a deny list of known ones would
	// leak. Harmless attributes that happen to start with "on" are lost.
	attrs.DeleteFunc(func(key, _ string) bool {
		return isEventHandler(key)
	})

	if name == "a" {
		if href, ok := attrs.Get("href"); ok && !isAcceptedURL(href) {
			attrs.Set("href", "#")
		}

		// This marker makes a link open inside the application, so it
		// must only ever be set by the Markdown renderer.
		attrs.Delete("data-from-md")

		// Some renderers swallow the content following an anchor that
		// has no href.
		if !attrs.Has("href") {
			attrs.Set("href", "#")
		}
	}

	s.writeStartTag(name, attrs)
}

func (s *sanitizer) handleText(text string) {
	if s.disallowedDepth > 0 {
		return
	}

	if s.currentTag() == "style" {
		// CSS breaks when entity-encoded, and it cannot run script, so
		// it is kept as-is. "<" is still encoded so the content cannot
		// close the style element and open a new one.
		s.buf.WriteString(strings.ReplaceAll(text, "<", "&lt;"))
		return
	}

	if s.opts.Linkify && !slices.ContainsFunc(s.tagStack, isNoLinkTag) {
		s.writeLinkedText(text)
		return
	}

	s.buf.WriteString(html.EscapeString(text))
}

func (s *sanitizer) handleEndTag(name string) {
	current := s.currentTag()
	if strings.EqualFold(current, name) {
		s.tagStack = s.tagStack[:len(s.tagStack)-1]
	}

	if disallowedTags[current] {
		if s.disallowedDepth > 0 {
			s.disallowedDepth--
		}
		return
	}
	if s.disallowedDepth > 0 {
		return
	}
	if IsSelfClosingTag(name) {
		return
	}

	s.buf.WriteString("</")
	s.buf.WriteString(name)
	s.buf.WriteByte('>')
}

func (s *sanitizer) writeStartTag(name string, attrs *Attributes) {
	if s.opts.AddNoMdConvClass {
		addClass(attrs, NoMdConvClass)
	}

	s.buf.WriteByte('<')
	s.buf.WriteString(name)
	if attrHTML := AttributesHTML(attrs); attrHTML != "" {
		s.buf.WriteByte(' ')
		s.buf.WriteString(attrHTML)
	}
	if IsSelfClosingTag(name) {
		s.buf.WriteString("/>")
	} else {
		s.buf.WriteByte('>')
	}
}

// writeLinkedText writes text with every acceptable URL turned into an
// anchor.
func (s *sanitizer) writeLinkedText(text string) {
	last := 0
	for _, m := range linkRegexp.FindAllStringIndex(text, -1) {
		rawURL := text[m[0]:m[1]]
		if !isAcceptedURL(rawURL) {
			continue
		}
		s.buf.WriteString(html.EscapeString(text[last:m[0]]))
		s.writeStartTag("a", NewAttributes("href", rawURL))
		s.buf.WriteString(html.EscapeString(rawURL))
		s.buf.WriteString("</a>")
		last = m[1]
	}
	s.buf.WriteString(html.EscapeString(text[last:]))
}

// --- helpers ---------------------------------------------------------

func isNoLinkTag(tag string) bool {
	return noLinkTags[tag]
}

// isEventHandler reports whether the attribute name looks like an inline
// event handler. A name that is exactly "on" is not one.
func isEventHandler(name string) bool {
	return len(name) > 2 && strings.HasPrefix(strings.ToLower(name), "on")
}

func isAcceptedURL(u string) bool {
	u = strings.ToLower(u)
	for _, prefix := range acceptedURLPrefixes {
		if strings.HasPrefix(u, prefix) {
			return true
		}
	}
	return false
}

// addClass appends class to the class attribute unless it already holds
// that token.
func addClass(attrs *Attributes, class string) {
	current, _ := attrs.Get("class")
	if slices.Contains(strings.Fields(current), class) {
		return
	}
	attrs.Set("class", strings.TrimSpace(current+" "+class))
}

package htmlutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ActionType selects what ProcessImageTags and ProcessAnchorTags do with
// a matched element.
type ActionType string

const (
	// ActionReplaceElement replaces the whole matched tag with Action.HTML.
	ActionReplaceElement ActionType = "replaceElement"
	// ActionReplaceSource replaces the src (or href) value with Action.URL.
	ActionReplaceSource ActionType = "replaceSource"
	// ActionSetAttributes replaces the src (or href) attribute with the
	// serialized Action.Attrs. Attributes before and after it are kept.
	ActionSetAttributes ActionType = "setAttributes"
)

// Action is returned by a RewriteFunc to describe how a matched element
// must be rewritten.
type Action struct {
	Type ActionType

	// HTML is the replacement markup for ActionReplaceElement.
	HTML string

	// URL is the new src/href value for ActionReplaceSource. It is
	// inserted verbatim, so it must already be attribute-safe.
	URL string

	// Attrs is the mapping rendered by ActionSetAttributes.
	Attrs *Attributes
}

// RewriteFunc receives the src of an <img> or the href of an <a> and
// returns how the element should be rewritten. A nil Action leaves the
// element untouched. A non-nil error aborts the rewrite.
type RewriteFunc func(url string) (*Action, error)

// ErrInvalidAction is matched (with errors.Is) by every
// InvalidActionError.
var ErrInvalidAction = errors.New("invalid action")

// InvalidActionError is returned when a RewriteFunc returns an Action
// with an unknown Type.
type InvalidActionError struct {
	Type ActionType
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action: %q", string(e.Type))
}

// Is makes errors.Is(err, ErrInvalidAction) work.
func (e *InvalidActionError) Is(target error) bool {
	return target == ErrInvalidAction
}

// [\s\S] instead of . so that attributes may span lines. The tag name
// must be followed by whitespace so that <abbr> or <article> never match.
var (
	imageRegexp  = regexp.MustCompile(`(?i)<img(\s[\s\S]*?)src=["']([\s\S]*?)["']([\s\S]*?)>`)
	anchorRegexp = regexp.MustCompile(`(?i)<a(\s[\s\S]*?)href=["']([\s\S]*?)["']([\s\S]*?)>`)
)

// ProcessImageTags calls fn with the src of every <img> tag in htmlStr
// and applies the returned Action.
//
// Tags are found with a regular expression, not a parser. This is only
// correct for well formed, non-overlapping tags and it does not look
// inside attribute values for a closing ">". It is meant for HTML this
// application produced itself, not for untrusted input; use SanitizeHTML
// for that.
func ProcessImageTags(htmlStr string, fn RewriteFunc) (string, error) {
	return processTags(htmlStr, imageRegexp, "img", "src", fn)
}

// ProcessAnchorTags is the <a>/href counterpart of ProcessImageTags and
// has the same limitations.
func ProcessAnchorTags(htmlStr string, fn RewriteFunc) (string, error) {
	return processTags(htmlStr, anchorRegexp, "a", "href", fn)
}

func processTags(htmlStr string, re *regexp.Regexp, tag, attr string, fn RewriteFunc) (string, error) {
	if htmlStr == "" {
		return "", nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(htmlStr, -1) {
		before := htmlStr[m[2]:m[3]]
		url := htmlStr[m[4]:m[5]]
		after := htmlStr[m[6]:m[7]]

		action, err := fn(url)
		if err != nil {
			return "", fmt.Errorf("rewriting <%s %s=%q>: %w", tag, attr, url, err)
		}

		sb.WriteString(htmlStr[last:m[0]])
		last = m[1]

		if action == nil {
			sb.WriteString(htmlStr[m[0]:m[1]])
			continue
		}

		switch action.Type {
		case ActionReplaceElement:
			sb.WriteString(action.HTML)
		case ActionReplaceSource:
			fmt.Fprintf(&sb, `<%s%s%s="%s"%s>`, tag, before, attr, action.URL, after)
		case ActionSetAttributes:
			fmt.Fprintf(&sb, `<%s%s%s%s>`, tag, before, AttributesHTML(action.Attrs), after)
		default:
			return "", &InvalidActionError{Type: action.Type}
		}
	}
	sb.WriteString(htmlStr[last:])

	return sb.String(), nil
}

package htmlutils

import (
	"io"

	"golang.org/x/net/html"
)

// tagHandler receives the events produced by tagParser, in document
// order.
type tagHandler interface {
	// handleStartTag is called for every opened element. Tag and
	// attribute names are lowercase, attribute values are decoded.
	handleStartTag(name string, attrs *Attributes)
	// handleText is called with entity-decoded text. The content of raw
	// text elements (script, style, ...) is passed as-is.
	handleText(text string)
	// handleEndTag is called once for every handleStartTag, including
	// void elements and elements left open at the end of input.
	handleEndTag(name string)
}

// tagParser wraps a net/html Tokenizer and turns its token stream into a
// balanced sequence of open, text and close events. Stray end tags are
// dropped, missing end tags are synthesized, so handlers can rely on
// every close matching the most recent open.
type tagParser struct {
	z       *html.Tokenizer
	handler tagHandler
	stack   []string
	// number of svg/math elements currently open
	foreign int
}

func newTagParser(r io.Reader, handler tagHandler) *tagParser {
	return &tagParser{
		z:       html.NewTokenizer(r),
		handler: handler,
	}
}

// voidElements close as soon as they are opened.
var voidElements = map[string]bool{
	"area": true, "base": true, "basefont": true, "br": true, "col": true,
	"command": true, "embed": true, "frame": true, "hr": true, "img": true,
	"input": true, "isindex": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// markupTags are read as raw text by the tokenizer but hold ordinary
// markup here. Only script, style, iframe, textarea and title keep their
// content unparsed.
var markupTags = set("xmp", "noembed", "noframes", "noscript", "plaintext")

var (
	pTag        = set("p")
	formTags    = set("input", "option", "optgroup", "select", "button", "datalist", "textarea")
	ddtTags     = set("dd", "dt")
	rtpTags     = set("rt", "rp")
	sectionTags = set("thead", "tbody")
)

// impliesClose maps an opening tag to the elements it closes when one
// of them is the current element, e.g. a <li> closes an open <li>.
var impliesClose = map[string]map[string]bool{
	"tr":         set("tr", "th", "td"),
	"th":         set("th"),
	"td":         set("thead", "th", "td"),
	"body":       set("head", "link", "script"),
	"li":         set("li"),
	"p":          pTag,
	"h1":         pTag,
	"h2":         pTag,
	"h3":         pTag,
	"h4":         pTag,
	"h5":         pTag,
	"h6":         pTag,
	"select":     formTags,
	"input":      formTags,
	"output":     formTags,
	"button":     formTags,
	"datalist":   formTags,
	"textarea":   formTags,
	"option":     set("option"),
	"optgroup":   set("optgroup", "option"),
	"dd":         ddtTags,
	"dt":         ddtTags,
	"address":    pTag,
	"article":    pTag,
	"aside":      pTag,
	"blockquote": pTag,
	"details":    pTag,
	"div":        pTag,
	"dl":         pTag,
	"fieldset":   pTag,
	"figcaption": pTag,
	"figure":     pTag,
	"footer":     pTag,
	"form":       pTag,
	"header":     pTag,
	"hr":         pTag,
	"main":       pTag,
	"nav":        pTag,
	"ol":         pTag,
	"pre":        pTag,
	"section":    pTag,
	"table":      pTag,
	"ul":         pTag,
	"rt":         rtpTags,
	"rp":         rtpTags,
	"tbody":      sectionTags,
	"tfoot":      sectionTags,
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, v := range items {
		m[v] = true
	}
	return m
}

func isForeign(tag string) bool {
	return tag == "svg" || tag == "math"
}

// Process tokenizes the whole input and calls the handler. It returns
// the reader's error, if any, after closing every open element.
func (p *tagParser) Process() error {
	for {
		tt := p.z.Next()
		switch tt {
		case html.ErrorToken:
			p.closeAll()
			if err := p.z.Err(); err != io.EOF {
				return err
			}
			return nil
		case html.TextToken:
			p.handler.handleText(string(p.z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := p.z.TagName()
			tag := string(name)
			if markupTags[tag] {
				p.z.NextIsNotRawText()
			}
			attrs := p.readAttrs(hasAttr)
			p.open(tag, attrs, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := p.z.TagName()
			p.close(string(name))
		}
	}
}

// readAttrs collects the attributes of the current tag. When a name is
// repeated, the first value wins.
func (p *tagParser) readAttrs(hasAttr bool) *Attributes {
	attrs := &Attributes{}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = p.z.TagAttr()
		if k := string(key); !attrs.Has(k) {
			attrs.Set(k, string(val))
		}
	}
	return attrs
}

func (p *tagParser) open(tag string, attrs *Attributes, selfClosing bool) {
	if closes, ok := impliesClose[tag]; ok {
		for len(p.stack) > 0 && closes[p.stack[len(p.stack)-1]] {
			p.pop()
		}
	}

	p.stack = append(p.stack, tag)
	if isForeign(tag) {
		p.foreign++
	}
	p.handler.handleStartTag(tag, attrs)

	// Self-closing syntax is only meaningful for void elements and
	// inside foreign content; elsewhere "<div/>" opens a div.
	if voidElements[tag] || (selfClosing && p.foreign > 0) {
		p.pop()
	}
}

func (p *tagParser) close(tag string) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i] != tag {
			continue
		}
		for len(p.stack) > i {
			p.pop()
		}
		return
	}

	// Browsers turn these stray end tags into elements.
	switch tag {
	case "br":
		p.open("br", &Attributes{}, false)
	case "p":
		p.open("p", &Attributes{}, false)
		p.pop()
	}
}

func (p *tagParser) pop() {
	last := len(p.stack) - 1
	tag := p.stack[last]
	p.stack = p.stack[:last]
	if isForeign(tag) {
		p.foreign--
	}
	p.handler.handleEndTag(tag)
}

func (p *tagParser) closeAll() {
	for len(p.stack) > 0 {
		p.pop()
	}
}

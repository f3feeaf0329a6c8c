package htmlutils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscodecleaner/htmlutils"
)

func TestSanitizeHTML_ScriptStripped(t *testing.T) {
	tests := []string{
		`<p>Hello</p><script>alert('xss')</script>`,
		`<SCRIPT>alert(1)</SCRIPT><p>Hello</p>`,
		`<p>Hello<script src="https://evil.example/x.js"></script></p>`,
		`<p>Hello</p><script>unterminated`,
		`<p>Hello</p><svg><script>alert(1)</script></svg>`,
	}

	for _, input := range tests {
		got := htmlutils.SanitizeHTML(input, nil)
		assert.NotContains(t, strings.ToLower(got), "<script", "input: %s", input)
		assert.Contains(t, got, "Hello", "input: %s", input)
	}
}

func TestSanitizeHTML_DisallowedSubtreeRemoved(t *testing.T) {
	input := `<object><p>inside</p><b>bold</b></object><p>after</p>`
	got := htmlutils.SanitizeHTML(input, nil)
	assert.Equal(t, `<p>after</p>`, got)
}

func TestSanitizeHTML_NestedDisallowedTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "nested scripts",
			input:    `<script><script>x</script></script><p>sibling</p>`,
			expected: `<p>sibling</p>`,
		},
		{
			name:     "nested objects",
			input:    `<object><object>x</object></object><p>sibling</p>`,
			expected: `<p>sibling</p>`,
		},
		{
			name:     "mixed disallowed",
			input:    `<form><button>b</button><iframe></iframe>t</form><b>ok</b>`,
			expected: `<b>ok</b>`,
		},
		{
			name:     "unclosed disallowed swallows rest",
			input:    `<p>a</p><object><p>b</p>`,
			expected: `<p>a</p>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, htmlutils.SanitizeHTML(tc.input, nil))
		})
	}
}

func TestSanitizeHTML_DisallowedTags(t *testing.T) {
	containers := []string{
		"iframe", "frameset", "object", "noscript", "button", "form",
		"select", "textarea", "option", "optgroup",
	}

	for _, tag := range containers {
		t.Run(tag, func(t *testing.T) {
			input := `<div>keep<` + tag + ` href="x" src="y">drop</` + tag + `></div>`
			got := htmlutils.SanitizeHTML(input, nil)
			assert.NotContains(t, got, "<"+tag)
			assert.NotContains(t, got, "drop")
			assert.Contains(t, got, "keep")
		})
	}

	// Void elements have no content, so only the tag itself goes.
	voids := []string{"base", "embed", "frame", "input", "link", "meta"}

	for _, tag := range voids {
		t.Run(tag, func(t *testing.T) {
			input := `<div>keep<` + tag + ` href="x" src="y">after</div>`
			assert.Equal(t, `<div>keepafter</div>`, htmlutils.SanitizeHTML(input, nil))
		})
	}
}

func TestSanitizeHTML_EventHandlersRemoved(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "onclick",
			input:    `<div onclick="alert(1)" class="c">x</div>`,
			expected: `<div class="c">x</div>`,
		},
		{
			name:     "uppercase handler",
			input:    `<img src="x.png" ONERROR="alert(1)">`,
			expected: `<img src="x.png"/>`,
		},
		{
			name:     "unknown handler-like name",
			input:    `<span onfoo="1" online="2">x</span>`,
			expected: `<span>x</span>`,
		},
		{
			name:     "two character name kept",
			input:    `<span on="1">x</span>`,
			expected: `<span on="1">x</span>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, htmlutils.SanitizeHTML(tc.input, nil))
		})
	}
}

func TestSanitizeHTML_AnchorHref(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "javascript href",
			input:    `<a href="javascript:alert(1)">click</a>`,
			expected: `<a href="#">click</a>`,
		},
		{
			name:     "entity encoded javascript href",
			input:    `<a href="&#106;avascript:alert(1)">click</a>`,
			expected: `<a href="#">click</a>`,
		},
		{
			name:     "data href",
			input:    `<a href="data:text/html,hi">click</a>`,
			expected: `<a href="#">click</a>`,
		},
		{
			name:     "relative href",
			input:    `<a href="/about">click</a>`,
			expected: `<a href="#">click</a>`,
		},
		{
			name:     "https kept",
			input:    `<a href="https://example.com/?a=1&amp;b=2">click</a>`,
			expected: `<a href="https://example.com/?a=1&amp;b=2">click</a>`,
		},
		{
			name:     "uppercase http kept",
			input:    `<a href="HTTP://example.com">click</a>`,
			expected: `<a href="HTTP://example.com">click</a>`,
		},
		{
			name:     "mailto kept",
			input:    `<a href="mailto://someone@example.com">mail</a>`,
			expected: `<a href="mailto://someone@example.com">mail</a>`,
		},
		{
			name:     "missing href added",
			input:    `<a name="top">top</a>`,
			expected: `<a name="top" href="#">top</a>`,
		},
		{
			name:     "data-from-md removed",
			input:    `<a data-from-md href="https://example.com">x</a>`,
			expected: `<a href="https://example.com">x</a>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, htmlutils.SanitizeHTML(tc.input, nil))
		})
	}
}

func TestSanitizeHTML_SelfClosingElements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`a<br>b`, `a<br/>b`},
		{`a<br/>b`, `a<br/>b`},
		{`a</br>b`, `a<br/>b`},
		{`<img src="x">`, `<img src="x"/>`},
		{`<img src="x"></img>`, `<img src="x"/>`},
		{`<hr><wbr>`, `<hr/><wbr/>`},
		{`<p>x<hr>`, `<p>x</p><hr/>`},
	}

	for _, tc := range tests {
		got := htmlutils.SanitizeHTML(tc.input, nil)
		assert.Equal(t, tc.expected, got, "input: %s", tc.input)
		for _, tag := range []string{"br", "img", "hr", "wbr"} {
			assert.NotContains(t, got, "</"+tag+">")
		}
	}
}

func TestSanitizeHTML_TextEncoding(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "entities re-encoded",
			input:    `<p>&lt;b&gt; &amp; "quotes"</p>`,
			expected: `<p>&lt;b&gt; &amp; &#34;quotes&#34;</p>`,
		},
		{
			name:     "attribute values encoded",
			input:    `<span title='a "b" &lt;c&gt;'>x</span>`,
			expected: `<span title="a &#34;b&#34; &lt;c&gt;">x</span>`,
		},
		{
			name:     "boolean attribute",
			input:    `<details open><summary>s</summary></details>`,
			expected: `<details open><summary>s</summary></details>`,
		},
		{
			name:     "unicode passes through",
			input:    `<p>café ☕</p>`,
			expected: `<p>café ☕</p>`,
		},
		{
			name:     "comments dropped",
			input:    `<p>a<!-- secret -->b</p>`,
			expected: `<p>ab</p>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, htmlutils.SanitizeHTML(tc.input, nil))
		})
	}
}

func TestSanitizeHTML_Style(t *testing.T) {
	t.Run("css kept as-is", func(t *testing.T) {
		input := `<style>a > b { content: "x" }</style>`
		assert.Equal(t, input, htmlutils.SanitizeHTML(input, nil))
	})

	t.Run("less-than encoded", func(t *testing.T) {
		input := `<style>a<b</style>`
		assert.Equal(t, `<style>a&lt;b</style>`, htmlutils.SanitizeHTML(input, nil))
	})

	t.Run("cannot break out", func(t *testing.T) {
		input := `<style><img src=x onerror=alert(1)></style>`
		got := htmlutils.SanitizeHTML(input, nil)
		assert.NotContains(t, got, "<img")
	})
}

func TestSanitizeHTML_PreservesStructure(t *testing.T) {
	input := `<div class="note"><h1 id="t">Title</h1><ul><li>one</li><li>two</li></ul>` +
		`<table><tr><td colspan="2">cell</td></tr></table><custom-tag data-x="1">c</custom-tag></div>`
	assert.Equal(t, input, htmlutils.SanitizeHTML(input, nil))
}

func TestSanitizeHTML_MalformedInput(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`<b>bold`, `<b>bold</b>`},
		{`text</b>more`, `textmore`},
		{`<b><i>x</b>y`, `<b><i>x</i></b>y`},
		{`<ul><li>a<li>b</ul>`, `<ul><li>a</li><li>b</li></ul>`},
		{`<p>a<p>b`, `<p>a</p><p>b</p>`},
		{`x</p>y`, `x<p></p>y`},
		{`<`, `&lt;`},
		{``, ``},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, htmlutils.SanitizeHTML(tc.input, nil), "input: %q", tc.input)
	}
}

func TestSanitizeHTML_LegacyRawTextElementsHoldMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "xmp",
			input:    `<xmp><b>x</b></xmp>`,
			expected: `<xmp><b>x</b></xmp>`,
		},
		{
			name:     "script inside xmp removed",
			input:    `<xmp><script>alert(1)</script>ok</xmp>`,
			expected: `<xmp>ok</xmp>`,
		},
		{
			name:     "noembed handlers stripped",
			input:    `<noembed><img src="a.png" onerror="x()"></noembed>`,
			expected: `<noembed><img src="a.png"/></noembed>`,
		},
		{
			name:     "noscript dropped with its content",
			input:    `<noscript><img src="a.png"></noscript>after`,
			expected: `after`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, htmlutils.SanitizeHTML(tc.input, nil))
		})
	}
}

func TestSanitizeHTML_ForeignContent(t *testing.T) {
	input := `<svg viewBox="0 0 10 10"><path d="M0 0L10 10"/><circle r="1"/></svg><p>after</p>`
	expected := `<svg viewbox="0 0 10 10"><path d="M0 0L10 10"></path><circle r="1"></circle></svg><p>after</p>`
	assert.Equal(t, expected, htmlutils.SanitizeHTML(input, nil))
}

func TestSanitizeHTML_AddNoMdConvClass(t *testing.T) {
	opts := &htmlutils.SanitizeOptions{AddNoMdConvClass: true}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "class added",
			input:    `<p>x</p>`,
			expected: `<p class="jop-noMdConv">x</p>`,
		},
		{
			name:     "class appended",
			input:    `<p class="a b">x</p>`,
			expected: `<p class="a b jop-noMdConv">x</p>`,
		},
		{
			name:     "class not duplicated",
			input:    `<p class="jop-noMdConv a">x</p>`,
			expected: `<p class="jop-noMdConv a">x</p>`,
		},
		{
			name:     "void element",
			input:    `<br>`,
			expected: `<br class="jop-noMdConv"/>`,
		},
		{
			name:     "anchor",
			input:    `<a>x</a>`,
			expected: `<a href="#" class="jop-noMdConv">x</a>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, htmlutils.SanitizeHTML(tc.input, opts))
		})
	}
}

func TestSanitizeHTML_Idempotent(t *testing.T) {
	inputs := []string{
		`<p>Hello <b>world</b></p><script>alert(1)</script>`,
		`<a onclick="x()" href="javascript:void(0)">link</a><a>bare</a>`,
		`<div title="a &quot;b&quot;">&lt;tag&gt; &amp; 'single'</div>`,
		`<img src=x/><br><hr>`,
		`<style>a<b { color: red }</style><p>after`,
		`<ul><li>a<li>b</ul><p>a<div>b</div>`,
		`<object><p>x</p></object>text https://example.com/path?a=1&b=2 more`,
		`<svg><path d="M0"/></svg>`,
		`<xmp><b>x</b></xmp><noembed><i>y</i></noembed><noframes><p>z</p></noframes>`,
		`<noscript><img src="a.png"></noscript>after`,
		`<plaintext><b>p</b>`,
		`<title>see https://example.com</title>`,
	}

	optionSets := []*htmlutils.SanitizeOptions{
		nil,
		{AddNoMdConvClass: true},
		{Linkify: true},
		{AddNoMdConvClass: true, Linkify: true},
	}

	for _, opts := range optionSets {
		for _, input := range inputs {
			once := htmlutils.SanitizeHTML(input, opts)
			twice := htmlutils.SanitizeHTML(once, opts)
			assert.Equal(t, once, twice, "input: %s, opts: %+v", input, opts)
		}
	}
}

func TestSanitizeHTML_NoMdConvClassNotDuplicatedOnRepeatedPasses(t *testing.T) {
	opts := &htmlutils.SanitizeOptions{AddNoMdConvClass: true}
	out := `<div><span class="x">a</span></div>`
	for i := 0; i < 3; i++ {
		out = htmlutils.SanitizeHTML(out, opts)
	}
	assert.Equal(t, 2, strings.Count(out, "jop-noMdConv"))
}

func TestSanitizeHTML_Linkify(t *testing.T) {
	opts := &htmlutils.SanitizeOptions{Linkify: true}

	t.Run("url linked", func(t *testing.T) {
		got := htmlutils.SanitizeHTML(`Visit https://example.com for details`, opts)
		assert.Equal(t, `Visit <a href="https://example.com">https://example.com</a> for details`, got)
	})

	t.Run("existing anchor untouched", func(t *testing.T) {
		input := `<a href="https://example.com"><b>https://example.com</b></a>`
		assert.Equal(t, input, htmlutils.SanitizeHTML(input, opts))
	})

	t.Run("unaccepted scheme not linked", func(t *testing.T) {
		got := htmlutils.SanitizeHTML(`ftp://example.com/file`, opts)
		assert.Equal(t, `ftp://example.com/file`, got)
	})

	t.Run("title text not linked", func(t *testing.T) {
		input := `<title>see https://example.com</title>`
		assert.Equal(t, input, htmlutils.SanitizeHTML(input, opts))
	})

	t.Run("off by default", func(t *testing.T) {
		got := htmlutils.SanitizeHTML(`https://example.com`, nil)
		assert.Equal(t, `https://example.com`, got)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}

func TestSanitizeHTMLReader(t *testing.T) {
	got, err := htmlutils.SanitizeHTMLReader(strings.NewReader(`<b>hello</b><script>bad</script>`), nil)
	require.NoError(t, err)
	assert.Equal(t, `<b>hello</b>`, got)

	_, err = htmlutils.SanitizeHTMLReader(failingReader{}, nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestIsSelfClosingTag(t *testing.T) {
	for _, tag := range []string{"br", "BR", "img", "Input", "wbr", "basefont", "isindex"} {
		assert.True(t, htmlutils.IsSelfClosingTag(tag), tag)
	}
	for _, tag := range []string{"p", "div", "a", "script", ""} {
		assert.False(t, htmlutils.IsSelfClosingTag(tag), tag)
	}
}

func BenchmarkSanitizeHTML(b *testing.B) {
	input := strings.Repeat(`<p>Hello <b>world</b> <script>bad()</script> <a href="http://x.com" onclick="y()">link</a></p>`, 100)
	opts := &htmlutils.SanitizeOptions{AddNoMdConvClass: true}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = htmlutils.SanitizeHTML(input, opts)
	}
}

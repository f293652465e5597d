package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text unchanged", "Click the Save button", "Click the Save button"},
		{"plain text keeps spacing", "  two  spaces ", "  two  spaces "},
		{"newlines and tabs stripped", "line\none\ttab", "lineonetab"},
		{"paragraph", "<p>Hello <b>World</b></p>", "Hello **World**"},
		{"emphasis", "<p><em>soft</em> and <strong>hard</strong></p>", "_soft_ and **hard**"},
		{"two paragraphs", "<p>first</p>\n<p>second</p>", "first\n\nsecond"},
		{"break", "line1<br>line2<br />line3", "line1\nline2\nline3"},
		{"unordered list", "<ul>\n\t<li>one</li>\n\t<li>two</li>\n</ul>", "* one\n* two"},
		{"ordered list", "<ol><li>a</li><li>b</li><li>c</li></ol>", "1. a\n2. b\n3. c"},
		{"nested list", "<ul><li>a<ul><li>b</li></ul></li></ul>", "* a\n  * b"},
		{"entities", "a&nbsp;&amp;&nbsp;b", "a & b"},
		{"ampersand in plain text", "Tom & Jerry", "Tom & Jerry"},
		{"link", `<p>see <a href="http://x.test/doc">the doc</a></p>`, "see [the doc](http://x.test/doc)"},
		{"bare link", `<a href="http://x.test">http://x.test</a>`, "http://x.test"},
		{"heading", "<h2>Setup</h2><p>install</p>", "## Setup\n\ninstall"},
		{"script dropped", "<p>a</p><script>alert(1)</script>", "a"},
		{"inner whitespace collapsed", "<p>a    b</p>", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Plain step text",
		"<p>Open <b>Settings</b></p><ul><li>one</li><li>two</li></ul>",
		"<ol><li>x</li></ol>",
	}

	for _, in := range inputs {
		once := Normalize(in)
		// rendered output has newlines, which the second pass strips
		assert.Equal(t, stripper.Replace(once), Normalize(once), in)
	}
}

package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hi there", "Hi there"},
		{"escapes", "a < b & c > d", "a &lt; b &amp; c &gt; d"},
		{"bold and italic", "**bold** and _it_", "<b>bold</b> and <i>it</i>"},
		{"strikethrough", "~~gone~~", "<s>gone</s>"},
		{"inline code", "run `x<y`", "run <code>x&lt;y</code>"},
		{"fenced code", "```go\nfmt.Println(\"hi\")\n```", `<pre><code class="language-go">fmt.Println("hi")</code></pre>`},
		{"link", "[site](https://x.io?a=1&b=2)", `<a href="https://x.io?a=1&amp;b=2">site</a>`},
		{"bare url", "see https://example.com", `see <a href="https://example.com">https://example.com</a>`},
		{"heading", "# Title\n\nBody", "<b>Title</b>\n\nBody"},
		{"bullets", "- one\n- two", "• one\n• two"},
		{"numbered", "1. a\n2. b", "1. a\n2. b"},
		{"nested list", "- one\n  - inner", "• one\n  • inner"},
		{"blockquote", "> quoted", "<blockquote>quoted</blockquote>"},
		{"soft break", "line1\nline2", "line1\nline2"},
		{"paragraphs", "first\n\nsecond", "first\n\nsecond"},
		{"raw html is escaped", "x <span>y</span>", "x &lt;span&gt;y&lt;/span&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHTML(tt.in))
		})
	}
}

func TestFormatHTML_Empty(t *testing.T) {
	assert.Equal(t, "", FormatHTML(""))
	assert.Equal(t, "", FormatHTML("  \n"))
}

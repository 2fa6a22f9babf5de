package textfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBoldItalic(t *testing.T) {
	assert.Equal(t, "Great choice for a Finance MBA", Normalize("**Great choice** for a *Finance* MBA"))
}

func TestNormalizeHeadingsAndBullets(t *testing.T) {
	in := "## Recommendations\n* First option\n* Second option"
	assert.Equal(t, "Recommendations\n- First option\n- Second option", Normalize(in))
}

func TestNormalizeCodeFence(t *testing.T) {
	assert.Equal(t, "plain text", Normalize("```json\nplain text```"))
}

func TestNormalizeLinksAndShortcodes(t *testing.T) {
	assert.Equal(t, "See Example U for details", Normalize("See [Example U](https://example.edu) for details :tada:"))
}

func TestNormalizeCollapsesBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", Normalize("a\n\n\n\n\nb"))
}

func TestNormalizeOrderStable(t *testing.T) {
	// bold stripping must run before single-asterisk italics, otherwise
	// "**x**" would degrade to "*x*" artifacts
	assert.Equal(t, "x", Normalize("**x**"))
}

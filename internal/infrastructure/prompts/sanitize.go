package prompts

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup reduces post text to its plain-text content. Social feeds
// deliver text with embedded anchors, spans and entities; none of that
// should reach the scoring prompts.
func StripMarkup(text string) string {
	if !strings.ContainsRune(text, '<') && !strings.ContainsRune(text, '&') {
		return strings.TrimSpace(text)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
		}
	}

	return strings.TrimSpace(collapseSpaces(b.String()))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

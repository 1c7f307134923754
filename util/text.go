package util

import (
	"html/template"
	"strings"

	"gitlab.com/golang-commonmark/markdown"
	"golang.org/x/net/html"
)

// raw HTML is not passed through, so content can't inject scripts
var markdownParser = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// Markdown renders CommonMark to HTML.
func Markdown(content string) template.HTML {
	return template.HTML(markdownParser.RenderToString([]byte(content)))
}

// Excerpt renders markdown, strips all tags and truncates the text to maxRunes.
func Excerpt(content string, maxRunes int) string {

	tokenizer := html.NewTokenizer(strings.NewReader(markdownParser.RenderToString([]byte(content))))

	var text strings.Builder

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}
		switch tt {
		case html.TextToken:
			text.Write(tokenizer.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			text.WriteByte(' ')
		}
		if text.Len() > 4*maxRunes {
			break // enough
		}
	}

	var excerpt = strings.Join(strings.Fields(text.String()), " ")
	if truncated := Trunc(excerpt, maxRunes); truncated != excerpt {
		return truncated + "…"
	}
	return excerpt
}

// Trunc truncates the input string to a specific length.
// It is UTF8-safe, but does not care for HTML.
func Trunc(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	var runes = 0
	for i := range s {
		if runes == maxRunes {
			return strings.TrimSpace(s[:i]) // trim spaces again
		}
		runes++
	}
	return s
}

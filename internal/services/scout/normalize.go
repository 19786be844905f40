package scout

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
)

// NormalizeDescription converts an HTML game description to markdown so
// stored content is uniform whatever shape the extractor returned it in.
// Plain text passes through untouched.
func NormalizeDescription(content, baseURL string) string {
	if content == "" || !looksLikeHTML(content) {
		return strings.TrimSpace(content)
	}

	converter := md.NewConverter(baseURL, true, nil)
	converted, err := converter.ConvertString(content)
	if err != nil || strings.TrimSpace(converted) == "" {
		return strings.TrimSpace(stripHTMLTags(content))
	}

	return strings.TrimSpace(blankLines.ReplaceAllString(converted, "\n\n"))
}

// FlattenHTMLText reduces an HTML comment snippet to plain text. Comments
// feed the sentiment classifier and scoring prompts, where markup is noise.
func FlattenHTMLText(content string) string {
	if content == "" || !looksLikeHTML(content) {
		return strings.TrimSpace(content)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(stripHTMLTags(content))
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func looksLikeHTML(s string) bool {
	return strings.Contains(s, "<") && htmlTagPattern.MatchString(s)
}

func stripHTMLTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, " ")
}

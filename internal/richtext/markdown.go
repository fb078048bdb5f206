package richtext

import (
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

var (
	mdOnce sync.Once
	mdConv *converter.Converter
)

func markdownConverter() *converter.Converter {
	mdOnce.Do(func() {
		mdConv = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithStrongDelimiter("**"),
					commonmark.WithBulletListMarker("-"),
				),
			),
		)
	})
	return mdConv
}

// ToMarkdown converts detail HTML to Markdown suitable for glamour. The input is
// sanitized first; if conversion fails the plain-text form is returned.
func ToMarkdown(s string) string {
	clean := Sanitize(s)
	if clean == "" {
		return ""
	}
	out, err := markdownConverter().ConvertString(clean)
	if err != nil {
		return PlainText(s)
	}
	return strings.TrimSpace(out)
}

package markup

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Format names how input text is encoded.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat accepts "", "text" and "html".
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("format %q must be %q or %q", raw, FormatText, FormatHTML)
}

// Normalize returns input as Markdown. Plain text passes through unchanged.
func Normalize(input string, format Format) (string, error) {
	if format != FormatHTML {
		return input, nil
	}
	md, err := htmltomarkdown.ConvertString(input)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Package sanitize cleans user supplied gallery names and captions and
// derives URL-safe slugs from them.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe      = regexp.MustCompile(`\s+`)
	percentOctetRe    = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// Text strips markup, invalid UTF-8, percent-encoded octets and line breaks
// from s, collapses whitespace and returns the NFC-normalized result.
// "<b>Beach</b>\n  2015" -> "Beach 2015".
func Text(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")
	s = stripTags(s)
	s = percentOctetRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")

	return norm.NFC.String(strings.TrimSpace(s))
}

// stripTags keeps only the text tokens of s. Contents of script and style
// elements are dropped entirely.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var buf strings.Builder
	skip := 0

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextElement(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextElement(name) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawTextElement(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// Slugify converts a gallery name to a URL-safe slug.
// "Beach Day" -> "beach-day".
// "Café / Nuit" -> "cafe-nuit".
func Slugify(s string) string {
	// Decompose accented characters so the base letter survives.
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumericRe.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

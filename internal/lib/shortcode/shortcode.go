// Package shortcode finds and rewrites bracketed content macros such as
// [gallery slug="beach" columns=3].
package shortcode

import (
	"regexp"
	"strings"
)

var attrRe = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"(?:\s|$)|([\w-]+)\s*=\s*'([^']*)'(?:\s|$)|([\w-]+)\s*=\s*([^\s'"]+)(?:\s|$)|"([^"]*)"(?:\s|$)|'([^']*)'(?:\s|$)|(\S+)(?:\s|$)`)

// Attr is one attribute of a shortcode. Positional attributes have an empty Key.
type Attr struct {
	Key   string
	Value string
}

// Shortcode is a single occurrence of a tag inside content.
type Shortcode struct {
	Tag   string
	Attrs []Attr
	// Start and End are byte offsets of the occurrence in the parsed content.
	Start int
	End   int
}

// Get returns the value of the named attribute.
func (s *Shortcode) Get(key string) (string, bool) {
	for _, a := range s.Attrs {
		if a.Key != "" && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute in place or appends it.
func (s *Shortcode) Set(key, value string) {
	for i, a := range s.Attrs {
		if a.Key == key {
			s.Attrs[i].Value = value
			return
		}
	}
	s.Attrs = append(s.Attrs, Attr{Key: key, Value: value})
}

// Delete removes every attribute with the given key.
func (s *Shortcode) Delete(key string) {
	attrs := s.Attrs[:0]
	for _, a := range s.Attrs {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	s.Attrs = attrs
}

// String renders the shortcode back to content form.
func (s *Shortcode) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(s.Tag)
	for _, a := range s.Attrs {
		b.WriteByte(' ')
		if a.Key != "" {
			b.WriteString(a.Key)
			b.WriteByte('=')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(a.Value, `"`, "&quot;"))
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return b.String()
}

// Parser matches a single self-closing tag.
type Parser struct {
	tag string
	re  *regexp.Regexp
}

func New(tag string) *Parser {
	return &Parser{
		tag: tag,
		// [[tag]] is an escaped literal; the extra brackets are captured so it can be skipped.
		re: regexp.MustCompile(`\[(\[?)` + regexp.QuoteMeta(tag) + `(?:\s+([^\]]*?))?\s*/?\](\]?)`),
	}
}

// Parse returns every unescaped occurrence of the tag in content.
func (p *Parser) Parse(content string) []Shortcode {
	var out []Shortcode

	for _, m := range p.re.FindAllStringSubmatchIndex(content, -1) {
		open, closing := m[3] > m[2], m[7] > m[6]
		if open && closing {
			continue
		}

		sc := Shortcode{Tag: p.tag, Start: m[0], End: m[1]}
		if open {
			sc.Start++
		}
		if closing {
			sc.End--
		}
		if m[4] >= 0 {
			sc.Attrs = ParseAttrs(content[m[4]:m[5]])
		}

		out = append(out, sc)
	}

	return out
}

// Replace calls fn for every occurrence of the tag. When fn returns true the
// occurrence is replaced with the rendered (possibly modified) shortcode.
func (p *Parser) Replace(content string, fn func(sc *Shortcode) bool) string {
	codes := p.Parse(content)
	if len(codes) == 0 {
		return content
	}

	var b strings.Builder
	last := 0
	for i := range codes {
		sc := &codes[i]
		b.WriteString(content[last:sc.Start])
		if fn(sc) {
			b.WriteString(sc.String())
		} else {
			b.WriteString(content[sc.Start:sc.End])
		}
		last = sc.End
	}
	b.WriteString(content[last:])

	return b.String()
}

// ParseAttrs splits a raw attribute string. Keys are lower-cased.
func ParseAttrs(raw string) []Attr {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var attrs []Attr
	for _, m := range attrRe.FindAllStringSubmatch(raw+" ", -1) {
		switch {
		case m[1] != "":
			attrs = append(attrs, Attr{Key: strings.ToLower(m[1]), Value: m[2]})
		case m[3] != "":
			attrs = append(attrs, Attr{Key: strings.ToLower(m[3]), Value: m[4]})
		case m[5] != "":
			attrs = append(attrs, Attr{Key: strings.ToLower(m[5]), Value: m[6]})
		case m[9] != "":
			attrs = append(attrs, Attr{Value: m[9]})
		default:
			attrs = append(attrs, Attr{Value: m[7] + m[8]})
		}
	}

	return attrs
}

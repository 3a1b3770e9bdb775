// Package epp renders embedded Puppet templates: source text containing
// `<% ... %>` tags whose contents are ordinary Puppet statements or
// expressions, interleaved with literal text copied through verbatim.
// The scanner is a byte-cursor struct with peek/advance helpers, in the
// same style as internal/lexer, adapted to a much simpler two-mode scan:
// outside a tag everything is literal text, inside one the text is
// handed to internal/parser.
//
// No third-party templating library implements this exact `<% %>` tag
// delimiter syntax (text/template's `{{ }}` is a different notation
// entirely and cannot parse Puppet expressions), so the tag scanner
// below is hand-rolled; the expressions and statements it extracts from
// each tag are parsed and evaluated by this module's own
// parser/evaluator packages.
package epp

import (
	"strings"
)

// TagKind classifies one scanned EPP tag.
type TagKind int

const (
	Text   TagKind = iota // literal output, copied through as-is
	Expr                  // <%= ... %>, rendered and appended to output
	Code                  // <% ... %>, executed for side effects only
	Params                // <%- | ... | -%>, the template's parameter header
)

// Tag is one scanned unit of a template: either a run of literal text or
// the source inside one `<% %>` delimiter pair.
type Tag struct {
	Kind    TagKind
	Content string
	Trim    bool // true if this tag used `-%>`/`<%-` to trim adjacent whitespace
}

// Scan splits source into an ordered sequence of Tags. A leading
// parameter tag, if present, must be the first non-whitespace content in
// the template; Scan does not enforce that placement, leaving it to the
// caller (the real Puppet compiler rejects a parameter tag anywhere
// else).
func Scan(source string) []Tag {
	var tags []Tag
	i := 0
	for i < len(source) {
		start := i
		idx := strings.Index(source[i:], "<%")
		if idx < 0 {
			tags = append(tags, Tag{Kind: Text, Content: source[i:]})
			break
		}
		if idx > 0 {
			tags = append(tags, Tag{Kind: Text, Content: source[start : start+idx]})
		}
		i = start + idx + 2

		kind := Code
		trimLeft := false
		switch {
		case strings.HasPrefix(source[i:], "=-"):
			kind, trimLeft = Expr, true
			i += 2
		case strings.HasPrefix(source[i:], "="):
			kind = Expr
			i++
		case strings.HasPrefix(source[i:], "--"):
			// <%-- is a comment tag: consume through --%> and emit nothing.
			i += 2
			end := strings.Index(source[i:], "--%>")
			if end < 0 {
				return trimFollowingText(tags) // unterminated comment runs to EOF
			}
			i += end + 4
			continue
		case strings.HasPrefix(source[i:], "-"):
			kind, trimLeft = Code, true
			i++
		}

		end := strings.Index(source[i:], "%>")
		if end < 0 {
			tags = append(tags, Tag{Kind: kind, Content: source[i:], Trim: trimLeft})
			break
		}
		body := source[i : i+end]
		trimRight := strings.HasSuffix(body, "-")
		if trimRight {
			body = body[:len(body)-1]
		}
		i += end + 2

		content := strings.TrimSpace(body)
		if kind == Code && strings.HasPrefix(content, "|") {
			kind = Params
		}
		tags = append(tags, Tag{Kind: kind, Content: body, Trim: trimLeft || trimRight})

		if trimLeft && len(tags) >= 2 {
			prev := &tags[len(tags)-2]
			if prev.Kind == Text {
				prev.Content = strings.TrimSuffix(prev.Content, "\n")
				prev.Content = strings.TrimRight(prev.Content, " \t")
			}
		}
		if trimRight {
			// Leading whitespace of the following text run is trimmed once
			// that Text tag is appended, in trimFollowingText below.
			tags[len(tags)-1].Trim = true
		}
	}
	return trimFollowingText(tags)
}

// trimFollowingText removes leading whitespace (and one newline) from
// each Text tag that immediately follows a tag marked Trim via `-%>`.
func trimFollowingText(tags []Tag) []Tag {
	for i := 1; i < len(tags); i++ {
		if tags[i-1].Trim && tags[i-1].Kind != Text && tags[i].Kind == Text {
			s := strings.TrimLeft(tags[i].Content, " \t")
			s = strings.TrimPrefix(s, "\n")
			tags[i].Content = s
		}
	}
	return tags
}

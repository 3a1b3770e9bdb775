package epp_test

import (
	"testing"

	"github.com/puppetlabs/go-puppet/internal/epp"
)

func TestScanPlainText(t *testing.T) {
	tags := epp.Scan("hello, world")
	if len(tags) != 1 || tags[0].Kind != epp.Text || tags[0].Content != "hello, world" {
		t.Fatalf("Scan(plain text) = %+v", tags)
	}
}

func TestScanExprTag(t *testing.T) {
	tags := epp.Scan("count: <%= 1 + 1 %>.")
	want := []epp.Tag{
		{Kind: epp.Text, Content: "count: "},
		{Kind: epp.Expr, Content: " 1 + 1 "},
		{Kind: epp.Text, Content: "."},
	}
	assertTags(t, tags, want)
}

func TestScanCodeTag(t *testing.T) {
	tags := epp.Scan("a<% $x = 1 %>b")
	want := []epp.Tag{
		{Kind: epp.Text, Content: "a"},
		{Kind: epp.Code, Content: " $x = 1 "},
		{Kind: epp.Text, Content: "b"},
	}
	assertTags(t, tags, want)
}

func TestScanCommentTagDropped(t *testing.T) {
	tags := epp.Scan("a<%-- a comment --%>b")
	want := []epp.Tag{
		{Kind: epp.Text, Content: "a"},
		{Kind: epp.Text, Content: "b"},
	}
	assertTags(t, tags, want)
}

func TestScanParamsTag(t *testing.T) {
	tags := epp.Scan("<%- | String $name | -%>hi")
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d: %+v", len(tags), tags)
	}
	if tags[0].Kind != epp.Params {
		t.Fatalf("first tag kind = %v, want Params", tags[0].Kind)
	}
	if tags[1].Content != "hi" {
		t.Fatalf("trailing text = %q, want %q (leading whitespace trimmed)", tags[1].Content, "hi")
	}
}

func TestScanTrimMarkersStripWhitespace(t *testing.T) {
	tags := epp.Scan("a  \n<%- $x = 1 -%>\n  b")
	var texts []string
	for _, tag := range tags {
		if tag.Kind == epp.Text {
			texts = append(texts, tag.Content)
		}
	}
	if len(texts) != 2 {
		t.Fatalf("expected 2 text tags, got %v", texts)
	}
	if texts[0] != "a" {
		t.Fatalf("leading text = %q, want %q (trailing whitespace/newline trimmed)", texts[0], "a")
	}
	if texts[1] != "  b" {
		t.Fatalf("trailing text = %q, want %q (one leading newline trimmed)", texts[1], "  b")
	}
}

func TestScanUnterminatedCommentRunsToEOF(t *testing.T) {
	tags := epp.Scan("a<%-- never closed")
	if len(tags) != 1 || tags[0].Content != "a" {
		t.Fatalf("Scan(unterminated comment) = %+v, want a single leading text tag", tags)
	}
}

func TestParseExtractsParameterHeader(t *testing.T) {
	parsed, err := epp.Parse("test.epp", "<%- | String $name | -%>host <%= $name %>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed.Params) != 1 || parsed.Params[0].Name != "name" {
		t.Fatalf("Params = %+v", parsed.Params)
	}
	if len(parsed.Tags) != 2 {
		t.Fatalf("expected 2 remaining tags, got %d: %+v", len(parsed.Tags), parsed.Tags)
	}
}

func TestParseWithoutParameterHeader(t *testing.T) {
	parsed, err := epp.Parse("test.epp", "plain text, no header")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed.Params) != 0 {
		t.Fatalf("expected no params, got %+v", parsed.Params)
	}
	if len(parsed.Tags) != 1 || parsed.Tags[0].Content != "plain text, no header" {
		t.Fatalf("Tags = %+v", parsed.Tags)
	}
}

func assertTags(t *testing.T, got []epp.Tag, want []epp.Tag) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tags, want %d: got=%+v want=%+v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Content != want[i].Content {
			t.Errorf("tag %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

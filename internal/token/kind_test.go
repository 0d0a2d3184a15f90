package token_test

import (
	"testing"

	"erbfmt/internal/token"
)

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.Markup:               "Markup",
		token.CodeOutputBlockStart: "CodeOutputBlockStart",
		token.ScriptBlock:          "ScriptBlock",
		token.Kind(200):            "Kind(?)",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String()\nwant %q\ngot  %q", k, want, got)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	code := []token.Kind{
		token.CodeExpression, token.CodeOutput, token.CodeOutputBlockStart,
		token.CodeBlockStart, token.CodeBlockEnd, token.Comment,
	}
	for _, k := range code {
		if !k.IsCode() {
			t.Fatalf("%v should be code", k)
		}
	}
	for _, k := range []token.Kind{token.Markup, token.BlankLine, token.ScriptBlock} {
		if k.IsCode() {
			t.Fatalf("%v must NOT be code", k)
		}
	}
	if !token.CodeOutputBlockStart.IsOutput() || token.CodeBlockStart.IsOutput() {
		t.Fatalf("IsOutput mismatch")
	}
	if !token.CodeBlockStart.OpensBlock() || token.CodeBlockEnd.OpensBlock() {
		t.Fatalf("OpensBlock mismatch")
	}
}

func TestDelimiters(t *testing.T) {
	tests := []struct {
		tok        token.Token
		open, shut string
	}{
		{token.Token{Kind: token.CodeExpression}, "<%", "%>"},
		{token.Token{Kind: token.CodeOutput}, "<%=", "%>"},
		{token.Token{Kind: token.CodeOutputBlockStart, Raw: true}, "<%==", "%>"},
		{token.Token{Kind: token.CodeBlockEnd, TrimLeft: true, TrimRight: true}, "<%-", "-%>"},
		{token.Token{Kind: token.Comment}, "<%#", "%>"},
		{token.Token{Kind: token.Markup}, "", ""},
	}
	for _, tt := range tests {
		if got := tt.tok.OpenDelim(); got != tt.open {
			t.Fatalf("%v open\nwant %q\ngot  %q", tt.tok.Kind, tt.open, got)
		}
		if got := tt.tok.CloseDelim(); got != tt.shut {
			t.Fatalf("%v close\nwant %q\ngot  %q", tt.tok.Kind, tt.shut, got)
		}
	}
}

package token

// Kind represents the category of a template token.
type Kind uint8

const (
	// Markup is template text outside code tags (tags, text, doctype).
	Markup Kind = iota
	// CodeExpression is `<% expr %>` that neither opens nor closes a block.
	CodeExpression
	// CodeOutput is `<%= expr %>`.
	CodeOutput
	// CodeOutputBlockStart is `<%= helper do |f| %>`.
	CodeOutputBlockStart
	// CodeBlockStart is `<% if cond %>`, `<% items.each do |i| %>` and friends.
	CodeBlockStart
	// CodeBlockEnd is `<% end %>` and the continuation keywords.
	CodeBlockEnd
	// Comment is `<%# text %>`.
	Comment
	// BlankLine is a whitespace-only source line.
	BlankLine
	// ScriptBlock is the raw body of a <script> region.
	ScriptBlock
)

var kindNames = [...]string{
	Markup:               "Markup",
	CodeExpression:       "CodeExpression",
	CodeOutput:           "CodeOutput",
	CodeOutputBlockStart: "CodeOutputBlockStart",
	CodeBlockStart:       "CodeBlockStart",
	CodeBlockEnd:         "CodeBlockEnd",
	Comment:              "Comment",
	BlankLine:            "BlankLine",
	ScriptBlock:          "ScriptBlock",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsCode reports whether the kind is delimited by `<%` and `%>`.
func (k Kind) IsCode() bool {
	switch k {
	case CodeExpression, CodeOutput, CodeOutputBlockStart, CodeBlockStart, CodeBlockEnd, Comment:
		return true
	default:
		return false
	}
}

// IsOutput reports whether the kind renders with the `<%=` delimiter.
func (k Kind) IsOutput() bool {
	return k == CodeOutput || k == CodeOutputBlockStart
}

// OpensBlock reports whether the kind increments the indentation level.
func (k Kind) OpensBlock() bool {
	return k == CodeBlockStart || k == CodeOutputBlockStart
}

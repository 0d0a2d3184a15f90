package format

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifyMarkup(t *testing.T) {
	cases := []struct {
		in   string
		want markupClass
	}{
		{"<div>", markupOpening},
		{`<div class="a">`, markupOpening},
		{`<div class="<%= c %>">`, markupOpening},
		{"<div\n  class=\"a\"\n>", markupOpening},
		{"</div>", markupClosing},
		{"<br />", markupSelfClosing},
		{`<input type="text" name="username" />`, markupSelfClosing},
		{"Hello World", markupText},
		{"<p>Hello</p>", markupOther},
		{"<!DOCTYPE html>", markupOther},
		{"<!-- note -->", markupOther},
		{"Hello <b>world</b>", markupOther},
	}
	for _, tc := range cases {
		if got := classifyMarkup(tc.in); got != tc.want {
			t.Fatalf("classifyMarkup(%q)\nwant %d\ngot  %d", tc.in, tc.want, got)
		}
	}
}

func TestMarkupDelta(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"<div>", 1},
		{"<custom-element>", 1},
		{"<br>", 0},
		{"<IMG src=\"a.png\">", 0},
		{`<input type="text" name="username" required>`, 0},
		{"<svg/>", 0},
		{"<span />", 0},
		{"</div>", -1},
		{"<p>Hello</p>", 0},
		{"<p>Hello", 1},
		{"Hello</p>", -1},
		{"</span></div>", -2},
		{"<td>a</td><td>", 1},
		{"<li>a<br>b", 1},
		{"<!DOCTYPE html>", 0},
		{"text", 0},
	}
	for _, tc := range cases {
		if got := markupDelta(tc.in); got != tc.want {
			t.Fatalf("markupDelta(%q)\nwant %d\ngot  %d", tc.in, tc.want, got)
		}
	}
}

func TestLayoutMarkup(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		level int
		want  []markupLine
	}{
		{"opening", "<div>", 1, []markupLine{{1, "<div>"}}},
		{"closing", "</div>", 1, []markupLine{{0, "</div>"}}},
		{"closing floor", "</div>", 0, []markupLine{{0, "</div>"}}},
		{"text", "Hello World", 0, []markupLine{{1, "Hello World"}}},
		{
			"multi-line tag",
			"<div\n    class=\"a\"\n\n  id=\"b\"\n>",
			1,
			[]markupLine{{1, "<div"}, {2, `class="a"`}, {2, `id="b"`}, {1, ">"}},
		},
		{
			"multi-line self-closing",
			"<img\nsrc=\"a.png\"\n/>",
			0,
			[]markupLine{{0, "<img"}, {1, `src="a.png"`}, {0, "/>"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := layoutMarkup(tc.in, tc.level)
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(markupLine{})); diff != "" {
				t.Fatalf("layout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

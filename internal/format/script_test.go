package format

import (
	"errors"
	"testing"
)

func TestScriptLang(t *testing.T) {
	cases := []struct {
		in   string
		want Lang
	}{
		{"<script>", LangJS},
		{`<script type="text/javascript">`, LangJS},
		{`<script type="module" defer>`, LangJS},
		{`<script type="application/json">`, LangJSON},
		{`<script type="application/ld+json">`, LangJSON},
		{`<script type="text/template">`, LangOther},
		{"<style>", LangCSS},
		{`<style media="print">`, LangCSS},
	}
	for _, tc := range cases {
		if got := scriptLang(tc.in); got != tc.want {
			t.Fatalf("scriptLang(%q)\nwant %v\ngot  %v", tc.in, tc.want, got)
		}
	}
}

func TestIndentFormatter(t *testing.T) {
	in := "function a() {\nif (x) {\ncall([\n1,\n2\n]);\n}\n\n}"
	want := "function a() {\n  if (x) {\n    call([\n      1,\n      2\n    ]);\n  }\n\n}"
	got, err := IndentFormatter{}.FormatScript(in, LangJS, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, got)
	}
}

func TestIndentFormatterIgnoresLiterals(t *testing.T) {
	in := "var s = \"{\";\nvar t = '}';\n// {\nx();"
	want := in
	got, _ := IndentFormatter{}.FormatScript(in, LangJS, DefaultOptions())
	if got != want {
		t.Fatalf("braces in literals counted\nwant %q\ngot  %q", want, got)
	}
}

func TestIndentFormatterTemplateLiteral(t *testing.T) {
	in := "const html = `\n   <b>{</b>\n`;\nif (a) {\nb();\n}"
	want := "const html = `\n   <b>{</b>\n`;\nif (a) {\n\tb();\n}"
	opt := DefaultOptions()
	opt.UseTabs = true
	got, _ := IndentFormatter{}.FormatScript(in, LangJS, opt)
	if got != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, got)
	}
}

func TestIndentFormatterOtherDedents(t *testing.T) {
	in := "<b>x</b>\n      <i>y</i>\n        <u>z</u>"
	want := "<b>x</b>\n<i>y</i>\n  <u>z</u>"
	got, _ := IndentFormatter{}.FormatScript(in, LangOther, DefaultOptions())
	if got != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, got)
	}
}

func TestEsbuildFormatter(t *testing.T) {
	got, err := EsbuildFormatter{}.FormatScript("if(a){b()}", LangJS, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	want := "if (a) {\n  b();\n}"
	if got != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, got)
	}
}

func TestEsbuildFormatterIndentWidth(t *testing.T) {
	opt := DefaultOptions()
	opt.IndentWidth = 4
	got, err := EsbuildFormatter{}.FormatScript("body{color:red}", LangCSS, opt)
	if err != nil {
		t.Fatal(err)
	}
	want := "body {\n    color: red;\n}"
	if got != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, got)
	}
}

func TestEsbuildFormatterRefuses(t *testing.T) {
	for _, src := range []string{"a(); // note", "/* c */ a();", "var x = <%= raw @json %>;", `var s = "</SCRIPT>";`} {
		_, err := EsbuildFormatter{}.FormatScript(src, LangJS, DefaultOptions())
		if !errors.Is(err, ErrScriptRefused) {
			t.Fatalf("expected refusal for %q, got %v", src, err)
		}
	}
}

func TestEsbuildFormatterSyntaxError(t *testing.T) {
	if _, err := (EsbuildFormatter{}).FormatScript("if (", LangJS, DefaultOptions()); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestChainFallsBack(t *testing.T) {
	sf := DefaultScriptFormatter()
	got, err := sf.FormatScript("x();\n// done", LangJS, DefaultOptions())
	var de *DelegateError
	if !errors.As(err, &de) {
		t.Fatalf("expected a delegate error, got %v", err)
	}
	if got != "x();\n// done" {
		t.Fatalf("fallback output not returned: %q", got)
	}

	opt := DefaultOptions()
	opt.ScriptDelegate = false
	if _, err := sf.FormatScript("x()", LangJS, opt); err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
}

package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

// inlineSeeds cover constructs the testdata templates may miss.
var inlineSeeds = []string{
	"",
	"<%=user.name%>",
	"<% if a %>\n<% items.each do |i| %>\n<%= i %>\n<% end %>\n<% end %>",
	"<a><%= x %></a>",
	"<p>a</p>\n\n\n\n<p>b</p>",
	"<%# comment %>",
	"<%- x -%>\n<%== raw %>",
	"<script>\nfunction f(){\nreturn 1;\n}\n</script>",
	"<style>\n.a{color:red}\n</style>",
	"<div\nclass=\"a\"\n>\n</div>",
	"<%= link_to 'x', y do %>\n<span>z</span>\n<% end %>",
	"<% x = \"a %> b\" %>",
	"<%= oops",
	"<div",
	"</div></div></div>",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.erb файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !strings.HasSuffix(path, ".erb") {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

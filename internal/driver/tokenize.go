package driver

import (
	"erbfmt/internal/lexer"
	"erbfmt/internal/source"
	"erbfmt/internal/token"
)

// TokenizeResult holds the tokens of one template.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
}

// Tokenize loads path and splits it into tokens.
func Tokenize(path string) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return tokenizeFile(fs, fileID), nil
}

// TokenizeSource tokenizes in-memory bytes, such as stdin.
func TokenizeSource(name string, data []byte) *TokenizeResult {
	fs := source.NewFileSet()
	return tokenizeFile(fs, fs.AddVirtual(name, data))
}

func tokenizeFile(fs *source.FileSet, id source.FileID) *TokenizeResult {
	file := fs.Get(id)
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  lexer.Tokenize(string(file.Content)),
	}
}

package source

type (
	// FileID uniquely identifies a template within a FileSet.
	FileID uint32
	// FileFlags records how the bytes on disk differ from Content.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (stdin, test).
	FileVirtual FileFlags = 1 << iota // не с диска
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded template. Content is LF-only and without a BOM.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// Has reports whether all bits of flag are set.
func (f *File) Has(flag FileFlags) bool {
	return f.Flags&flag == flag
}

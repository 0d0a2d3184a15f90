package driver

import (
	"crypto/sha256"
	"encoding/binary"

	"erbfmt/internal/format"
	"erbfmt/internal/version"
)

// Digest is a SHA-256 cache key.
type Digest [32]byte

// cacheKey: H(version || options || range || content). Any formatter upgrade
// or option change yields a different key.
func cacheKey(opt format.Options, lines *LineRange, content []byte) Digest {
	h := sha256.New()
	_, _ = h.Write([]byte(version.Version))
	_, _ = h.Write([]byte{0})

	var buf [8]byte
	writeInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(n))) // #nosec G115 -- bit pattern only
		_, _ = h.Write(buf[:])
	}
	writeBool := func(b bool) {
		if b {
			_, _ = h.Write([]byte{1})
			return
		}
		_, _ = h.Write([]byte{0})
	}
	writeInt(opt.IndentWidth)
	writeBool(opt.UseTabs)
	writeBool(opt.PreserveBlankLines)
	writeBool(opt.ScriptDelegate)
	if lines != nil {
		writeInt(lines.From)
		writeInt(lines.To)
	} else {
		writeInt(-1)
	}
	_, _ = h.Write(content)

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

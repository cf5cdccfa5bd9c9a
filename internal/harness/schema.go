// Package harness implements the in-container test driver: it reads one
// configuration document, synthesizes and compiles a test program around the
// user's solve function, runs it under resource limits, and writes a result
// document. The same binary serves the compile+run path and the reuse path
// used by optimized batches.
package harness

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"judgemicro/internal/judge/codec"
)

// SchemaFingerprint hashes everything that shapes the compiled test_runner:
// the ordered (name, type) parameter list, the function type, the language,
// and the compiler selection. Two configs with equal fingerprints may share a
// binary; input values and expected maps deliberately stay out of the hash.
func SchemaFingerprint(doc *codec.Document) string {
	h := blake3.New()
	writeField(h, string(doc.Language))
	writeField(h, doc.Standard)
	writeField(h, doc.Flags)
	writeField(h, string(doc.FunctionType))
	for _, p := range doc.Params {
		writeField(h, p.Name)
		writeField(h, string(p.Type))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(w io.Writer, s string) {
	fmt.Fprintf(w, "%d:%s;", len(s), s)
}

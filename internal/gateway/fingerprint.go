package gateway

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/packsmith-labs/packsmith/internal/addon"
)

// Fingerprint builds a stable textual summary of the inputs for cache-key
// derivation. Text-bearing inputs contribute their content; binary inputs
// contribute a structural marker (name, origin, size). It only needs to be
// consistent for identical input sets, not cryptographically strong; the key
// deriver hashes it afterwards.
func Fingerprint(inputs []addon.UploadedInput) string {
	var b strings.Builder
	for _, in := range inputs {
		b.WriteString(in.Name)
		b.WriteByte(0)
		if isText(in.Bytes) {
			b.Write(in.Bytes)
		} else {
			b.WriteString(string(in.Origin))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(len(in.Bytes)))
		}
		b.WriteByte(0)
	}
	return b.String()
}

func isText(data []byte) bool {
	return utf8.Valid(data) && !bytes.ContainsRune(data, 0)
}

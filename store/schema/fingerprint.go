package schema

import (
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"

	"github.com/pagekit-db/pagekit/internal/buf"
)

// Fingerprint uniquely and deterministically identifies a table by its
// schema. Two tables with identical fingerprints are treated as the same
// table.
type Fingerprint uint64

// TableFingerprint derives the registry key for a table from its name and
// column set. Names are NFKC-normalized and lower-cased so declarations that
// differ only in case or Unicode representation map to the same table, and
// columns are hashed in sorted order so declaration order is irrelevant.
func TableFingerprint(table string, columns []string) Fingerprint {
	canon := make([]string, len(columns))
	for i, c := range columns {
		canon[i] = canonical(c)
	}
	slices.Sort(canon)

	h, _ := blake2b.New256(nil)
	h.Write([]byte(canonical(table)))
	for _, c := range canon {
		h.Write([]byte{0})
		h.Write([]byte(c))
	}
	sum := h.Sum(nil)
	return Fingerprint(buf.U64LE(sum))
}

func canonical(s string) string {
	return norm.NFKC.String(strings.ToLower(s))
}

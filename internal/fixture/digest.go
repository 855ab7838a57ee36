package fixture

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DigestDomain prefixes fixture digests. The version suffix allows the
// algorithm to change without old digests colliding with new ones.
const DigestDomain = "linecheck/fixture/v1"

// Digest returns a content hash of the fixture's lines.
// Format: hex(SHA256(domain + 0x00 + lines joined by LF))
//
// Line terminators are normalized on load, so the same fixture checked out
// with CRLF and LF endings has the same digest.
func (f *Fixture) Digest() string {
	h := sha256.New()
	h.Write([]byte(DigestDomain))
	h.Write([]byte{0x00})
	h.Write([]byte(strings.Join(f.Lines, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}

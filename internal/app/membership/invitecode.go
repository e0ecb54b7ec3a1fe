// internal/app/membership/invitecode.go
package membership

import "crypto/rand"

// CodeLength is the length of a company invite code.
const CodeLength = 6

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I).
// Codes are stored uppercase; joins upper-case the input before lookup.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewInviteCode returns a fresh 6-character code, each character drawn
// uniformly from the restricted alphabet. There is no uniqueness loop;
// with ~1 billion combinations the unique index on invite_code turns
// the rare collision into a retryable conflict at creation time.
func NewInviteCode() string {
	// 32 characters divide 256 evenly, so a plain modulus is uniform.
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform's entropy source is
		// broken; nothing sensible to do but stop.
		panic("invitecode: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

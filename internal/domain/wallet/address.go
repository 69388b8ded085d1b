package wallet

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidAddress is returned for strings that are not 20-byte hex addresses.
var ErrInvalidAddress = errors.New("invalid wallet address")

// IsHexAddress reports whether s is a 0x-prefixed 20-byte hex string.
func IsHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// NormalizeAddress returns the EIP-55 mixed-case checksum form of an address.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !IsHexAddress(s) {
		return "", errors.Wrapf(ErrInvalidAddress, "%q", s)
	}
	lower := strings.ToLower(s[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out), nil
}

// HasValidChecksum reports whether s is a hex address whose letter case is
// either uniform (no checksum) or a correct EIP-55 checksum.
func HasValidChecksum(s string) bool {
	s = strings.TrimSpace(s)
	normalized, err := NormalizeAddress(s)
	if err != nil {
		return false
	}
	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return s[2:] == normalized[2:]
}

// ShortAddress abbreviates an address for display, e.g. 0x5aAe…eAed.
func ShortAddress(s string) string {
	if len(s) < 10 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

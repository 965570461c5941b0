package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TruncateAddress shortens a wallet address to its first start and last end
// characters joined by "...". Addresses that already fit are returned as is.
func TruncateAddress(addr string, start, end int) string {
	if utf8.RuneCountInString(addr) <= start+end {
		return addr
	}
	r := []rune(addr)
	return string(r[:start]) + "..." + string(r[len(r)-end:])
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail is a shape check only; the server has the final word.
func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidateTronAddress reports whether addr looks like a TRON base58 address:
// 34 characters starting with T.
func ValidateTronAddress(addr string) bool {
	return len(addr) == 34 && strings.HasPrefix(addr, "T")
}

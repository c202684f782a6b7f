// Package email normalizes and masks requester contact addresses.
package email

import (
	"net/mail"
	"strings"
)

// Normalize trims whitespace and lowercases the domain part.
func Normalize(address string) string {
	address = strings.TrimSpace(address)
	at := strings.LastIndexByte(address, '@')
	if at <= 0 {
		return address
	}
	return address[:at] + "@" + strings.ToLower(address[at+1:])
}

// IsValid reports whether address is a bare RFC 5322 address (no display name).
func IsValid(address string) bool {
	if address == "" {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	return parsed.Address == address && parsed.Name == ""
}

// Mask hides the local part for log lines: "maria@x.org" becomes "m***@x.org".
func Mask(address string) string {
	at := strings.LastIndexByte(address, '@')
	if at <= 0 {
		return "***"
	}
	runes := []rune(address[:at])
	return string(runes[0]) + "***" + address[at:]
}

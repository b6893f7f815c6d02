package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateHMAC returns the hex HMAC-SHA256 of data under secret
func GenerateHMAC(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ETag returns a strong entity tag for a response body
func ETag(body []byte, secret string) string {
	return `"` + GenerateHMAC(body, secret)[:32] + `"`
}

// MatchesETag reports whether an If-None-Match header value matches tag
func MatchesETag(header, tag string) bool {
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate != "" && candidate == tag {
			return true
		}
	}
	return false
}

package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

// All verification failures collapse into one generic error so responses
// leak nothing about which check tripped.
var errVerification = errors.New("webhook verification failed")

// verifySignature checks a "sha1=<hex>" header against the HMAC-SHA1 of
// the raw request body. GitHub's legacy X-Hub-Signature scheme.
func verifySignature(body []byte, header, secret string) error {
	if secret == "" || header == "" {
		return errVerification
	}

	algorithm, hexDigest, found := strings.Cut(header, "=")
	if !found || algorithm != "sha1" {
		return errVerification
	}

	provided, err := hex.DecodeString(hexDigest)
	if err != nil {
		return errVerification
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)

	if subtle.ConstantTimeCompare(mac.Sum(nil), provided) != 1 {
		return errVerification
	}
	return nil
}

// computeSignature returns the hex HMAC-SHA1 digest of body.
func computeSignature(body []byte, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// formatSignatureHeader formats a hex digest as an X-Hub-Signature value.
func formatSignatureHeader(hexDigest string) string {
	return "sha1=" + hexDigest
}

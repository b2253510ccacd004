package gateways

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature accepts a bare hex digest or one prefixed with "sha256=".
func VerifySignature(secret string, body []byte, signature string) error {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return errs.NewValueIsRequiredError("signature")
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("signature", err)
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	if !hmac.Equal(got, want) {
		return errs.NewValueIsInvalidErrorWithCause("signature", errors.New("digest mismatch"))
	}
	return nil
}

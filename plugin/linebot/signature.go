// Package linebot implements the inbound LINE Messaging API surface:
// webhook signature validation, event parsing, and the reply client.
package linebot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ValidateSignature checks the X-Line-Signature header against the raw
// request body. The signature is the base64-encoded HMAC-SHA256 of the body
// keyed by the channel secret.
func ValidateSignature(channelSecret string, body []byte, signature string) bool {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(channelSecret))
	_, _ = mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}

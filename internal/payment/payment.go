// Package payment verifies gateway checkout callbacks and issues refund
// references. The storefront loads the gateway's checkout SDK client-side;
// the server only validates the signed result and never stores card data.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var ErrBadSignature = errors.New("payment signature mismatch")

// Signature computes the gateway's checkout signature: hex-encoded
// HMAC-SHA256 over "<gatewayOrderID>|<paymentID>". Both ids are minted by
// the gateway during the client-side checkout, so the client can relay the
// exact payload the gateway signed.
func Signature(gatewayOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", gatewayOrderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCheckout checks a checkout callback signature in constant time.
func VerifyCheckout(gatewayOrderID, paymentID, signature, secret string) error {
	expected := Signature(gatewayOrderID, paymentID, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

// NewRefundID issues a refund reference in the gateway's REF-<millis> shape.
func NewRefundID() string {
	return fmt.Sprintf("REF-%d", time.Now().UnixMilli())
}

package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"game-vip-service/internal/domain/model"
)

// VoucherSigner computes and verifies voucher signatures with
// HMAC-SHA256(secret, canonicalString), hex-encoded lowercase. The canonical
// string format is a compatibility contract with every voucher in the wild.
type VoucherSigner struct {
	secret []byte
}

func NewVoucherSigner(secret string) *VoucherSigner {
	return &VoucherSigner{secret: []byte(secret)}
}

// Sign returns the signature for a payload.
func (s *VoucherSigner) Sign(payload model.VoucherPayload) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload.CanonicalString()))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares in constant time.
func (s *VoucherSigner) Verify(payload model.VoucherPayload, signature string) bool {
	return hmac.Equal([]byte(s.Sign(payload)), []byte(signature))
}

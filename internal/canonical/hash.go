package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainFrame   = "olp/frame/v1"
	DomainReceipt = "olp/receipt/v1"
)

// Hash computes SHA256(domain || 0x00 || MarshalNFC(v)) as lowercase hex.
// The null separator prevents domain/data boundary ambiguity.
func Hash(domain string, v any) (string, error) {
	data, err := MarshalNFC(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashBytes(domain, data), nil
}

func hashBytes(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

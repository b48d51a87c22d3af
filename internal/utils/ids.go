package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const referralCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewID returns a random record identifier
func NewID() string {
	return uuid.NewString()
}

// NewReferralCode returns an 8 character code without ambiguous characters
func NewReferralCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(referralCharset)))
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(referralCharset[n.Int64()])
	}
	return sb.String(), nil
}

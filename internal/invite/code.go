// Package invite implements the invite code lifecycle for family groups:
// short-lived temporary codes for quick joins and a permanent code per
// group that admins can rotate.
package invite

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// TempCodeLength is the length of a short-lived join code.
	TempCodeLength = 6
	// PermanentCodeLength is the length of a group's standing invite code.
	PermanentCodeLength = 9
	// TempCodeTTL is how long a temporary code stays valid.
	TempCodeTTL = 15 * time.Minute
)

// codeAlphabet omits 0, O, 1, I and L so codes read aloud or typed from a
// screenshot do not get confused.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// generateCode returns a random uppercase code of the given length drawn
// from the unambiguous alphabet.
func generateCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// NewTempCode returns a fresh 6-character temporary code.
func NewTempCode() (string, error) {
	return generateCode(TempCodeLength)
}

// NewPermanentCode returns a fresh 9-character permanent code.
func NewPermanentCode() (string, error) {
	return generateCode(PermanentCodeLength)
}

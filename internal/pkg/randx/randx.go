/*
Package randx provides functions for generating cryptographically secure random identifiers.

It generates fixed-length Base62 community invite codes and standard UUID message IDs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// InviteCodeLength is the fixed length of a generated community invite code.
	InviteCodeLength = 8
)

// InviteCode generates a Base62-encoded community invite code using crypto/rand.
// It returns a string of length InviteCodeLength and any error encountered.
func InviteCode() (string, error) {
	result := make([]byte, InviteCodeLength)

	for i := range InviteCodeLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for invite code: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a relayed message.
func MessageID() string {
	return uuid.New().String()
}

// IsValidInviteCode checks if the given string is a well-formed invite code:
// correct length and every character in the Base62 set.
func IsValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// Package domain holds shared domain primitives: identifier types, hash
// values, and the bounds the ledger enforces on free-form fields. Keeping
// them here lets feature packages agree on types without importing each
// other.
package domain

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DomainID identifies a reputation domain. IDs are assigned sequentially
// starting at 0 and are never reused.
type DomainID uint64

// ParseDomainID validates and returns a DomainID from its decimal form.
func ParseDomainID(s string) (DomainID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid domain id %q", s)
	}
	return DomainID(n), nil
}

func (d DomainID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// AccountID is the authenticated account identity supplied by the host
// environment. The ledger treats it as an opaque, non-empty string.
type AccountID string

// ParseAccountID validates and returns an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("account id is empty")
	}
	if len(s) > MaxAccountLen {
		return "", fmt.Errorf("account id exceeds %d characters", MaxAccountLen)
	}
	return AccountID(s), nil
}

func (a AccountID) String() string {
	return string(a)
}

// IsZero reports whether the account id is unset.
func (a AccountID) IsZero() bool {
	return a == ""
}

// HashSize is the fixed length of evidence and activity data hashes.
const HashSize = 32

// Hash is a fixed 32-byte content hash. The ledger never interprets it; it
// only checks the length and stores it for audit.
type Hash []byte

// ParseHash decodes a hex-encoded 32-byte hash.
func ParseHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("hash is not valid hex")
	}
	if len(b) != HashSize {
		return nil, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	return Hash(b), nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h)
}

// Valid reports whether the hash has the required fixed length.
func (h Hash) Valid() bool {
	return len(h) == HashSize
}

// Field bounds shared across the ledgers.
const (
	MaxTitleLen       = 64
	MaxDescriptionLen = 256
	MaxShortCodeLen   = 32
	MaxNoteLen        = 140
	MaxAccountLen     = 128

	MaxTags              = 5
	MaxVerificationTypes = 10
	MaxAuthorizedViewers = 10
)

package dealer

import (
	"bytes"
	"crypto/sha256"
	"errors"
)

const (
	CommitmentSize = 32
	MinSecretSize  = 16
	MaxSecretSize  = 32
)

var (
	ErrBadCommitmentSize  = errors.New("dealer: commitment must be 32 bytes")
	ErrBadSecretSize      = errors.New("dealer: secret must be 16 to 32 bytes")
	ErrCommitmentMismatch = errors.New("dealer: secret does not match commitment")
)

// Commit hashes a seat's secret into the 32-byte commitment published during
// the commit phase.
func Commit(secret []byte) ([]byte, error) {
	if err := ValidateSecret(secret); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(secret)
	return sum[:], nil
}

func ValidateSecret(secret []byte) error {
	if len(secret) < MinSecretSize || len(secret) > MaxSecretSize {
		return ErrBadSecretSize
	}
	return nil
}

func ValidateCommitment(commitment []byte) error {
	if len(commitment) != CommitmentSize {
		return ErrBadCommitmentSize
	}
	return nil
}

// VerifyReveal checks a revealed secret against its prior commitment.
func VerifyReveal(secret, commitment []byte) error {
	if err := ValidateSecret(secret); err != nil {
		return err
	}
	if err := ValidateCommitment(commitment); err != nil {
		return err
	}
	sum := sha256.Sum256(secret)
	if !bytes.Equal(sum[:], commitment) {
		return ErrCommitmentMismatch
	}
	return nil
}

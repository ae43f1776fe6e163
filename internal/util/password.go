package util

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// MinPasswordLength is the shortest password GeneratePassword will produce.
const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("password length must be at least 8")

// GeneratePassword returns a random password drawn from an alphabet without
// look-alike characters (0/O, 1/l/I).
func GeneratePassword(length int) (string, error) {
	if length < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	limit := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package digest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInputsChanged = errors.New("ballot file does not match recorded inputs hash")

// InputsHash returns the hex HMAC-SHA256 of data keyed by salt
func InputsHash(data []byte, salt string) string {
	return hex.EncodeToString(sum(data, salt))
}

// VerifyInputs checks data against a previously recorded inputs hash
func VerifyInputs(data []byte, hash, salt string) error {
	want, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(sum(data, salt), want) {
		return ErrInputsChanged
	}
	return nil
}

// ShortCode creates a short, deterministic label for a run
func ShortCode(runID, inputsHash string) string {
	// first 8 bytes are plenty for a human-facing label
	return base62Encode(sum([]byte(runID), inputsHash)[:8])
}

func sum(data []byte, key string) []byte {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(data)
	return h.Sum(nil)
}

// base62Encode converts up to 8 bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}

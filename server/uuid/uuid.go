// Package uuid generates short random identifiers: a version 4 UUID encoded
// in base 62, which is URL and log friendly.
package uuid

import (
	"math/big"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func New() string {
	value := uuid.New()

	return encode(value[:])
}

// encode writes the least significant digit first.
func encode(data []byte) string {
	var (
		value big.Int
		base  big.Int
		rem   big.Int
	)

	value.SetBytes(data)
	base.SetInt64(int64(len(alphabet)))

	result := make([]byte, 0, 22)

	for value.Sign() != 0 {
		value.DivMod(&value, &base, &rem)
		result = append(result, alphabet[rem.Int64()])
	}

	return string(result)
}

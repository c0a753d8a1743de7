package tokenvaluegenerator

import (
	"crypto/rand"
	"encoding/base64"
	"herbarium/internal/core/domain/token"
)

// Values carry 256 bits of CSPRNG entropy, encoded to 43 URL-safe characters
// so they can ride in a path segment without escaping.
const randomBytes = 32

type CryptoRandom struct{}

func NewCryptoRandom() *CryptoRandom {
	return &CryptoRandom{}
}

func (g *CryptoRandom) GenerateTokenValue() token.Value {
	b := make([]byte, randomBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; there is nothing sensible to degrade to.
		panic(err)
	}
	return token.Value(base64.RawURLEncoding.EncodeToString(b))
}

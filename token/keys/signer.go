package keys

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs tokens and resolves the key to verify them with.
type Signer interface {
	Sign(claims jwt.MapClaims) (string, error)
	VerificationKey(token *jwt.Token) (any, error)
	JWKS() JWKS
}

// KeyPairSigner signs with a single RS256 key.
type KeyPairSigner struct {
	keyPair *KeyPair
}

var _ Signer = (*KeyPairSigner)(nil)

func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{keyPair: keyPair}
}

func (s *KeyPairSigner) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(s.keyPair.SigningMethod(), claims)
	token.Header["kid"] = s.keyPair.KeyID

	signed, err := token.SignedString(s.keyPair.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *KeyPairSigner) VerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	if kid, _ := token.Header["kid"].(string); kid != "" && kid != s.keyPair.KeyID {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return s.keyPair.PublicKey(), nil
}

func (s *KeyPairSigner) JWKS() JWKS {
	return JWKS{Keys: []JWK{s.keyPair.JWK()}}
}

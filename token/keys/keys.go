// Package keys holds the RSA signing key used by the stub identity provider
// and publishes it as a JWK set.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

const (
	RS256 = "RS256"

	minKeyBits = 2048
)

// KeyPair is an RS256 signing key with its key id.
type KeyPair struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

func GenerateRSAKeyPair(keyID string, bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, max(bits, minKeyBits))
	if err != nil {
		return nil, errors.Wrapf(err, "generate RSA key")
	}
	return &KeyPair{KeyID: keyID, PrivateKey: privateKey}, nil
}

// LoadOrGenerate reads a PKCS#1 PEM key from path, creating and saving a
// new one when the file does not exist. An empty path always generates.
func LoadOrGenerate(keyID, path string) (*KeyPair, error) {
	if path == "" {
		return GenerateRSAKeyPair(keyID, minKeyBits)
	}

	data, err := os.ReadFile(path)
	if err == nil {
		return LoadKeyPairFromPEM(keyID, data)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "read signing key")
	}

	kp, err := GenerateRSAKeyPair(keyID, minKeyBits)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrapf(err, "create key folder")
	}
	if err := os.WriteFile(path, kp.PrivateKeyPEM(), 0o600); err != nil {
		return nil, errors.Wrapf(err, "write signing key")
	}
	return kp, nil
}

func LoadKeyPairFromPEM(keyID string, pemData []byte) (*KeyPair, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "parse RSA private key")
	}
	return &KeyPair{KeyID: keyID, PrivateKey: privateKey}, nil
}

func (kp *KeyPair) PublicKey() *rsa.PublicKey {
	return &kp.PrivateKey.PublicKey
}

func (kp *KeyPair) SigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}

func (kp *KeyPair) PrivateKeyPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(kp.PrivateKey),
	})
}

func (kp *KeyPair) PublicKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

func (kp *KeyPair) JWK() JWK {
	pub := kp.PublicKey()
	return JWK{
		Kty: "RSA",
		Use: "sig",
		Kid: kp.KeyID,
		Alg: RS256,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

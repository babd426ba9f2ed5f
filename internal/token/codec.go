package token

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed is returned by Decode when the input is not a well-formed
	// three-part signed token.
	ErrMalformed = errors.New("malformed token")
	// ErrBadSignature is returned by Decode when the signature does not
	// verify against the configured key.
	ErrBadSignature = errors.New("token signature invalid")
)

// Codec encodes and decodes signed claim sets. Decoding verifies the
// signature only; interpreting timing and type claims is the Verifier's job.
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
}

// NewHMACCodec returns a Codec signing and verifying with HS256 and the
// given shared secret.
func NewHMACCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: hs256 requires a non-empty secret")
	}
	return &Codec{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
	}, nil
}

// NewKeyPairCodec returns a Codec signing with the given private key and
// verifying with the public key. The method is RS256 for RSA keys and ES256
// for ECDSA keys.
func NewKeyPairCodec(privateKey crypto.Signer, publicKey crypto.PublicKey) (*Codec, error) {
	var method jwt.SigningMethod
	switch publicKey.(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return nil, errors.New("token: unsupported key type")
	}
	return &Codec{
		method:    method,
		signKey:   privateKey,
		verifyKey: publicKey,
	}, nil
}

// Encode signs claims and returns the compact transport string.
// Deterministic for HS256 given the same key and claims; fails only on key
// misconfiguration.
func (c *Codec) Encode(claims *Claims) (string, error) {
	t := jwt.NewWithClaims(c.method, claims)
	return t.SignedString(c.signKey)
}

// Decode parses the transport string and verifies its signature. It returns
// ErrMalformed for input that is not a well-formed signed structure,
// ErrBadSignature when the signature does not verify, and the parsed claim
// set otherwise. Timing and type claims are returned uninterpreted.
func (c *Codec) Decode(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	t, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.verifyKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrBadSignature
		}
		return nil, ErrMalformed
	}
	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, ErrMalformed
	}
	return claims, nil
}

package token

// TestSigningSecret signs tokens in tests. Mirrors the development default
// so fixtures minted here verify against a default-configured stack.
const TestSigningSecret = "corebank-test-secret"

// NewTestCodec returns an HS256 codec keyed with TestSigningSecret.
// Panics on failure; for tests only.
func NewTestCodec() *Codec {
	c, err := NewHMACCodec([]byte(TestSigningSecret))
	if err != nil {
		panic(err)
	}
	return c
}

package provisioning

import "crypto/rand"

const (
	apiKeyLength   = 48
	apiKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateAPIKey returns a fresh 48-character lowercase-alphanumeric key.
// The key is used directly as a bearer credential, so it is drawn from
// crypto/rand with rejection sampling to keep the alphabet distribution
// uniform.
func GenerateAPIKey() (string, error) {
	// 252 is the largest multiple of len(apiKeyAlphabet) below 256.
	const limit = 252

	out := make([]byte, 0, apiKeyLength)
	buf := make([]byte, apiKeyLength)
	for len(out) < apiKeyLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, apiKeyAlphabet[int(b)%len(apiKeyAlphabet)])
			if len(out) == apiKeyLength {
				break
			}
		}
	}
	return string(out), nil
}

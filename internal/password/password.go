package password

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // only used to verify legacy hashes
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations matches the werkzeug default for pbkdf2:sha256.
	DefaultIterations = 600_000
	// DefaultSaltLength is the number of salt characters generated per hash.
	DefaultSaltLength = 16

	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	ErrEmptyPassword     = errors.New("password is required")
	ErrInvalidHashFormat = errors.New("invalid password hash format")
	ErrUnsupportedMethod = errors.New("unsupported password hash method")
)

var digests = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// Hasher derives salted PBKDF2 password hashes.
// Encoded hashes look like pbkdf2:sha256:600000$<salt>$<hex digest>, which is
// the format werkzeug writes, so accounts created by the old site keep working.
type Hasher struct {
	Iterations int
	SaltLength int
}

// NewHasher returns a Hasher with the default parameters.
func NewHasher() *Hasher {
	return &Hasher{
		Iterations: DefaultIterations,
		SaltLength: DefaultSaltLength,
	}
}

// Hash returns the encoded hash of password using a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt, err := randomSalt(h.SaltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.Iterations, salt, hex.EncodeToString(key)), nil
}

// Verify reports whether password matches the encoded hash.
// The digest comparison runs in constant time.
func (h *Hasher) Verify(encoded, password string) (bool, error) {
	if encoded == "" || password == "" {
		return false, nil
	}
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return false, ErrInvalidHashFormat
	}
	method, salt, want := parts[0], parts[1], parts[2]

	newHash, iterations, err := parseMethod(method)
	if err != nil {
		return false, err
	}
	wantBytes, err := hex.DecodeString(want)
	if err != nil || len(wantBytes) == 0 {
		return false, ErrInvalidHashFormat
	}

	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(wantBytes), newHash)
	return subtle.ConstantTimeCompare(got, wantBytes) == 1, nil
}

// parseMethod parses "pbkdf2:<digest>[:<iterations>]".
func parseMethod(method string) (func() hash.Hash, int, error) {
	fields := strings.Split(method, ":")
	if len(fields) < 2 || len(fields) > 3 || fields[0] != "pbkdf2" {
		return nil, 0, ErrUnsupportedMethod
	}
	newHash, ok := digests[fields[1]]
	if !ok {
		return nil, 0, ErrUnsupportedMethod
	}
	iterations := DefaultIterations
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n <= 0 {
			return nil, 0, ErrInvalidHashFormat
		}
		iterations = n
	}
	return newHash, iterations, nil
}

func randomSalt(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("salt length must be positive")
	}
	limit := big.NewInt(int64(len(saltChars)))
	var b strings.Builder
	b.Grow(n)
	for range n {
		i, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltChars[i.Int64()])
	}
	return b.String(), nil
}

package auth

import (
	"crypto/md5" //nolint:gosec // the server protocol mandates MD5
	"crypto/sha256"
	"encoding/hex"
)

// Hasher computes the login response from the credentials and the session
// challenge.
type Hasher func(user, session, password string) string

// MD5Hasher returns hex(md5("user:session:password")), the scheme Blue Iris
// uses.
func MD5Hasher(user, session, password string) string {
	sum := md5.Sum([]byte(user + ":" + session + ":" + password)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// SHA256Hasher returns hex(sha256("user:session:password")).
func SHA256Hasher(user, session, password string) string {
	sum := sha256.Sum256([]byte(user + ":" + session + ":" + password))
	return hex.EncodeToString(sum[:])
}

/*
auth.go - Admin gate middleware

PURPOSE:
  Protects mutating record endpoints (titles, holidays, access log
  administration, export) with a shared admin secret. Clients send the
  plain secret in the X-Admin-Secret header; the server only ever holds
  the SHA-256 hash of the expected secret.

COMPARISON:
  The presented secret is hashed and compared against the configured hash
  with crypto/subtle so the check takes the same time whether the first
  or the last byte differs.

SEE ALSO:
  - server.go: Which routes sit behind the gate
  - config: Where the hash comes from
*/
package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// AdminSecretHeader carries the plain admin secret.
const AdminSecretHeader = "X-Admin-Secret"

// HashSecret returns the lowercase hex SHA-256 of a secret, the form the
// server stores and compares against.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// AdminOnly rejects requests whose X-Admin-Secret header does not hash to
// expectedHash. An empty expectedHash disables the admin surface entirely
// rather than leaving it open.
func AdminOnly(expectedHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expectedHash == "" {
				writeError(w, http.StatusServiceUnavailable, "admin_disabled",
					"la administración está deshabilitada: no hay secreto configurado")
				return
			}

			presented := HashSecret(r.Header.Get(AdminSecretHeader))
			if subtle.ConstantTimeCompare([]byte(presented), []byte(expectedHash)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "secreto de administración inválido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

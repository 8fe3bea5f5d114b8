// Package authmw guards operator-only routes with a static bearer token.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const realm = `Bearer realm="carepath"`

// BearerToken returns middleware that admits a request only when its
// Authorization header carries exactly the configured token. An empty
// configured token admits nothing.
func BearerToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				deny(w, "missing or malformed authorization header")
				return
			}

			// compare in constant time
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				deny(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", realm)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}` + "\n"))
}

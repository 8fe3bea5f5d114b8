package webui

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	csrfCookie = "carepath_csrf"
	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

type csrfKey struct{}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CSRF returns double-submit cookie middleware. Safe requests get a token
// cookie when they lack one; unsafe requests must echo the cookie value in
// the csrf_token form field or the X-CSRF-Token header.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(csrfCookie); err == nil && c.Value != "" {
				token = c.Value
			}

			if !safeMethod(r.Method) {
				got := r.PostFormValue(csrfField)
				if got == "" {
					got = r.Header.Get(csrfHeader)
				}
				if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
					http.Error(w, "invalid csrf token", http.StatusForbidden)
					return
				}
			}

			if token == "" {
				t, err := newToken()
				if err != nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				token = t
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
		})
	}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func csrfToken(ctx context.Context) string {
	t, _ := ctx.Value(csrfKey{}).(string)
	return t
}

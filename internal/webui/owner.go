package webui

import "net/http"

// ownerCookie binds assessments to the browser that began them. The
// assessment ID in the URL is not enough to read or change one.
const ownerCookie = "carepath_owner"

func ownerToken(r *http.Request) string {
	c, err := r.Cookie(ownerCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// ensureOwner returns the request's owner token, minting and setting a new
// one when the browser has none yet.
func (u *UI) ensureOwner(w http.ResponseWriter, r *http.Request) (string, error) {
	if t := ownerToken(r); t != "" {
		return t, nil
	}
	t, err := newToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ownerCookie,
		Value:    t,
		Path:     "/assessment",
		HttpOnly: true,
		Secure:   u.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return t, nil
}

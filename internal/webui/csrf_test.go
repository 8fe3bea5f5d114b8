package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func tokenEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csrfToken(r.Context())))
	})
}

func TestCSRF_IssuesCookieOnSafeRequest(t *testing.T) {
	t.Parallel()

	h := CSRF(true)(tokenEcho())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != csrfCookie {
		t.Fatalf("cookies = %+v, want one %s", cookies, csrfCookie)
	}
	c := cookies[0]
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = httponly:%v secure:%v samesite:%v", c.HttpOnly, c.Secure, c.SameSite)
	}
	if len(c.Value) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(c.Value))
	}
	if rec.Body.String() != c.Value {
		t.Errorf("context token = %q, want cookie value", rec.Body.String())
	}
}

func TestCSRF_ReusesExistingCookie(t *testing.T) {
	t.Parallel()

	h := CSRF(false)(tokenEcho())
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: "existing"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if len(rec.Result().Cookies()) != 0 {
		t.Error("should not reissue a cookie when one is present")
	}
	if rec.Body.String() != "existing" {
		t.Errorf("context token = %q, want existing", rec.Body.String())
	}
}

func TestCSRF_AcceptsHeaderToken(t *testing.T) {
	t.Parallel()

	h := CSRF(false)(tokenEcho())
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: "abc"})
	req.Header.Set(csrfHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCSRF_RejectsUnsafeMethods(t *testing.T) {
	t.Parallel()

	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(m, func(t *testing.T) {
			t.Parallel()

			h := CSRF(false)(tokenEcho())
			req := httptest.NewRequest(m, "/", http.NoBody)
			req.AddCookie(&http.Cookie{Name: csrfCookie, Value: "abc"})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("%s without token = %d, want 403", m, rec.Code)
			}
		})
	}
}

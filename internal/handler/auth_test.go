package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/handler"
)

func postForm(t *testing.T, h http.HandlerFunc, path string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, formBody(fields))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func register(t *testing.T, env *testEnv, login, password string) *httptest.ResponseRecorder {
	t.Helper()
	return postForm(t, env.auth.HandleRegister, "/register",
		map[string]string{"login": login, "password": password})
}

func TestHandleRegister(t *testing.T) {
	env := newTestEnv(t)

	rr := register(t, env, "anna", "secret")

	assert.Equal(t, http.StatusOK, rr.Code)

	var res handler.MessageResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "user created", res.Message)
}

func TestHandleRegister_DuplicateLoginIs400(t *testing.T) {
	env := newTestEnv(t)

	first := register(t, env, "anna", "secret")
	assert.Equal(t, http.StatusOK, first.Code)

	second := register(t, env, "anna", "other-password")
	assert.Equal(t, http.StatusBadRequest, second.Code)

	var res handler.ErrorResponse
	assert.NoError(t, json.NewDecoder(second.Body).Decode(&res))
	assert.Equal(t, "conflict", res.Error)
}

func TestHandleRegister_MissingFieldIs400(t *testing.T) {
	env := newTestEnv(t)

	rr := register(t, env, "anna", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleLogin_CorrectCredentials(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "anna", "secret")

	rr := postForm(t, env.auth.HandleLogin, "/login",
		map[string]string{"login": "anna", "password": "secret"})

	// 302 to the home page…
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// …with the identity cookie set to the raw login.
	cookies := rr.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, auth.IdentityCookieName, cookies[0].Name)
		assert.Equal(t, "anna", cookies[0].Value)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "anna", "secret")

	rr := postForm(t, env.auth.HandleLogin, "/login",
		map[string]string{"login": "anna", "password": "wrong"})

	// The form is re-rendered with an inline error — still a 200, no cookie.
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid login or password")
	assert.Empty(t, rr.Result().Cookies())
}

func TestHandleLogin_UnknownLoginLooksLikeWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "anna", "secret")

	unknown := postForm(t, env.auth.HandleLogin, "/login",
		map[string]string{"login": "nobody", "password": "whatever"})
	wrong := postForm(t, env.auth.HandleLogin, "/login",
		map[string]string{"login": "anna", "password": "wrong"})

	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestHandleLogout_ClearsCookieAndRedirects(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.IdentityCookieName, Value: "anna"})
	rr := httptest.NewRecorder()

	env.auth.HandleLogout(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	cookies := rr.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, auth.IdentityCookieName, cookies[0].Name)
		assert.Equal(t, "", cookies[0].Value)
		assert.Equal(t, -1, cookies[0].MaxAge)
	}
}

func TestHandleLoginForm_Renders(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()

	env.pages.HandleLoginForm(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "form")
	// No inline error on the plain GET.
	assert.NotContains(t, rr.Body.String(), "class=\"error\"")
}

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/internal/auth"
	"github.com/quillhq/quill/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("router-test-secret-with-enough-length-12", 30*time.Minute, 7*24*time.Hour)

	authSvc := service.NewAuthService(newMemUserRepo(), newMemSessionRepo(), tokens, nil, log)
	folderRepo := newMemFolderRepo()
	docSvc := service.NewDocumentService(newMemDocumentRepo(), folderRepo, nil, nil, log)
	folderSvc := service.NewFolderService(folderRepo, log)

	return NewRouter(RouterDeps{
		Auth:      NewAuthHandler(authSvc, log),
		Documents: NewDocumentHandler(docSvc, log),
		Folders:   NewFolderHandler(folderSvc, log),
		Resolver:  authSvc,
		Service:   "quill-test",
		Log:       log,
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func signup(t *testing.T, router http.Handler, email string) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": email, "password": "secret123", "display_name": "Ada",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func signin(t *testing.T, router http.Handler, email string) (access, refresh string) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	return data["access_token"].(string), data["refresh_token"].(string)
}

func TestSignupSigninMe(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "ada@example.com", "password": "secret123", "display_name": "Ada",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "secret123")

	rec = doRequest(t, router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "bearer", data["token_type"])
	assert.Equal(t, float64(1800), data["expires_in"])
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])

	rec = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", data["access_token"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "ada@example.com", me["email"])
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "ada@example.com", "password": "secret123", "display_name": "Ada Again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_TAKEN")
}

func TestSignin_InvalidCredentialsIndistinguishable(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")

	recUnknown := doRequest(t, router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "nobody@example.com", "password": "secret123",
	})
	recWrong := doRequest(t, router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "ada@example.com", "password": "wrongpass9",
	})

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrong.Code)
	assert.JSONEq(t, recUnknown.Body.String(), recWrong.Body.String())
}

func TestMe_RequiresValidSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_RotatesAndInvalidatesOldPair(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	oldAccess, oldRefresh := signin(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": oldRefresh,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	newAccess := data["access_token"].(string)
	assert.NotEqual(t, oldAccess, newAccess)

	// The rotated-out pair stops working.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", oldAccess, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": oldRefresh,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The new pair works.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", newAccess, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	access, _ := signin(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/logout", access, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAll_RevokesEverySession(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	access1, _ := signin(t, router, "ada@example.com")
	access2, _ := signin(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/logout-all", access1, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, token := range []string{access1, access2} {
		rec = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestSessions_MarksCurrent(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	_, _ = signin(t, router, "ada@example.com")
	access2, _ := signin(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/auth/sessions", access2, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sessions := decodeBody(t, rec)["data"].([]any)
	require.Len(t, sessions, 2)

	currentCount := 0
	for _, s := range sessions {
		entry := s.(map[string]any)
		assert.NotContains(t, entry, "access_token")
		if entry["is_current"].(bool) {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount)
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	access, _ := signin(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/change-password", access, map[string]string{
		"current_password": "secret123", "new_password": "brandnew42",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "ada@example.com", "password": "brandnew42",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocumentLifecycle(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	access, _ := signin(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/documents/", access, map[string]any{
		"title": "Notes", "content": "first draft",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decodeBody(t, rec)["data"].(map[string]any)
	docID := doc["id"].(string)
	assert.Equal(t, float64(1), doc["version"])
	assert.Equal(t, "private", doc["access_level"])

	rec = doRequest(t, router, http.MethodPut, "/api/v1/documents/"+docID, access, map[string]any{
		"content": "second draft", "change_summary": "rewrite",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc = decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(2), doc["version"])

	rec = doRequest(t, router, http.MethodGet, "/api/v1/documents/"+docID+"/versions", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	versions := decodeBody(t, rec)["data"].([]any)
	require.Len(t, versions, 1)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/versions/1/restore", access, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc = decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "first draft", doc["content"])
	assert.Equal(t, float64(3), doc["version"])

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/documents/"+docID, access, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/documents/"+docID, access, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/documents/"+docID+"/restore", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/documents/"+docID, access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocuments_OwnershipIsolation(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	signup(t, router, "bob@example.com")
	adaToken, _ := signin(t, router, "ada@example.com")
	bobToken, _ := signin(t, router, "bob@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/documents/", adaToken, map[string]any{
		"title": "Private notes",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	docID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/documents/"+docID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/documents/"+docID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFolders_CRUD(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "ada@example.com")
	access, _ := signin(t, router, "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/documents/folders/", access, map[string]any{
		"name": "Work",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	folderID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/documents/folders/", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	folders := decodeBody(t, rec)["data"].([]any)
	require.Len(t, folders, 1)

	rec = doRequest(t, router, http.MethodPatch, "/api/v1/documents/folders/"+folderID, access, map[string]any{
		"name": "Archive",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Archive")

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/documents/folders/"+folderID, access, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

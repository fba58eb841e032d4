package controllers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogward/blogward/config"
	"github.com/blogward/blogward/models"
)

func TestRegisterFirstUserBecomesModerator(t *testing.T) {
	e := newEnv(t)

	w := e.request(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "founder", "password": "secret123",
	})
	requireStatus(t, w, http.StatusCreated)
	body := decodeBody(t, w)
	first := body["user"].(map[string]interface{})
	assert.Equal(t, models.RoleModerator, first["role"])

	w = e.request(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "latecomer", "password": "secret123",
	})
	requireStatus(t, w, http.StatusCreated)
	second := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, models.RoleUser, second["role"])

	var sentinel models.Setting
	require.NoError(t, e.db.First(&sentinel, "key = ?", models.BootstrapModeratorKey).Error)
	assert.Equal(t, "founder", sentinel.Value)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	e := newEnv(t)
	e.seedUser("taken", models.RoleUser)

	w := e.request(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "taken", "password": "secret123",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Username already exists", decodeBody(t, w)["error"])
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	e.seedUser("ann", models.RoleAuthor)

	w := e.request(http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ann", "password": seedPassword,
	})
	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	w = e.request(http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ann", "password": "wrong-password",
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestAssignToAuthor(t *testing.T) {
	e := newEnv(t)
	mod := e.seedUser("mod", models.RoleModerator)
	plain := e.seedUser("plain", models.RoleUser)

	w := e.request(http.MethodPut, "/auth/assign-to-author/9999", e.token(mod), nil)
	requireStatus(t, w, http.StatusNotFound)

	w = e.request(http.MethodPut, assignPath(plain.ID), e.token(mod), nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, models.RoleAuthor, decodeBody(t, w)["role"])

	// Already an author now.
	w = e.request(http.MethodPut, assignPath(plain.ID), e.token(mod), nil)
	requireStatus(t, w, http.StatusBadRequest)

	// Non-moderators may not promote anyone.
	author := e.seedUser("author", models.RoleAuthor)
	w = e.request(http.MethodPut, assignPath(plain.ID), e.token(author), nil)
	requireStatus(t, w, http.StatusForbidden)

	w = e.request(http.MethodPut, assignPath(plain.ID), "", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func assignPath(id uint) string {
	return fmtPath("/auth/assign-to-author/%d", id)
}

func TestEditUserSelfOnly(t *testing.T) {
	e := newEnv(t)
	ann := e.seedUser("ann", models.RoleUser)
	ben := e.seedUser("ben", models.RoleUser)

	w := e.request(http.MethodPut, fmtPath("/auth/edit-user/%d", ben.ID), e.token(ann), map[string]string{
		"username": "hijacked",
	})
	requireStatus(t, w, http.StatusForbidden)

	w = e.request(http.MethodPut, fmtPath("/auth/edit-user/%d", ann.ID), e.token(ann), map[string]string{
		"username": "ann-renamed",
		"picture":  "/public/ann.png",
	})
	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, "ann-renamed", body["username"])
	assert.Equal(t, "/public/ann.png", body["picture"])
}

func TestDeleteUser(t *testing.T) {
	e := newEnv(t)
	mod := e.seedUser("mod", models.RoleModerator)
	victim := e.seedUser("victim", models.RoleUser)

	w := e.request(http.MethodDelete, fmtPath("/auth/delete-user/%d", victim.ID), e.token(mod), nil)
	requireStatus(t, w, http.StatusOK)

	w = e.request(http.MethodDelete, fmtPath("/auth/delete-user/%d", victim.ID), e.token(mod), nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestAllUserFilterAndPagination(t *testing.T) {
	e := newEnv(t)
	mod := e.seedUser("mod", models.RoleModerator)
	e.seedUser("Alice", models.RoleUser)
	e.seedUser("alina", models.RoleUser)
	e.seedUser("bob", models.RoleUser)

	w := e.request(http.MethodGet, "/auth/all-user?username=ali", e.token(mod), nil)
	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	users := body["user"].([]interface{})
	assert.Len(t, users, 2)
	pagination := body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 2, pagination["totalCount"])
	assert.EqualValues(t, 1, pagination["currentPage"])
	assert.EqualValues(t, 1, pagination["totalPages"])

	w = e.request(http.MethodGet, "/auth/all-user?page=1&pageSize=2", e.token(mod), nil)
	requireStatus(t, w, http.StatusOK)
	body = decodeBody(t, w)
	assert.Len(t, body["user"].([]interface{}), 2)
	pagination = body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 4, pagination["totalCount"])
	assert.EqualValues(t, 2, pagination["totalPages"])

	w = e.request(http.MethodGet, "/auth/all-user?username=zzz", e.token(mod), nil)
	requireStatus(t, w, http.StatusNotFound)

	// Moderator only.
	plain := e.seedUser("plain", models.RoleUser)
	w = e.request(http.MethodGet, "/auth/all-user", e.token(plain), nil)
	requireStatus(t, w, http.StatusForbidden)

	w = e.request(http.MethodGet, "/auth/all-user", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func (e *env) uploadPicture(token, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("picture", filename)
	require.NoError(e.t, err)
	_, err = fw.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/upload-picture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestUploadPicture(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser("ann", models.RoleUser)

	w := e.uploadPicture(e.token(user), "My Avatar.PNG", []byte("not-really-a-png"))
	requireStatus(t, w, http.StatusOK)
	url := decodeBody(t, w)["url"].(string)
	require.True(t, strings.HasPrefix(url, "/public/"), "url: %s", url)
	assert.True(t, strings.HasSuffix(url, "-my-avatar.png"), "url: %s", url)

	// The stored name is the returned one, UUID prefix included.
	stored := filepath.Join(config.Get().UploadDir, strings.TrimPrefix(url, "/public/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("not-really-a-png"), data)

	w = e.uploadPicture(e.token(user), "payload.txt", []byte("plain text"))
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Only .png, .jpg and .jpeg format allowed!", decodeBody(t, w)["error"])

	w = e.uploadPicture("", "avatar.png", []byte("x"))
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser("ann", models.RoleAuthor)
	token := e.token(user)

	w := e.request(http.MethodGet, "/blog/list", token, nil)
	requireStatus(t, w, http.StatusNotFound)

	w = e.request(http.MethodPost, "/auth/logout", token, nil)
	requireStatus(t, w, http.StatusOK)

	// The revoked token is dead even though it has not expired.
	w = e.request(http.MethodGet, "/blog/list", token, nil)
	requireStatus(t, w, http.StatusUnauthorized)

	// A freshly issued token still works.
	w = e.request(http.MethodGet, "/blog/list", e.token(user), nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestLogoutDropsBareListCache(t *testing.T) {
	e := newEnv(t)
	author := e.seedUser("ann", models.RoleAuthor)
	e.seedBlog(author, "cached entry")

	w := e.request(http.MethodGet, "/blog/list", e.token(author), nil)
	requireStatus(t, w, http.StatusOK)
	require.True(t, e.mr.Exists("/blog/list"))

	w = e.request(http.MethodPost, "/auth/logout", e.token(author), nil)
	requireStatus(t, w, http.StatusOK)
	assert.False(t, e.mr.Exists("/blog/list"))
}

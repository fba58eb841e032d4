package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blogward/blogward/cache"
	"github.com/blogward/blogward/config"
	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/routes"
	"github.com/blogward/blogward/utils"
)

// env wires the full router against an in-memory sqlite store and a
// miniredis backed list cache. queries counts SELECTs issued to the
// store, which is how the cache-hit properties are asserted.
type env struct {
	t       *testing.T
	router  *gin.Engine
	db      *gorm.DB
	mr      *miniredis.Miniredis
	cache   *cache.ListCache
	queries *int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{
		AppPort:            "0",
		JWTSecret:          "test-secret",
		GinMode:            "test",
		RedisHost:          "127.0.0.1",
		RedisPort:          1,
		RateLimitPerMinute: 100000,
		AllowedOrigins:     []string{"*"},
		UploadDir:          t.TempDir(),
		LogLevel:           "error",
	})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Blog{}, &models.Tag{},
		&models.BlogVote{}, &models.Comment{}, &models.Reply{}, &models.Setting{},
	))

	queries := new(int64)
	require.NoError(t, db.Callback().Query().After("gorm:query").
		Register("test_query_counter", func(*gorm.DB) { atomic.AddInt64(queries, 1) }))

	mr := miniredis.RunT(t)
	listCache := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return &env{
		t:       t,
		router:  routes.SetupRouter(db, listCache),
		db:      db,
		mr:      mr,
		cache:   listCache,
		queries: queries,
	}
}

func (e *env) queryCount() int64 {
	return atomic.LoadInt64(e.queries)
}

var (
	seedHashOnce sync.Once
	seedHash     string
)

// seedPassword is the plaintext behind every seeded account.
const seedPassword = "secret123"

func (e *env) seedUser(username, role string) models.User {
	e.t.Helper()
	seedHashOnce.Do(func() {
		var err error
		seedHash, err = utils.HashPassword(seedPassword)
		if err != nil {
			panic(err)
		}
	})
	user := models.User{Username: username, PasswordHash: seedHash, Role: role}
	require.NoError(e.t, e.db.Create(&user).Error)
	return user
}

func (e *env) seedBlog(author models.User, title string, tagNames ...string) models.Blog {
	e.t.Helper()
	blog := models.Blog{Title: title, Content: "content of " + title, AuthorID: author.ID}
	require.NoError(e.t, e.db.Create(&blog).Error)
	for _, name := range tagNames {
		var tag models.Tag
		require.NoError(e.t, e.db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error)
		require.NoError(e.t, e.db.Model(&blog).Association("Tags").Append(&tag))
	}
	blog.Author = author
	return blog
}

func (e *env) token(user models.User) string {
	e.t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, time.Hour)
	require.NoError(e.t, err)
	return token
}

func (e *env) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func fmtPath(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

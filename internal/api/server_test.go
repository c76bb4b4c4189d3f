package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	db "github.com/mlin93/snaplink/db/sqlc"
	"github.com/mlin93/snaplink/internal/auth"
	"github.com/mlin93/snaplink/internal/model"
	"github.com/mlin93/snaplink/internal/testutil"
	"github.com/mlin93/snaplink/internal/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.Init("test-access-secret", "test-refresh-secret", time.Minute, time.Hour)
	os.Exit(m.Run())
}

// flushClicksNow 同步清空点击 channel 并落库，替代后台的 ClickProcessor
func (server *Server) flushClicksNow() error {
	clicks := make(map[string]int64)
	for {
		select {
		case shortCode := <-server.clickChan:
			clicks[shortCode]++
		default:
			if len(clicks) == 0 {
				return nil
			}
			return server.store.AddUrlClicks(context.Background(), clicks)
		}
	}
}

func newTestServer(t *testing.T) (*Server, *testutil.FakeStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := testutil.NewFakeStore()
	config := util.Config{
		CORSAllowOrigins: []string{"http://localhost:3000"},
		ClickChannelSize: 1024,
	}
	return NewServer(config, store, rdb), store
}

func registerUser(t *testing.T, store *testutil.FakeStore, username string) (db.User, string) {
	t.Helper()

	hashed, err := util.HashPassword("password123")
	require.NoError(t, err)

	user, err := store.CreateUser(context.Background(), db.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashed,
	})
	require.NoError(t, err)

	token, err := auth.GenerateAccessToken(user.ID, user.Username)
	require.NoError(t, err)

	return user, token
}

func doJSON(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func createShortURL(t *testing.T, server *Server, token string, body map[string]any) model.URLResponse {
	t.Helper()

	recorder := doJSON(t, server, http.MethodPost, "/api/urls", token, body)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var rsp model.URLResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &rsp))
	return rsp
}

func TestEndToEndScenario(t *testing.T) {
	server, store := newTestServer(t)
	_, token := registerUser(t, store, "alice")

	// 创建：不带自定义短码
	created := createShortURL(t, server, token, map[string]any{
		"original_url": "https://example.com/a",
	})
	require.Len(t, created.ShortCode, 6)
	for _, forbidden := range []string{"0", "O", "I", "l"} {
		require.NotContains(t, created.ShortCode, forbidden)
	}
	require.True(t, created.IsActive)
	require.Zero(t, created.Clicks)

	// 解析：302 到目标地址
	recorder := doJSON(t, server, http.MethodGet, "/"+created.ShortCode, "", nil)
	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, "https://example.com/a", recorder.Header().Get("Location"))

	// 等待后台的缓存回填落地，避免与后续的失效操作交错
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, server.flushClicksNow())

	// 统计：clicks == 1
	recorder = doJSON(t, server, http.MethodGet, "/api/urls/"+created.ShortCode+"/stats", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var stats model.URLStatsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.Clicks)
	require.NotNil(t, stats.LastClickedAt)

	// 停用后解析返回 410
	recorder = doJSON(t, server, http.MethodPatch, "/api/urls/"+created.ShortCode, token, map[string]any{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/"+created.ShortCode, "", nil)
	require.Equal(t, http.StatusGone, recorder.Code)

	// 停用状态下不再累加点击
	require.NoError(t, server.flushClicksNow())
	recorder = doJSON(t, server, http.MethodGet, "/api/urls/"+created.ShortCode+"/stats", token, nil)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.Clicks)

	// 删除后详情返回 404
	recorder = doJSON(t, server, http.MethodDelete, "/api/urls/"+created.ShortCode, token, nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/api/urls/"+created.ShortCode, token, nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCreateURLCustomCode(t *testing.T) {
	server, store := newTestServer(t)
	_, token := registerUser(t, store, "alice")

	created := createShortURL(t, server, token, map[string]any{
		"original_url": "https://example.com/a",
		"custom_code":  "my-code_9",
	})
	require.Equal(t, "my-code_9", created.ShortCode)

	// 重复使用同一自定义短码返回 409
	recorder := doJSON(t, server, http.MethodPost, "/api/urls", token, map[string]any{
		"original_url": "https://example.com/b",
		"custom_code":  "my-code_9",
	})
	require.Equal(t, http.StatusConflict, recorder.Code)
}

func TestCreateURLValidation(t *testing.T) {
	server, store := newTestServer(t)
	_, token := registerUser(t, store, "alice")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"invalid destination", map[string]any{"original_url": "not-a-url"}, http.StatusBadRequest},
		{"missing destination", map[string]any{}, http.StatusBadRequest},
		{"code too short", map[string]any{"original_url": "https://example.com", "custom_code": "ab"}, http.StatusBadRequest},
		{"code too long", map[string]any{"original_url": "https://example.com", "custom_code": strings.Repeat("a", 51)}, http.StatusBadRequest},
		{"code with illegal chars", map[string]any{"original_url": "https://example.com", "custom_code": "foo!bar"}, http.StatusBadRequest},
		{"code length 50 ok", map[string]any{"original_url": "https://example.com", "custom_code": strings.Repeat("a", 50)}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doJSON(t, server, http.MethodPost, "/api/urls", token, tt.body)
			require.Equal(t, tt.want, recorder.Code, recorder.Body.String())
		})
	}
}

func TestAuthRequired(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/urls", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/api/urls", "not-a-valid-token", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestOwnershipEnforced(t *testing.T) {
	server, store := newTestServer(t)
	_, aliceToken := registerUser(t, store, "alice")
	_, bobToken := registerUser(t, store, "bob")

	created := createShortURL(t, server, aliceToken, map[string]any{
		"original_url": "https://example.com/a",
	})

	// 非所有者的 stats/update/delete 一律 403
	recorder := doJSON(t, server, http.MethodGet, "/api/urls/"+created.ShortCode+"/stats", bobToken, nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(t, server, http.MethodPatch, "/api/urls/"+created.ShortCode, bobToken, map[string]any{
		"title": "hijacked",
	})
	require.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(t, server, http.MethodDelete, "/api/urls/"+created.ShortCode, bobToken, nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	// 记录保持原样
	recorder = doJSON(t, server, http.MethodGet, "/api/urls/"+created.ShortCode, aliceToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var rsp model.URLResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &rsp))
	require.Nil(t, rsp.Title)
}

func TestRedirectNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/missing", "", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	server, store := newTestServer(t)
	_, token := registerUser(t, store, "alice")

	created := createShortURL(t, server, token, map[string]any{
		"original_url": "https://example.com/old",
		"custom_code":  "cached",
	})
	// 等待创建时的后台缓存写入完成
	time.Sleep(20 * time.Millisecond)

	// 手动写入缓存，模拟热点短码
	u, err := store.GetUrlByShortCode(context.Background(), created.ShortCode)
	require.NoError(t, err)
	require.NoError(t, server.setUrlInCache(context.Background(), &u))

	recorder := doJSON(t, server, http.MethodPatch, "/api/urls/"+created.ShortCode, token, map[string]any{
		"original_url": "https://example.com/new",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/"+created.ShortCode, "", nil)
	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, "https://example.com/new", recorder.Header().Get("Location"))
}

func TestConcurrentClicks(t *testing.T) {
	server, store := newTestServer(t)
	_, token := registerUser(t, store, "alice")

	created := createShortURL(t, server, token, map[string]any{
		"original_url": "https://example.com/a",
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			server.recordClick(created.ShortCode)
		}()
	}
	wg.Wait()

	require.NoError(t, server.flushClicksNow())

	u, err := store.GetUrlByShortCode(context.Background(), created.ShortCode)
	require.NoError(t, err)
	require.EqualValues(t, 100, u.Clicks)
}

func TestListURLs(t *testing.T) {
	server, store := newTestServer(t)
	_, aliceToken := registerUser(t, store, "alice")
	_, bobToken := registerUser(t, store, "bob")

	for i := 0; i < 15; i++ {
		createShortURL(t, server, aliceToken, map[string]any{
			"original_url": fmt.Sprintf("https://example.com/a/%d", i),
		})
	}
	createShortURL(t, server, bobToken, map[string]any{
		"original_url": "https://example.com/bob",
	})

	recorder := doJSON(t, server, http.MethodGet, "/api/urls?page=1&page_size=10", aliceToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var rsp model.URLListResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &rsp))
	require.EqualValues(t, 15, rsp.Total)
	require.Len(t, rsp.Urls, 10)
	require.EqualValues(t, 2, rsp.TotalPages)

	recorder = doJSON(t, server, http.MethodGet, "/api/urls?page=2&page_size=10", aliceToken, nil)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &rsp))
	require.Len(t, rsp.Urls, 5)

	recorder = doJSON(t, server, http.MethodGet, "/api/urls?page_size=500", aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/users", "", map[string]any{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	// 重复注册同名用户返回 409
	recorder = doJSON(t, server, http.MethodPost, "/api/users", "", map[string]any{
		"username": "carol",
		"email":    "carol2@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusConflict, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/users/login", "", map[string]any{
		"username": "carol",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)

	// 拿着新令牌访问受保护接口
	recorder = doJSON(t, server, http.MethodGet, "/api/urls", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/users/login", "", map[string]any{
		"username": "carol",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/tokens/refresh", "", map[string]any{
		"refresh_token": login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, recorder.Code)
}

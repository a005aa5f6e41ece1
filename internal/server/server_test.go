package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"scriptaffiliator/internal/config"
	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/testdb"
	"scriptaffiliator/internal/ws"
	"scriptaffiliator/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
}

func (g *recordingGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, nil
}

type testApp struct {
	app *fiber.App
	db  *gorm.DB
	gen *recordingGenerator
}

func newTestApp(t *testing.T, webDir string) *testApp {
	t.Helper()

	db := testdb.New(t)
	store, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	hub := ws.NewHub(zap.NewNop())
	go hub.Run()
	t.Cleanup(hub.Stop)

	gen := &recordingGenerator{reply: "  generated text \n"}
	cfg := &config.Config{
		Env:    "test",
		WebDir: webDir,
		Session: config.SessionConfig{
			Secret:       "test-secret",
			CookieName:   "sa_session",
			TTL:          time.Hour,
			PollInterval: 30 * time.Second,
		},
		Gemini:                config.GeminiConfig{Model: "test-model"},
		PromptCode:            model.PromptGenerateScript,
		GenerateRatePerMinute: 0,
	}

	app := New(Deps{
		Config:    cfg,
		DB:        db,
		Generator: gen,
		Storage:   store,
		Hub:       hub,
		Log:       zap.NewNop(),
	})
	return &testApp{app: app, db: db, gen: gen}
}

func (a *testApp) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "sa_session" {
			return c
		}
	}
	return nil
}

func TestGenerateScript_FillsTemplateAndTrimsOutput(t *testing.T) {
	a := newTestApp(t, "")
	require.NoError(t, repository.NewPromptRepo(a.db).Upsert(&model.Prompt{
		Code: model.PromptGenerateScript,
		Text: "Points:\n{keyPoints}\nCount: {scriptCount}\nHooks: {openingLines}",
	}))

	resp := a.do(t, http.MethodPost, "/api/generate-script", `{
		"productId": "p1",
		"productName": "Bottle",
		"keyPoints": ["durable", "affordable"],
		"scriptCount": "1",
		"openingLines": ["Hook1"],
		"userId": "u1"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "generated text", body["output"])

	require.Len(t, a.gen.prompts, 1)
	assert.Contains(t, a.gen.prompts[0], "durable\naffordable")
	assert.Contains(t, a.gen.prompts[0], "Count: 1")
	assert.Contains(t, a.gen.prompts[0], "Hooks: Hook1")
}

func TestGenerateScript_MissingFields(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.do(t, http.MethodPost, "/api/generate-script", `{"productId":"p1","userId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", decode(t, resp)["message"])
	assert.Empty(t, a.gen.prompts)

	resp = a.do(t, http.MethodPost, "/api/generate-script",
		`{"productId":"p1","userId":"u1","keyPoints":["a"],"scriptCount":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "scriptCount must be a positive number", decode(t, resp)["message"])
	assert.Empty(t, a.gen.prompts)
}

func TestAuth_CookieRoundTrip(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"ana@example.com","password":"secret1","fullName":"Ana"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	resp = a.do(t, http.MethodGet, "/api/auth/session", "", cookie)
	body := decode(t, resp)
	require.NotNil(t, body["session"])

	resp = a.do(t, http.MethodPost, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the old token was revoked by logout
	resp = a.do(t, http.MethodGet, "/api/auth/session", "", cookie)
	assert.Nil(t, decode(t, resp)["session"])
}

func TestAuth_LogoutRequiresSession(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.do(t, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_ConfigReportsPollInterval(t *testing.T) {
	a := newTestApp(t, "")

	body := decode(t, a.do(t, http.MethodGet, "/api/auth/config", ""))
	cfg := body["config"].(map[string]interface{})
	assert.Equal(t, float64(30), cfg["sessionPollInterval"])
	assert.Equal(t, false, cfg["hasSupabaseUrl"])
}

func TestGetUser_NotFoundShape(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.do(t, http.MethodPost, "/api/get-user", `{"userId":"6f1c2d1e-9f43-4c1a-8f0e-2b7d8f1a2c3d"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "User not found", body["message"])
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])

	resp = a.do(t, http.MethodPost, "/api/get-user", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownAPIPath(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPageGuard_RedirectsWithoutSession(t *testing.T) {
	web := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(web, "index.html"), []byte("<html>app</html>"), 0o644))
	a := newTestApp(t, web)

	resp := a.do(t, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// public pages stay reachable
	resp = a.do(t, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPageGuard_ServesIndexWithSession(t *testing.T) {
	web := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(web, "index.html"), []byte("<html>app</html>"), 0o644))
	a := newTestApp(t, web)

	a.do(t, http.MethodPost, "/api/auth/register", `{"email":"bo@example.com","password":"secret1","fullName":"Bo"}`)
	cookie := sessionCookie(a.do(t, http.MethodPost, "/api/auth/login", `{"email":"bo@example.com","password":"secret1"}`))
	require.NotNil(t, cookie)

	resp := a.do(t, http.MethodGet, "/dashboard", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "app")
}

func TestRootStatusWithoutWebDir(t *testing.T) {
	a := newTestApp(t, "")

	body := decode(t, a.do(t, http.MethodGet, "/", ""))
	assert.Equal(t, "ok", body["status"])
}

func TestProductsAndScriptsFlow(t *testing.T) {
	a := newTestApp(t, "")

	a.do(t, http.MethodPost, "/api/auth/register", `{"email":"cy@example.com","password":"secret1","fullName":"Cy"}`)
	login := decode(t, a.do(t, http.MethodPost, "/api/auth/login", `{"email":"cy@example.com","password":"secret1"}`))
	userID := login["user"].(map[string]interface{})["id"].(string)

	resp := a.do(t, http.MethodPost, "/api/products",
		`{"userId":"`+userID+`","products":[{"name":"Mug","price":"10.50","affiliate_fee":"1"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/products",
		`{"userId":"`+userID+`","products":[{"name":"mug"}]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Products with these names already exist: mug", decode(t, resp)["error"])

	resp = a.do(t, http.MethodGet, "/api/products?userId="+userID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 1)
	productID := products[0]["id"].(string)

	resp = a.do(t, http.MethodPost, "/api/save-script",
		`{"userId":"`+userID+`","productId":"`+productID+`","scripts":["one","two"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decode(t, resp)["count"])

	stats := decode(t, a.do(t, http.MethodGet, "/api/dashboard/stats?userId="+userID, ""))
	assert.Equal(t, float64(1), stats["total_products"])
	assert.Equal(t, float64(2), stats["total_scripts"])
}

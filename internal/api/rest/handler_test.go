package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/petpad-xyz/launchpad/internal/api/rest"
	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/ledger"
	"github.com/petpad-xyz/launchpad/internal/providers/clanker"
	"github.com/petpad-xyz/launchpad/internal/store"
)

const validContent = `!petpad
name: Fido
symbol: FIDO
wallet: 0xAbC0000000000000000000000000000000000001
description: a good boy
type: dog`

type fakePosts struct {
	content string
	err     error
}

func (f *fakePosts) GetPost(ctx context.Context, apiKey, postID string) (*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Post{
		ID:             postID,
		Content:        f.content,
		AuthorID:       "agent-1",
		AuthorUsername: "rex_launcher",
		URL:            "https://www.moltbook.com/post/" + postID,
	}, nil
}

type fakeDeployer struct {
	err error
}

func (f *fakeDeployer) Deploy(ctx context.Context, req clanker.DeployRequest) (*clanker.DeployResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &clanker.DeployResult{
		TokenAddress:  "0x1111111111111111111111111111111111111111",
		TxHash:        "0xabc",
		DeploymentURL: "https://clanker.world/clanker/0x1111111111111111111111111111111111111111",
		ExplorerURL:   "https://basescan.org/token/0x1111111111111111111111111111111111111111",
	}, nil
}

func (f *fakeDeployer) Info(ctx context.Context) (*clanker.DeployerInfo, error) {
	return &clanker.DeployerInfo{Configured: true, Address: "0xDeployer", Balance: 0.25}, nil
}

func (f *fakeDeployer) Close() {}

type fakeAssets struct{}

func (fakeAssets) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	return "https://assets.petpad.xyz/" + name, nil
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) Since(t time.Time) time.Duration        { return time.Since(t) }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type testAPI struct {
	router   *gin.Engine
	store    store.Store
	posts    *fakePosts
	deployer *fakeDeployer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	s := store.NewPGStore(db)

	posts := &fakePosts{content: validContent}
	deployer := &fakeDeployer{}
	l := ledger.New(s, posts, deployer, fakeAssets{}, realClock{}, 8453, 24)

	router := gin.New()
	rest.SetupRoutes(router, rest.NewHandler(l, s, deployer))

	return &testAPI{router: router, store: s, posts: posts, deployer: deployer}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) launch(t *testing.T, postID string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, http.MethodPost, "/api/v1/launch", `{"moltbook_key":"key","post_id":"`+postID+`"}`)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLaunch_Success(t *testing.T) {
	api := newTestAPI(t)

	w := api.launch(t, "post-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "rex_launcher", body["agent"])
	assert.Equal(t, "0x1111111111111111111111111111111111111111", body["token_address"])

	pet := body["pet"].(map[string]any)
	assert.Equal(t, "FIDO", pet["symbol"])
	assert.Equal(t, "dog", pet["type"])
	assert.Equal(t, "🐕", pet["emoji"])

	rewards := body["rewards"].(map[string]any)
	assert.Equal(t, "80%", rewards["agent_share"])
	assert.Equal(t, "20%", rewards["platform_share"])
}

func TestLaunch_MissingFields(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/launch", `{"post_id":"post-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/launch", `{"moltbook_key":"key"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLaunch_ValidationErrorListsAllViolations(t *testing.T) {
	api := newTestAPI(t)
	api.posts.content = "!petpad\nname: Fido"

	w := api.launch(t, "post-1")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	errDetail := body["error"].(map[string]any)
	assert.Equal(t, "validation_failed", errDetail["code"])
	violations := errDetail["violations"].([]any)
	// symbol, wallet, description and petType are all missing.
	assert.Len(t, violations, 4)
}

func TestLaunch_DuplicatePostConflict(t *testing.T) {
	api := newTestAPI(t)

	require.Equal(t, http.StatusOK, api.launch(t, "post-1").Code)

	w := api.launch(t, "post-1")
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Post already used for launch", body["error"].(map[string]any)["message"])
}

func TestLaunch_DeployFailure(t *testing.T) {
	api := newTestAPI(t)
	api.deployer.err = domain.NewDeployError(domain.DeployErrorInsufficientFunds, "Insufficient ETH for gas")

	w := api.launch(t, "post-1")
	require.Equal(t, http.StatusBadGateway, w.Code)

	body := decode(t, w)
	errDetail := body["error"].(map[string]any)
	assert.Equal(t, "deploy_failed", errDetail["code"])
	assert.Equal(t, "Insufficient ETH for gas", errDetail["details"])
}

func TestLaunch_PostNotFound(t *testing.T) {
	api := newTestAPI(t)
	api.posts.err = domain.ErrPostNotFound

	assert.Equal(t, http.StatusNotFound, api.launch(t, "missing").Code)
}

func TestLaunch_Unauthorized(t *testing.T) {
	api := newTestAPI(t)
	api.posts.err = domain.ErrUnauthorized

	assert.Equal(t, http.StatusUnauthorized, api.launch(t, "post-1").Code)
}

func TestListTokens(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.launch(t, "post-1").Code)

	w := api.do(t, http.MethodGet, "/api/v1/tokens", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	tokens := body["tokens"].([]any)
	require.Len(t, tokens, 1)
	token := tokens[0].(map[string]any)
	assert.Equal(t, "FIDO", token["symbol"])
	assert.Equal(t, "🐕", token["emoji"])

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["total"])
	assert.Equal(t, false, pagination["hasMore"])
}

func TestListTokens_LimitClamped(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/tokens?limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)

	pagination := decode(t, w)["pagination"].(map[string]any)
	assert.EqualValues(t, 100, pagination["limit"])
}

func TestListLaunches_Filters(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.launch(t, "post-1").Code)

	w := api.do(t, http.MethodGet, "/api/v1/launches?petType=dog", "")
	require.Equal(t, http.StatusOK, w.Code)
	launches := decode(t, w)["launches"].([]any)
	require.Len(t, launches, 1)
	assert.Equal(t, "FIDO", launches[0].(map[string]any)["symbol"])

	w = api.do(t, http.MethodGet, "/api/v1/launches?petType=cat", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["launches"])

	w = api.do(t, http.MethodGet, "/api/v1/launches?address=0x1111111111111111111111111111111111111111", "")
	require.Equal(t, http.StatusOK, w.Code)
	launches = decode(t, w)["launches"].([]any)
	require.Len(t, launches, 1)

	w = api.do(t, http.MethodGet, "/api/v1/launches?address=0x2222222222222222222222222222222222222222", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["launches"])
}

func TestGetStats(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.launch(t, "post-1").Code)

	w := api.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["totalLaunches"])

	petTypes := body["petTypes"].([]any)
	require.Len(t, petTypes, 1)
	assert.Equal(t, "dog", petTypes[0].(map[string]any)["type"])
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	deployer := body["deployer"].(map[string]any)
	assert.Equal(t, true, deployer["configured"])
	assert.Equal(t, "0xDeployer", deployer["address"])
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vault-rs/rscodec/pkg/auth"
	"github.com/vault-rs/rscodec/pkg/blockstore"
)

func newTestServer(t *testing.T) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "blocks.db")
	db, err := blockstore.OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	shards := blockstore.NewLocalShardStore(t.TempDir())
	store := blockstore.New(db, shards, nil)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	if err := RegisterUser("writer1", "hunter2", "writer"); err != nil {
		t.Fatal(err)
	}

	srv := NewServer(store, issuer, nil, 4, 6)
	return SetupRouter(srv), issuer
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
}

func TestLoginPutGetBlockFlow(t *testing.T) {
	router, _ := newTestServer(t)

	loginBody, _ := json.Marshal(map[string]string{"username": "writer1", "password": "hunter2"})
	loginReq := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginReq)
	if loginW.Code != http.StatusOK {
		t.Fatalf("login got status %d, body %s", loginW.Code, loginW.Body.String())
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(loginW.Body.Bytes(), &loginResp); err != nil {
		t.Fatal(err)
	}

	blockData := []byte("hello from the block store integration test, padded out a bit")
	putReq := httptest.NewRequest(http.MethodPost, "/blocks", bytes.NewReader(blockData))
	putReq.Header.Set("Authorization", "Bearer "+loginResp.Token)
	putW := httptest.NewRecorder()
	router.ServeHTTP(putW, putReq)
	if putW.Code != http.StatusCreated {
		t.Fatalf("put block got status %d, body %s", putW.Code, putW.Body.String())
	}
	var putResp struct {
		BlockID    string `json:"block_id"`
		MerkleRoot string `json:"merkle_root"`
	}
	if err := json.Unmarshal(putW.Body.Bytes(), &putResp); err != nil {
		t.Fatal(err)
	}
	if putResp.BlockID == "" || putResp.MerkleRoot == "" {
		t.Fatalf("expected non-empty block_id and merkle_root, got %+v", putResp)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/blocks/"+putResp.BlockID, nil)
	getReq.Header.Set("Authorization", "Bearer "+loginResp.Token)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("get block got status %d, body %s", getW.Code, getW.Body.String())
	}
	if !bytes.Equal(getW.Body.Bytes(), blockData) {
		t.Fatalf("got block body %q, want %q", getW.Body.Bytes(), blockData)
	}
}

func TestPutBlockHonorsKAndNQueryParams(t *testing.T) {
	router, _ := newTestServer(t)
	token := mustLogin(t, router, "writer1", "hunter2")

	blockData := []byte("a block stored with request-specific k and n instead of the server defaults")
	putReq := httptest.NewRequest(http.MethodPost, "/blocks?k=3&n=9", bytes.NewReader(blockData))
	putReq.Header.Set("Authorization", "Bearer "+token)
	putW := httptest.NewRecorder()
	router.ServeHTTP(putW, putReq)
	if putW.Code != http.StatusCreated {
		t.Fatalf("put block got status %d, body %s", putW.Code, putW.Body.String())
	}
	var putResp struct {
		BlockID string `json:"block_id"`
	}
	if err := json.Unmarshal(putW.Body.Bytes(), &putResp); err != nil {
		t.Fatal(err)
	}

	// n=9 means up to 6 of the 9 shards can be missing and the block
	// must still recover when only a handful of indices are named as
	// available.
	getReq := httptest.NewRequest(http.MethodGet, "/blocks/"+putResp.BlockID+"?shards=0,1,2,7,8", nil)
	getReq.Header.Set("Authorization", "Bearer "+token)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("get block got status %d, body %s", getW.Code, getW.Body.String())
	}
	if !bytes.Equal(getW.Body.Bytes(), blockData) {
		t.Fatalf("got block body %q, want %q", getW.Body.Bytes(), blockData)
	}
}

func TestGetBlockFailsWhenTooFewShardsNamedAvailable(t *testing.T) {
	router, _ := newTestServer(t)
	token := mustLogin(t, router, "writer1", "hunter2")

	blockData := []byte("this block's default k=4,n=6 means 3 named shards is not enough")
	putReq := httptest.NewRequest(http.MethodPost, "/blocks", bytes.NewReader(blockData))
	putReq.Header.Set("Authorization", "Bearer "+token)
	putW := httptest.NewRecorder()
	router.ServeHTTP(putW, putReq)
	if putW.Code != http.StatusCreated {
		t.Fatalf("put block got status %d, body %s", putW.Code, putW.Body.String())
	}
	var putResp struct {
		BlockID string `json:"block_id"`
	}
	if err := json.Unmarshal(putW.Body.Bytes(), &putResp); err != nil {
		t.Fatal(err)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/blocks/"+putResp.BlockID+"?shards=0,1,2", nil)
	getReq.Header.Set("Authorization", "Bearer "+token)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)
	if getW.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", getW.Code)
	}
}

func mustLogin(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	loginBody, _ := json.Marshal(map[string]string{"username": username, "password": password})
	loginReq := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginReq)
	if loginW.Code != http.StatusOK {
		t.Fatalf("login got status %d, body %s", loginW.Code, loginW.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(loginW.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

func TestPutBlockRejectsMissingToken(t *testing.T) {
	router, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/blocks", bytes.NewReader([]byte("data")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}

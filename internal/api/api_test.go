package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/stagehouse/internal/db"
	"github.com/erazemk/stagehouse/internal/metrics"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/staging"
	"github.com/erazemk/stagehouse/internal/store"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
	admin string
	user  string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	svc := staging.New(database)
	handler := LoggingMiddleware(metrics.Middleware(NewRouter(svc, database, testJWTSecret)))
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, database, "stager", string(hash), model.RoleUser)
	require.NoError(t, err)

	ts := &testServer{Server: server}
	ts.admin = ts.login(t, "admin", "password")
	ts.user = ts.login(t, "stager", "password")
	return ts
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var resp loginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// do sends a JSON request and returns the status and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// doJSON is do that also decodes the response into out.
func (ts *testServer) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	status, data := ts.do(t, method, path, token, body)
	if out != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return status
}

func (ts *testServer) createItem(t *testing.T, name string, count int) model.InventoryItem {
	t.Helper()
	var item model.InventoryItem
	status := ts.doJSON(t, http.MethodPost, "/api/items", ts.admin, map[string]any{
		"name":     name,
		"category": "seating",
		"count":    count,
		"price":    "49.99",
	}, &item)
	require.Equal(t, http.StatusCreated, status)
	return item
}

func (ts *testServer) createProject(t *testing.T, token, name string) model.Project {
	t.Helper()
	var project model.Project
	status := ts.doJSON(t, http.MethodPost, "/api/projects", token, map[string]any{
		"name":       name,
		"start_date": "2024-05-01",
	}, &project)
	require.Equal(t, http.StatusCreated, status)
	return project
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/api/projects", ts.user, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodPost, "/api/auth/logout", ts.user, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodGet, "/api/projects", ts.user, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/api/items", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogIsPublic(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.createItem(t, "Sofa", 2)
	second := ts.createItem(t, "Lamp", 1)

	var items []model.InventoryItem
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, "/api/items", "", nil, &items))
	assert.Len(t, items, 2)

	var item model.InventoryItem
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/catalog/%d", second.OID), "", nil, &item))
	assert.Equal(t, "Lamp", item.Name)

	var adj model.Adjacent
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/catalog/%d/adjacent", first.OID), "", nil, &adj))
	assert.Nil(t, adj.Prev)
	require.NotNil(t, adj.Next)
	assert.Equal(t, second.OID, *adj.Next)

	var categories []string
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, "/api/categories", "", nil, &categories))
	assert.Equal(t, []string{"seating"}, categories)

	status, _ := ts.do(t, http.MethodGet, "/api/catalog/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestItemWritesRequireAdmin(t *testing.T) {
	ts := setupTestServer(t)
	body := map[string]any{"name": "Chair", "count": 1}

	status, _ := ts.do(t, http.MethodPost, "/api/items", "", body)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodPost, "/api/items", ts.user, body)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodPost, "/api/items", ts.admin, body)
	assert.Equal(t, http.StatusCreated, status)
}

func TestValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	status := ts.doJSON(t, http.MethodPost, "/api/items", ts.admin, map[string]any{"count": -1}, &resp)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "is required", resp.Fields["name"])
	assert.Equal(t, "must be at least 0", resp.Fields["count"])

	status = ts.doJSON(t, http.MethodPost, "/api/projects", ts.user, map[string]any{
		"name":       "Loft",
		"status":     "bogus",
		"start_date": "05/01/2024",
	}, &resp)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Fields, "status")
	assert.Contains(t, resp.Fields, "start_date")

	status, _ = ts.do(t, http.MethodGet, "/api/items/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAssignReturnFlow(t *testing.T) {
	ts := setupTestServer(t)
	item := ts.createItem(t, "Armchair", 2)
	project := ts.createProject(t, ts.user, "Maple Street")
	assignPath := fmt.Sprintf("/api/projects/%d/assignments", project.ID)

	var rejected errorResponse
	status := ts.doJSON(t, http.MethodPost, assignPath, ts.user, map[string]any{
		"inventory_id": item.ID,
		"quantity":     3,
	}, &rejected)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient_availability", string(rejected.Kind))
	require.NotNil(t, rejected.Available)
	assert.Equal(t, 2, *rejected.Available)

	status = ts.doJSON(t, http.MethodPost, assignPath, ts.user, map[string]any{
		"inventory_id": item.ID,
		"quantity":     0,
	}, &rejected)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "invariant_violation", string(rejected.Kind))

	var a model.Assignment
	status = ts.doJSON(t, http.MethodPost, assignPath, ts.user, map[string]any{
		"inventory_id": item.ID,
		"quantity":     2,
	}, &a)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 2, a.Quantity)

	var avail model.Availability
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/items/%d/availability", item.ID), "", nil, &avail))
	assert.Equal(t, model.Availability{Total: 2, InUse: 2, Available: 0}, avail)

	var open []model.Assignment
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, assignPath, ts.user, nil, &open))
	assert.Len(t, open, 1)

	returnPath := fmt.Sprintf("/api/assignments/%d/return", a.ID)
	status, _ = ts.do(t, http.MethodPost, returnPath, ts.user, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodPost, returnPath, ts.user, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, assignPath, ts.user, nil, &open))
	assert.Empty(t, open)

	var all []model.Assignment
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, assignPath+"?include_returned=true", ts.user, nil, &all))
	assert.Len(t, all, 1)

	var report struct {
		Consistent bool `json:"consistent"`
	}
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, "/api/ledger/verify", ts.admin, nil, &report))
	assert.True(t, report.Consistent)

	status, _ = ts.do(t, http.MethodGet, "/api/ledger/verify", ts.user, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProjectAccess(t *testing.T) {
	ts := setupTestServer(t)
	project := ts.createProject(t, ts.admin, "Admin Listing")
	path := fmt.Sprintf("/api/projects/%d", project.ID)

	status, _ := ts.do(t, http.MethodGet, path, ts.user, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodGet, "/api/projects/999", ts.admin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var updated model.Project
	status = ts.doJSON(t, http.MethodPut, path, ts.admin, map[string]any{
		"name":   "Admin Listing",
		"status": "active",
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.ProjectStatusActive, updated.Status)

	status, _ = ts.do(t, http.MethodDelete, path, ts.admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodGet, path, ts.admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProjectImagesAndPortfolio(t *testing.T) {
	ts := setupTestServer(t)
	project := ts.createProject(t, ts.user, "Harbor View")
	imagesPath := fmt.Sprintf("/api/projects/%d/images", project.ID)

	var ids []int64
	for i := range 3 {
		var img model.ProjectImage
		status := ts.doJSON(t, http.MethodPost, imagesPath, ts.user, map[string]any{
			"path":  fmt.Sprintf("https://img.example.com/%d.jpg", i),
			"width": 1600, "height": 900,
		}, &img)
		require.Equal(t, http.StatusCreated, status)
		ids = append(ids, img.ID)
	}

	var images []model.ProjectImage
	status := ts.doJSON(t, http.MethodPost, imagesPath+"/move", ts.user, map[string]any{
		"position":  1,
		"direction": "up",
	}, &images)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, images, 3)
	assert.Equal(t, ids[0], images[2].ID)

	status = ts.doJSON(t, http.MethodPut, imagesPath+"/order", ts.user, map[string]any{
		"ids": ids,
	}, &images)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, ids[0], images[0].ID)

	status, _ = ts.do(t, http.MethodPut, imagesPath+"/order", ts.user, map[string]any{
		"ids": ids[:2],
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = ts.do(t, http.MethodPost, imagesPath+"/move", ts.user, map[string]any{
		"position":  9,
		"direction": "down",
	})
	assert.Equal(t, http.StatusNotFound, status)

	highlightPath := fmt.Sprintf("/api/projects/%d/highlight", project.ID)
	status, _ = ts.do(t, http.MethodPost, highlightPath, ts.user, map[string]any{"highlighted": true})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = ts.do(t, http.MethodPost, highlightPath, ts.admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = ts.do(t, http.MethodPost, highlightPath, ts.admin, map[string]any{"highlighted": true})
	require.Equal(t, http.StatusOK, status)

	var portfolio []model.Project
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, "/api/portfolio?limit=5", "", nil, &portfolio))
	require.Len(t, portfolio, 1)
	assert.Len(t, portfolio[0].Images, 3)

	status, _ = ts.do(t, http.MethodGet, "/api/portfolio?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestItemMoveWraps(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.createItem(t, "A", 1)
	ts.createItem(t, "B", 1)
	last := ts.createItem(t, "C", 1)

	var moved model.InventoryItem
	status := ts.doJSON(t, http.MethodPost, fmt.Sprintf("/api/items/%d/move", first.ID), ts.admin, map[string]string{
		"direction": "up",
	}, &moved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, last.OID, moved.OID)

	status, _ = ts.do(t, http.MethodPost, fmt.Sprintf("/api/items/%d/move", first.ID), ts.admin, map[string]string{
		"direction": "sideways",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUsersAdminOnly(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/api/users", ts.user, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var users []model.User
	require.Equal(t, http.StatusOK, ts.doJSON(t, http.MethodGet, "/api/users", ts.admin, nil, &users))
	assert.Len(t, users, 2)

	status, _ = ts.do(t, http.MethodPost, "/api/users", ts.admin, map[string]string{
		"username": "short",
		"password": "abc",
		"role":     model.RoleUser,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "stagehouse_assignments_total")
	assert.Contains(t, string(body), `route="GET /healthz"`)
	assert.Contains(t, string(body), `route="POST /api/auth/login"`)
}

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"notelets-be/internal/bootstrap"
	"notelets-be/internal/config"
	"notelets-be/internal/dto"
	"notelets-be/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log"))
	t.Setenv("HUB_LOG_FILE_PATH", filepath.Join(dir, "hub.log"))
	t.Setenv("NATS_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg)
	return server.New(cfg, container).GetApp()
}

func doJSON(t *testing.T, app *fiber.App, method, url string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var env envelope
	if len(respBody) > 0 {
		require.NoError(t, json.Unmarshal(respBody, &env), "body: %s", respBody)
	}
	return resp, env
}

func TestBoardCRUD(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set")
	}
	app := newTestApp(t)

	// Create
	resp, env := doJSON(t, app, "POST", "/api/board/v1", fiber.Map{
		"title":     "Integration Board",
		"view_type": "canvas",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var created dto.SetBoardResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// Show
	resp, env = doJSON(t, app, "GET", "/api/board/v1/"+created.Id.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var shown dto.ShowBoardResponse
	require.NoError(t, json.Unmarshal(env.Data, &shown))
	assert.Equal(t, "Integration Board", shown.Title)
	assert.Equal(t, "canvas", shown.ViewType)

	// List
	resp, env = doJSON(t, app, "GET", "/api/board/v1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var boards []dto.ShowBoardResponse
	require.NoError(t, json.Unmarshal(env.Data, &boards))
	assert.Len(t, boards, 1)

	// Delete
	resp, _ = doJSON(t, app, "DELETE", "/api/board/v1/"+created.Id.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, app, "GET", "/api/board/v1/"+created.Id.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestBoardDeleteCascadesToCards(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set")
	}
	app := newTestApp(t)

	_, env := doJSON(t, app, "POST", "/api/board/v1", fiber.Map{"title": "With cards"})
	var board dto.SetBoardResponse
	require.NoError(t, json.Unmarshal(env.Data, &board))

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, "POST", "/api/card/v1", fiber.Map{
			"board_id": board.Id.String(),
			"kind":     "richtext",
			"title":    fmt.Sprintf("card %d", i),
			"content":  "text",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, env := doJSON(t, app, "GET", "/api/card/v1/board/"+board.Id.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cards []dto.ShowCardResponse
	require.NoError(t, json.Unmarshal(env.Data, &cards))
	require.Len(t, cards, 2)

	resp, _ = doJSON(t, app, "DELETE", "/api/board/v1/"+board.Id.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, app, "GET", "/api/card/v1/board/"+board.Id.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &cards))
	assert.Empty(t, cards)
}

func TestBoardValidation(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set")
	}
	app := newTestApp(t)

	// Missing title
	resp, env := doJSON(t, app, "POST", "/api/board/v1", fiber.Map{"view_type": "canvas"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)

	// Bad id in path
	resp, _ = doJSON(t, app, "GET", "/api/board/v1/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCardRequiresAttachmentForKind(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set")
	}
	app := newTestApp(t)

	_, env := doJSON(t, app, "POST", "/api/board/v1", fiber.Map{"title": "b"})
	var board dto.SetBoardResponse
	require.NoError(t, json.Unmarshal(env.Data, &board))

	// file card without attachment is a client error
	resp, env := doJSON(t, app, "POST", "/api/card/v1", fiber.Map{
		"board_id": board.Id.String(),
		"kind":     "file",
		"title":    "doc",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "file attachment")
}

func TestBoardFeedRouteMountedAtRoot(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set")
	}
	app := newTestApp(t)

	// A plain GET without the upgrade handshake is refused, proving the
	// route is mounted at /ws, not under /api.
	req := httptest.NewRequest("GET", "/ws/board/"+uuid.New().String(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)

	req = httptest.NewRequest("GET", "/ws/board/not-a-uuid", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/ws/board/"+uuid.New().String(), nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModelsEndpoint(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set")
	}
	app := newTestApp(t)

	resp, env := doJSON(t, app, "GET", "/api/assistant/v1/models", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var models []dto.ModelInfoResponse
	require.NoError(t, json.Unmarshal(env.Data, &models))
	assert.NotEmpty(t, models)
}

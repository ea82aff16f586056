package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/isoscene/api"
	"github.com/aretw0/isoscene/pkg/adapters/memory"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/workspace"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiClient drives the handler and checks every response against the API description.
type apiClient struct {
	t       *testing.T
	handler http.Handler
	router  routers.Router
}

func newTestClient(t *testing.T, opts ...Option) (*apiClient, *workspace.Manager) {
	t.Helper()
	mgr := workspace.NewManager(memory.NewStore())
	handler, err := NewHandler(mgr, opts...)
	require.NoError(t, err)

	doc, err := api.Load()
	require.NoError(t, err)
	router, err := legacy.NewRouter(doc)
	require.NoError(t, err)

	return &apiClient{t: t, handler: handler, router: router}, mgr
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(c.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	c.validate(method, path, w)
	return w
}

func (c *apiClient) validate(method, path string, w *httptest.ResponseRecorder) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, nil)
	route, params, err := c.router.FindRoute(req)
	require.NoError(c.t, err, "route %s %s", method, path)

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: params,
			Route:      route,
		},
		Status: w.Code,
		Header: w.Header(),
		Body:   io.NopCloser(bytes.NewReader(w.Body.Bytes())),
	}
	assert.NoError(c.t, openapi3filter.ValidateResponse(context.Background(), input),
		"%s %s -> %d %s", method, path, w.Code, w.Body.String())
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	c, _ := newTestClient(t)

	w := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, "isoscene-http", info["app"])
	assert.NotEmpty(t, info["version"])
	assert.NotEqual(t, "unknown", info["api_version"])
}

func TestWorkspaceLifecycle(t *testing.T) {
	c, _ := newTestClient(t)

	w := c.do(http.MethodGet, "/workspaces", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[map[string][]string](t, w)["workspaces"])

	w = c.do(http.MethodPost, "/workspaces", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody[map[string]string](t, w)["id"]
	require.NotEmpty(t, id)

	w = c.do(http.MethodGet, "/workspaces", nil)
	assert.Equal(t, []string{id}, decodeBody[map[string][]string](t, w)["workspaces"])

	w = c.do(http.MethodDelete, "/workspaces/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodDelete, "/workspaces/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStateEndpoints(t *testing.T) {
	c, _ := newTestClient(t)

	w := c.do(http.MethodPut, "/workspaces/w1/state/scene.currentCameraAngle", map[string]any{"value": 90})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90.0, decodeBody[pathValue](t, w).Value)

	w = c.do(http.MethodGet, "/workspaces/w1/state/scene.currentCameraAngle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90.0, decodeBody[pathValue](t, w).Value)

	w = c.do(http.MethodGet, "/workspaces/w1/state/scene.nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPut, "/workspaces/w1/state/objects.objectCount", map[string]any{"value": 1.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPatch, "/workspaces/w1/state", map[string]any{
		"tools": map[string]any{"activeTool": "rotate"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	tree := decodeBody[domain.Tree](t, w)
	assert.Equal(t, "rotate", tree.Tools.ActiveTool)
	assert.Equal(t, 90.0, tree.Scene.CurrentCameraAngle)

	w = c.do(http.MethodPost, "/workspaces/w1/state/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decodeBody[domain.Tree](t, w).Scene.CurrentCameraAngle)

	w = c.do(http.MethodDelete, "/workspaces/w1/state", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLayerEndpoints(t *testing.T) {
	c, _ := newTestClient(t)

	w := c.do(http.MethodPost, "/workspaces/w1/layers", map[string]string{"name": "Roof"})
	require.Equal(t, http.StatusCreated, w.Code)
	roof := decodeBody[struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}](t, w)
	assert.Equal(t, 2, roof.ID)
	assert.Equal(t, "Roof", roof.Name)

	w = c.do(http.MethodPost, "/workspaces/w1/layers/2/up", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[layerList](t, w)
	require.Len(t, list.Layers, 2)
	assert.Equal(t, 2, list.Layers[0].ID)

	w = c.do(http.MethodPost, "/workspaces/w1/layers/2/up", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "already on top")

	w = c.do(http.MethodPut, "/workspaces/w1/layers/order", map[string][]int{"ids": {1, 2}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeBody[layerList](t, w).Layers[0].ID)

	w = c.do(http.MethodPut, "/workspaces/w1/layers/order", map[string][]int{"ids": {1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, "/workspaces/w1/layers/1/visibility", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeBody[layerList](t, w).Layers[0].Visible)

	w = c.do(http.MethodPost, "/workspaces/w1/layers/2/rename", map[string]string{"name": "Attic"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Attic", decodeBody[layerList](t, w).Layers[1].Name)

	w = c.do(http.MethodPost, "/workspaces/w1/layers/9/current", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodDelete, "/workspaces/w1/layers/2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodDelete, "/workspaces/w1/layers/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "the last layer stays")
}

func TestObjectEndpoints(t *testing.T) {
	c, _ := newTestClient(t)

	w := c.do(http.MethodPost, "/workspaces/w1/objects", map[string]any{
		"kind":     "cube",
		"position": map[string]float64{"x": 1, "y": 0, "z": 2},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	cube := decodeBody[domain.Object](t, w)
	assert.Equal(t, domain.KindCube, cube.Kind)

	w = c.do(http.MethodPost, "/workspaces/w1/objects", map[string]any{"kind": "banana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	base := "/workspaces/w1/objects/" + strconv.Itoa(int(cube.ID))

	w = c.do(http.MethodPost, base+"/rotate", map[string]bool{"clockwise": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, cube.Rotation, decodeBody[domain.Object](t, w).Rotation)

	w = c.do(http.MethodPost, base+"/move", map[string]any{"delta": map[string]float64{"x": 1}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cube.Position.X+1, decodeBody[domain.Object](t, w).Position.X)

	w = c.do(http.MethodPost, base+"/color", map[string]string{"color": "#FF0000"})
	require.Equal(t, http.StatusOK, w.Code)

	c.do(http.MethodPost, "/workspaces/w1/layers", map[string]string{"name": "Roof"})
	w = c.do(http.MethodPost, base+"/layer", map[string]int{"layerId": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/workspaces/w1/layers", nil)
	list := decodeBody[layerList](t, w)
	assert.Empty(t, list.Layers[0].Objects)
	assert.Equal(t, []domain.ObjectID{cube.ID}, list.Layers[1].Objects)

	w = c.do(http.MethodPost, base+"/layer", map[string]int{"layerId": 9})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodGet, "/workspaces/w1/objects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.Object](t, w), 1)

	w = c.do(http.MethodPost, "/workspaces/w1/frame", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewEndpoints(t *testing.T) {
	c, _ := newTestClient(t)

	w := c.do(http.MethodPost, "/workspaces/w1/camera/rotate", map[string]bool{"clockwise": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90.0, decodeBody[domain.SceneSection](t, w).CurrentCameraAngle)

	w = c.do(http.MethodPut, "/workspaces/w1/camera/zoom", map[string]float64{"zoom": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decodeBody[domain.SceneSection](t, w).Zoom)

	w = c.do(http.MethodPut, "/workspaces/w1/background", map[string]string{"theme": "night"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "night", decodeBody[domain.SceneSection](t, w).BackgroundTheme)

	w = c.do(http.MethodPut, "/workspaces/w1/background", map[string]string{"theme": "lava"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPut, "/workspaces/w1/background", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPut, "/workspaces/w1/fog", map[string]any{"enabled": true, "near": 10, "far": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	c, _ := newTestClient(t)

	w := c.do(http.MethodPost, "/workspaces/w1/history/undo", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	c.do(http.MethodPost, "/workspaces/w1/layers", map[string]string{"name": "Roof"})

	w = c.do(http.MethodPost, "/workspaces/w1/history/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ActionAddLayer, decodeBody[domain.Action](t, w).Kind)

	w = c.do(http.MethodGet, "/workspaces/w1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeBody[domain.HistorySection](t, w)
	assert.Empty(t, history.UndoStack)
	assert.Len(t, history.RedoStack, 1)

	w = c.do(http.MethodPost, "/workspaces/w1/history/redo", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSceneEndpoints(t *testing.T) {
	c, _ := newTestClient(t)

	c.do(http.MethodPost, "/workspaces/w1/layers", map[string]string{"name": "Roof"})

	w := c.do(http.MethodPut, "/workspaces/w1/scenes/house", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodGet, "/workspaces/w1/scenes", nil)
	assert.Equal(t, []string{"house"}, decodeBody[map[string][]string](t, w)["scenes"])

	w = c.do(http.MethodDelete, "/workspaces/w1/layers/2", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodPost, "/workspaces/w1/scenes/house", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[layerList](t, w).Layers, 2)

	w = c.do(http.MethodPost, "/workspaces/w1/scenes/garden", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodDelete, "/workspaces/w1/scenes/house", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodGet, "/workspaces", nil)
	assert.Equal(t, []string{"w1"}, decodeBody[map[string][]string](t, w)["workspaces"])
}

func TestRequestValidation(t *testing.T) {
	mgr := workspace.NewManager(memory.NewStore())
	handler, err := NewHandler(mgr, WithRequestValidation(true))
	require.NoError(t, err)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/workspaces/w1/objects", `{"kind":"banana"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = send(http.MethodPut, "/workspaces/w1/camera/zoom", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "zoom is required")

	w = send(http.MethodPost, "/workspaces/w1/layers/1/explode", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodPost, "/workspaces/w1/objects", `{"kind":"ramp"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = send(http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.Spec, w.Body.Bytes())
}

func TestMetricsHandler(t *testing.T) {
	mgr := workspace.NewManager(memory.NewStore())
	handler, err := NewHandler(mgr, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "metrics")
	})))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "metrics", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	c, _ := newTestClient(t)
	req := httptest.NewRequest(http.MethodOptions, "/workspaces", nil)
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	c, _ := newTestClient(t)
	srv := httptest.NewServer(c.handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/workspaces", "application/json", nil)
	require.NoError(t, err)
	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	id := created["id"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/workspaces/"+id+"/events?watch=scene", nil)
	require.NoError(t, err)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	reader := bufio.NewReader(stream.Body)
	readData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
				return data
			}
		}
	}
	assert.Equal(t, "connected", readData())

	put := func(path, body string) {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/workspaces/"+id+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	// Layer changes are filtered out by the watch list.
	resp, err = http.Post(srv.URL+"/workspaces/"+id+"/layers", "application/json", strings.NewReader(`{"name":"Roof"}`))
	require.NoError(t, err)
	resp.Body.Close()
	put("/camera/zoom", `{"zoom":2}`)

	var diff domain.TreeDiff
	require.NoError(t, json.Unmarshal([]byte(readData()), &diff))
	assert.True(t, diff.Touches("scene"))
	assert.False(t, diff.Touches("layers"))
	scene, ok := diff.Sections["scene"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.0, scene["zoom"])
}

func TestSubscribeEvents_UnknownWorkspace(t *testing.T) {
	c, _ := newTestClient(t)
	w := c.do(http.MethodGet, "/workspaces/ghost/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrUnknownKind))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidWorkspaceID))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrObjectNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(errConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

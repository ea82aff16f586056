package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/isoscene"
	"github.com/aretw0/isoscene/internal/logging"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/aretw0/isoscene/pkg/layers"
	"github.com/aretw0/isoscene/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultWorkspace is used by tools called without a workspace argument.
const DefaultWorkspace = "default"

const stateURIPrefix = "isoscene://workspaces/"

// LayerList aligns with the HTTP adapter's layer listing.
type LayerList struct {
	Layers         []layers.Layer `json:"layers" jsonschema_description:"Layers in render order"`
	CurrentLayerID int            `json:"currentLayerId" jsonschema_description:"Layer receiving new objects"`
}

// PathValue is one state property.
type PathValue struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// HistoryResult reports an undo or redo step.
type HistoryResult struct {
	Action    *domain.Action `json:"action,omitempty" jsonschema_description:"The entry moved between the logs"`
	UndoDepth int            `json:"undoDepth"`
	RedoDepth int            `json:"redoDepth"`
}

// Server exposes workspaces as MCP tools.
type Server struct {
	workspaces *workspace.Manager
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *workspace.Manager, opts ...Option) *Server {
	s := &Server{
		workspaces: mgr,
		mcpServer:  server.NewMCPServer("isoscene-mcp", isoscene.Version),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func workspaceArg() mcp.ToolOption {
	return mcp.WithString("workspace", mcp.Description("Workspace id (defaults to \"default\")"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Read a state property by dotted path, e.g. scene.currentCameraAngle. Without a path the whole tree is returned."),
		workspaceArg(),
		mcp.WithString("path", mcp.Description("Dotted path into the state tree")),
		mcp.WithOutputSchema[PathValue](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("set_state",
		mcp.WithDescription("Set a state property by dotted path. The value is converted to the field type."),
		workspaceArg(),
		mcp.WithString("path", mcp.Required(), mcp.Description("Dotted path into the state tree")),
		mcp.WithAny("value", mcp.Required(), mcp.Description("New value")),
		mcp.WithOutputSchema[PathValue](),
	), mcp.NewStructuredToolHandler(s.handleSetState))

	s.mcpServer.AddTool(mcp.NewTool("list_layers",
		mcp.WithDescription("List layers in render order."),
		workspaceArg(),
		mcp.WithOutputSchema[LayerList](),
	), mcp.NewStructuredToolHandler(s.handleListLayers))

	s.mcpServer.AddTool(mcp.NewTool("add_layer",
		mcp.WithDescription("Append a layer and make it current."),
		workspaceArg(),
		mcp.WithString("name", mcp.Description("Layer name (defaults to \"Layer N\")")),
		mcp.WithOutputSchema[LayerList](),
	), mcp.NewStructuredToolHandler(s.handleAddLayer))

	s.mcpServer.AddTool(mcp.NewTool("remove_layer",
		mcp.WithDescription("Remove a layer and its objects. The last layer cannot be removed."),
		workspaceArg(),
		mcp.WithNumber("layer_id", mcp.Required()),
		mcp.WithOutputSchema[LayerList](),
	), mcp.NewStructuredToolHandler(s.handleRemoveLayer))

	s.mcpServer.AddTool(mcp.NewTool("move_layer",
		mcp.WithDescription("Move a layer one position up or down in render order."),
		workspaceArg(),
		mcp.WithNumber("layer_id", mcp.Required()),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down")),
		mcp.WithOutputSchema[LayerList](),
	), mcp.NewStructuredToolHandler(s.handleMoveLayer))

	s.mcpServer.AddTool(mcp.NewTool("toggle_layer",
		mcp.WithDescription("Toggle the visibility of a layer."),
		workspaceArg(),
		mcp.WithNumber("layer_id", mcp.Required()),
		mcp.WithOutputSchema[LayerList](),
	), mcp.NewStructuredToolHandler(s.handleToggleLayer))

	s.mcpServer.AddTool(mcp.NewTool("add_object",
		mcp.WithDescription("Add an object to the current layer."),
		workspaceArg(),
		mcp.WithString("kind", mcp.Enum(string(domain.KindCube), string(domain.KindSphere), string(domain.KindCylinder), string(domain.KindRamp))),
		mcp.WithNumber("x"),
		mcp.WithNumber("y"),
		mcp.WithNumber("z"),
		mcp.WithOutputSchema[domain.Object](),
	), mcp.NewStructuredToolHandler(s.handleAddObject))

	s.mcpServer.AddTool(mcp.NewTool("move_object",
		mcp.WithDescription("Move an object by a delta, or onto another layer when layer_id is given."),
		workspaceArg(),
		mcp.WithNumber("object_id", mcp.Required()),
		mcp.WithNumber("dx"),
		mcp.WithNumber("dy"),
		mcp.WithNumber("dz"),
		mcp.WithNumber("layer_id", mcp.Description("Target layer")),
		mcp.WithOutputSchema[domain.Object](),
	), mcp.NewStructuredToolHandler(s.handleMoveObject))

	s.mcpServer.AddTool(mcp.NewTool("rotate_camera",
		mcp.WithDescription("Step the camera around the scene."),
		workspaceArg(),
		mcp.WithBoolean("counterclockwise"),
		mcp.WithOutputSchema[domain.SceneSection](),
	), mcp.NewStructuredToolHandler(s.handleRotateCamera))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Move the newest history entry to the redo log."),
		workspaceArg(),
		mcp.WithOutputSchema[HistoryResult](),
	), mcp.NewStructuredToolHandler(s.historyHandler(true)))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Move the newest redo entry back to the history."),
		workspaceArg(),
		mcp.WithOutputSchema[HistoryResult](),
	), mcp.NewStructuredToolHandler(s.historyHandler(false)))
}

// Arguments

type baseArgs struct {
	Workspace string `json:"workspace"`
}

func (a baseArgs) id() string {
	if a.Workspace == "" {
		return DefaultWorkspace
	}
	return a.Workspace
}

type stateArgs struct {
	baseArgs
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type layerArgs struct {
	baseArgs
	Name      string `json:"name"`
	LayerID   int    `json:"layer_id"`
	Direction string `json:"direction"`
}

type objectArgs struct {
	baseArgs
	Kind     domain.Kind     `json:"kind"`
	ObjectID domain.ObjectID `json:"object_id"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Z        float64         `json:"z"`
	DX       float64         `json:"dx"`
	DY       float64         `json:"dy"`
	DZ       float64         `json:"dz"`
	LayerID  int             `json:"layer_id"`
}

type cameraArgs struct {
	baseArgs
	CounterClockwise bool `json:"counterclockwise"`
}

// Handlers

func (s *Server) with(ctx context.Context, id string, fn func(context.Context, *editor.Editor) error) error {
	return s.workspaces.WithLock(ctx, id, fn)
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args stateArgs) (PathValue, error) {
	out := PathValue{Path: args.Path}
	err := s.with(ctx, args.id(), func(ctx context.Context, e *editor.Editor) error {
		if args.Path == "" {
			out.Value = e.State().Snapshot()
			return nil
		}
		v, ok := e.State().GetStateProperty(args.Path)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrPathNotFound, args.Path)
		}
		out.Value = v
		return nil
	})
	return out, err
}

func (s *Server) handleSetState(ctx context.Context, _ mcp.CallToolRequest, args stateArgs) (PathValue, error) {
	out := PathValue{Path: args.Path}
	err := s.with(ctx, args.id(), func(ctx context.Context, e *editor.Editor) error {
		if err := e.State().SetStateProperty(ctx, args.Path, args.Value); err != nil {
			return err
		}
		out.Value, _ = e.State().GetStateProperty(args.Path)
		return nil
	})
	return out, err
}

func listOf(e *editor.Editor) LayerList {
	return LayerList{Layers: e.Layers(), CurrentLayerID: e.CurrentLayerID()}
}

// layerOp runs op and returns the resulting layer list; op reports whether it applied.
func (s *Server) layerOp(ctx context.Context, args layerArgs, what string, op func(context.Context, *editor.Editor) bool) (LayerList, error) {
	var out LayerList
	err := s.with(ctx, args.id(), func(ctx context.Context, e *editor.Editor) error {
		if !op(ctx, e) {
			return fmt.Errorf("%s rejected for layer %d", what, args.LayerID)
		}
		out = listOf(e)
		return nil
	})
	return out, err
}

func (s *Server) handleListLayers(ctx context.Context, _ mcp.CallToolRequest, args layerArgs) (LayerList, error) {
	return s.layerOp(ctx, args, "list", func(context.Context, *editor.Editor) bool { return true })
}

func (s *Server) handleAddLayer(ctx context.Context, _ mcp.CallToolRequest, args layerArgs) (LayerList, error) {
	return s.layerOp(ctx, args, "add", func(ctx context.Context, e *editor.Editor) bool {
		e.AddLayer(ctx, args.Name)
		return true
	})
}

func (s *Server) handleRemoveLayer(ctx context.Context, _ mcp.CallToolRequest, args layerArgs) (LayerList, error) {
	return s.layerOp(ctx, args, "remove", func(ctx context.Context, e *editor.Editor) bool {
		return e.RemoveLayer(ctx, args.LayerID)
	})
}

func (s *Server) handleMoveLayer(ctx context.Context, _ mcp.CallToolRequest, args layerArgs) (LayerList, error) {
	return s.layerOp(ctx, args, "move "+args.Direction, func(ctx context.Context, e *editor.Editor) bool {
		switch strings.ToLower(args.Direction) {
		case "up":
			return e.MoveLayerUp(ctx, args.LayerID)
		case "down":
			return e.MoveLayerDown(ctx, args.LayerID)
		}
		return false
	})
}

func (s *Server) handleToggleLayer(ctx context.Context, _ mcp.CallToolRequest, args layerArgs) (LayerList, error) {
	return s.layerOp(ctx, args, "toggle", func(ctx context.Context, e *editor.Editor) bool {
		_, ok := e.ToggleLayerVisibility(ctx, args.LayerID)
		return ok
	})
}

func (s *Server) handleAddObject(ctx context.Context, _ mcp.CallToolRequest, args objectArgs) (domain.Object, error) {
	var out domain.Object
	err := s.with(ctx, args.id(), func(ctx context.Context, e *editor.Editor) error {
		var err error
		out, err = e.AddObject(ctx, args.Kind, domain.Vec3{X: args.X, Y: args.Y, Z: args.Z})
		return err
	})
	return out, err
}

func (s *Server) handleMoveObject(ctx context.Context, _ mcp.CallToolRequest, args objectArgs) (domain.Object, error) {
	var out domain.Object
	err := s.with(ctx, args.id(), func(ctx context.Context, e *editor.Editor) error {
		if args.LayerID != 0 {
			if !e.MoveObjectToLayer(ctx, args.ObjectID, args.LayerID) {
				return fmt.Errorf("cannot move object %d to layer %d", args.ObjectID, args.LayerID)
			}
			out, _ = e.Object(args.ObjectID)
			return nil
		}
		var err error
		out, err = e.MoveObject(ctx, args.ObjectID, domain.Vec3{X: args.DX, Y: args.DY, Z: args.DZ})
		return err
	})
	return out, err
}

func (s *Server) handleRotateCamera(ctx context.Context, _ mcp.CallToolRequest, args cameraArgs) (domain.SceneSection, error) {
	var out domain.SceneSection
	err := s.with(ctx, args.id(), func(ctx context.Context, e *editor.Editor) error {
		e.RotateCamera(ctx, !args.CounterClockwise)
		out = e.State().Scene()
		return nil
	})
	return out, err
}

func (s *Server) historyHandler(undo bool) func(context.Context, mcp.CallToolRequest, baseArgs) (HistoryResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args baseArgs) (HistoryResult, error) {
		var out HistoryResult
		err := s.with(ctx, args.id(), func(ctx context.Context, e *editor.Editor) error {
			step, name := e.Redo, "redo"
			if undo {
				step, name = e.Undo, "undo"
			}
			action, ok := step(ctx)
			if !ok {
				return fmt.Errorf("nothing to %s", name)
			}
			undoLog, redoLog := e.State().History()
			out = HistoryResult{Action: &action, UndoDepth: len(undoLog), RedoDepth: len(redoLog)}
			return nil
		})
		return out, err
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(stateURIPrefix+"{workspace}/state", "Workspace state",
		mcp.WithTemplateDescription("The full state tree of a workspace"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readState)
}

func (s *Server) readState(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id, ok := strings.CutPrefix(uri, stateURIPrefix)
	if ok {
		id, ok = strings.CutSuffix(id, "/state")
	}
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrPathNotFound, uri)
	}

	var data []byte
	err := s.with(ctx, id, func(ctx context.Context, e *editor.Editor) error {
		var err error
		data, err = json.Marshal(e.State().Snapshot())
		return err
	})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
